package bot

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/viper"

	"sentinel-bot/config"
	"sentinel-bot/database"
	"sentinel-bot/metrics"
	"sentinel-bot/models"
	"sentinel-bot/security"
	"sentinel-bot/utils"
)

// Bot encapsulates the bot's state: the gateway session, the security engine
// and the incident store.
type Bot struct {
	Session  *discordgo.Session
	Engine   *security.Engine
	Store    *database.Store
	Security *models.SecurityConfig
}

// NewBot creates and initializes a new Bot instance.
func NewBot() (*Bot, error) {
	config.LoadConfig()
	token := viper.GetString("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("no bot token provided")
	}

	secCfg, err := config.LoadSecurity()
	if err != nil {
		return nil, err
	}

	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	// MessageContent is required: every heuristic reads the raw text.
	dg.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers | discordgo.IntentsMessageContent

	store, err := database.NewStore(secCfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("error opening incident store: %w", err)
	}

	platform := security.NewDiscordPlatform(dg, secCfg.AdminChannelIDs)
	engine := security.NewEngine(secCfg, platform, store, nil)

	return &Bot{
		Session:  dg,
		Engine:   engine,
		Store:    store,
		Security: secCfg,
	}, nil
}

// Start opens the bot's session, registers handlers and slash commands, and
// kicks off the scheduler and the metrics listener.
func (b *Bot) Start(registerHandlers func(*Bot), commands []*discordgo.ApplicationCommand) error {
	registerHandlers(b)

	err := b.Session.Open()
	if err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	utils.InitLogger(b.Session, b.Security.AdminChannelIDs)

	// Register slash commands
	for _, cmd := range commands {
		_, err := b.Session.ApplicationCommandCreate(b.Session.State.User.ID, "", cmd)
		if err != nil {
			log.Printf("Cannot create '%v' command: %v", cmd.Name, err)
		}
	}

	startScheduler(b)
	startMetricsListener()

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	return nil
}

// Stop gracefully closes the bot's session and the incident store. In-flight
// enforcement actions are allowed to finish; the session close only stops new
// gateway events.
func (b *Bot) Stop() {
	stopScheduler()
	if b.Session != nil {
		b.Session.Close()
	}
	if b.Store != nil {
		b.Store.Close()
	}
	fmt.Println("Bot stopped gracefully.")
}

// startMetricsListener serves Prometheus metrics when metrics.listen_addr is
// configured.
func startMetricsListener() {
	addr := viper.GetString("metrics.listen_addr")
	if addr == "" {
		return
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		log.Printf("Serving metrics on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("Metrics listener stopped: %v", err)
		}
	}()
}

// Run is the main entry point for the bot application.
func Run(registerHandlers func(*Bot), commands []*discordgo.ApplicationCommand) {
	bot, err := NewBot()
	if err != nil {
		log.Fatalf("Error initializing bot: %v", err)
	}

	if err := bot.Start(registerHandlers, commands); err != nil {
		log.Fatalf("Error starting bot: %v", err)
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	bot.Stop()
}
