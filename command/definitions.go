package command

import "github.com/bwmarrin/discordgo"

// SecurityCommand defines the structure for the /security command.
type SecurityCommand struct{}

// Definition returns the application command definition.
func (c *SecurityCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "security",
		Description: "Show security engine status and today's enforcement counts",
	}
}

// WatchlistCommand defines the structure for the /watchlist command.
type WatchlistCommand struct{}

// Definition returns the application command definition.
func (c *WatchlistCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "watchlist",
		Description: "List recent security incidents",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "limit",
				Description: "How many incidents to show (1-25)",
				Type:        discordgo.ApplicationCommandOptionInteger,
				Required:    false,
			},
			{
				Name:         "action",
				Description:  "Only show incidents of this kind",
				Type:         discordgo.ApplicationCommandOptionString,
				Required:     false,
				Autocomplete: true,
			},
		},
	}
}

// PingCommand defines the structure for the /ping command.
type PingCommand struct{}

// Definition returns the application command definition.
func (c *PingCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "ping",
		Description: "Responds with Pong!",
	}
}
