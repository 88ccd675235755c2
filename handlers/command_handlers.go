package handlers

import (
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"sentinel-bot/bot"
)

// HandlePing responds with Pong.
func HandlePing(s *discordgo.Session, i *discordgo.InteractionCreate) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "Pong!",
		},
	})
}

// HandleSecurity shows engine status and today's enforcement counts.
func HandleSecurity(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	today := time.Now().UTC().Format("2006-01-02")
	stats, err := b.Store.StatsForDate(today)
	if err != nil {
		log.Printf("Could not load stats for %s: %v", today, err)
	}

	var watchlisted, deleted, banned int64
	for _, st := range stats {
		watchlisted += st.Watchlisted
		deleted += st.Deleted
		banned += st.Banned
	}

	enabled := "enabled by default"
	if !b.Engine.GuildEnabled(i.GuildID) {
		enabled = "disabled for this guild"
	}

	embed := &discordgo.MessageEmbed{
		Title: "Security engine status",
		Color: 0x00bfff,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Engine",
				Value:  enabled,
				Inline: true,
			},
			{
				Name:   "Tracked authors",
				Value:  fmt.Sprintf("%d", b.Engine.Windows().TrackedAuthors()),
				Inline: true,
			},
			{
				Name: fmt.Sprintf("Today (%s, UTC)", today),
				Value: fmt.Sprintf("%d watchlisted / %d deleted / %d banned",
					watchlisted, deleted, banned),
			},
		},
	}

	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

// HandleWatchlist lists recent incidents, optionally filtered by action.
func HandleWatchlist(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	limit := 10
	action := ""
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "limit":
			limit = int(opt.IntValue())
		case "action":
			action = opt.StringValue()
		}
	}
	if limit < 1 || limit > 25 {
		limit = 10
	}

	incidents, err := b.Store.RecentIncidents(limit, action)
	if err != nil {
		log.Printf("Could not load incidents: %v", err)
		s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: "🚫内部错误：could not load incidents.",
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		})
		return
	}

	if len(incidents) == 0 {
		s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: "No incidents recorded.",
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		})
		return
	}

	value := ""
	for _, inc := range incidents {
		ts := time.Unix(inc.Timestamp, 0).UTC().Format("01-02 15:04")
		value += fmt.Sprintf("`%s` **%s** %s (`%s`) score %d — %s\n",
			ts, inc.Action, inc.Username, inc.UserID, inc.Score, inc.Reasons)
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Recent incidents",
		Description: value,
		Color:       0xffa500,
	}

	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}
