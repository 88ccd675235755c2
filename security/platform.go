package security

import (
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"sentinel-bot/models"
)

// AlertContext is everything the alert destination needs to render a security
// event.
type AlertContext struct {
	Event       *models.MessageEvent
	Breakdown   *models.ScoreBreakdown
	Action      string // BANNED / DELETED / BAN FAILED / ALERT
	Compromised bool   // veteran account, possibly hacked
}

// Platform is the hosting platform's moderation surface. The engine treats all
// of these as fire-and-forget commands; failures only affect local logging.
type Platform interface {
	IsGuildOwner(guildID, userID string) bool
	DeleteMessage(channelID, messageID string) error
	BanUser(guildID, userID, reason string) error
	// PurgeRecentMessages deletes the user's messages within the trailing
	// window across all channels the bot can see, returning how many went.
	PurgeRecentMessages(guildID, userID string, window time.Duration) (int, error)
	SendAlert(alert AlertContext) error
}

// DiscordPlatform implements Platform over a discordgo session.
type DiscordPlatform struct {
	session       *discordgo.Session
	alertChannels []string
}

// NewDiscordPlatform wraps a session. alertChannels may be empty, in which
// case alerts are silently skipped.
func NewDiscordPlatform(s *discordgo.Session, alertChannels []string) *DiscordPlatform {
	return &DiscordPlatform{session: s, alertChannels: alertChannels}
}

// IsGuildOwner checks ownership from state, falling back to the API.
func (p *DiscordPlatform) IsGuildOwner(guildID, userID string) bool {
	if g, err := p.session.State.Guild(guildID); err == nil && g.OwnerID != "" {
		return g.OwnerID == userID
	}
	g, err := p.session.Guild(guildID)
	if err != nil {
		log.Printf("Could not resolve guild %s owner: %v", guildID, err)
		return false
	}
	return g.OwnerID == userID
}

func (p *DiscordPlatform) DeleteMessage(channelID, messageID string) error {
	return p.session.ChannelMessageDelete(channelID, messageID)
}

func (p *DiscordPlatform) BanUser(guildID, userID, reason string) error {
	return p.session.GuildBanCreateWithReason(guildID, userID, reason, 0)
}

// PurgeRecentMessages walks every text channel in the guild and deletes the
// user's messages newer than the window. Channels the bot cannot read are
// skipped rather than failing the sweep.
func (p *DiscordPlatform) PurgeRecentMessages(guildID, userID string, window time.Duration) (int, error) {
	channels, err := p.session.GuildChannels(guildID)
	if err != nil {
		return 0, fmt.Errorf("listing channels for guild %s: %w", guildID, err)
	}

	cutoff := time.Now().Add(-window)
	deleted := 0

	for _, ch := range channels {
		if ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}

		msgs, err := p.session.ChannelMessages(ch.ID, 100, "", "", "")
		if err != nil {
			if restErr, ok := err.(*discordgo.RESTError); ok && restErr.Response != nil && restErr.Response.StatusCode == 403 {
				continue // no read access here
			}
			log.Printf("Could not list messages in %s: %v", ch.ID, err)
			continue
		}

		for _, msg := range msgs {
			if msg.Author == nil || msg.Author.ID != userID {
				continue
			}
			if msg.Timestamp.Before(cutoff) {
				continue
			}
			if err := p.session.ChannelMessageDelete(ch.ID, msg.ID); err != nil {
				log.Printf("Could not delete message %s in %s: %v", msg.ID, ch.ID, err)
				continue
			}
			deleted++
		}
	}

	return deleted, nil
}

// SendAlert posts a severity-colored embed with the score breakdown to every
// configured alert channel. No channels configured means no alert, silently.
func (p *DiscordPlatform) SendAlert(alert AlertContext) error {
	if len(p.alertChannels) == 0 {
		return nil
	}

	embed := buildAlertEmbed(alert)

	var lastErr error
	for _, channelID := range p.alertChannels {
		if _, err := p.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
			log.Printf("Failed to send alert to channel %s: %v", channelID, err)
			lastErr = err
		}
	}
	return lastErr
}

func buildAlertEmbed(alert AlertContext) *discordgo.MessageEmbed {
	ev, bd := alert.Event, alert.Breakdown

	color := 0xffff00 // yellow: low priority
	switch alert.Action {
	case "BANNED":
		color = 0xff0000
	case "DELETED":
		color = 0xff8800
	case "BAN FAILED":
		color = 0xff00ff
	}
	if alert.Compromised {
		color = 0xffd700
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Security %s", alert.Action),
		Description: fmt.Sprintf("**User:** <@%s> (`%s`)\n**Channel:** <#%s>\n**Score:** %d",
			ev.AuthorID, ev.AuthorID, ev.ChannelID, bd.Total),
		Color:     color,
		Timestamp: time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "Breakdown",
				Value: fmt.Sprintf("identity %d / text %d / attachment %d / cross-post %d",
					bd.Identity, bd.Text, bd.Attachment, bd.CrossPost),
			},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "User: " + ev.AuthorUsername},
	}

	if ev.AvatarURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: ev.AvatarURL}
	}

	if len(bd.Reasons) > 0 {
		reasons := bd.Reasons
		if len(reasons) > 10 {
			reasons = reasons[:10]
		}
		value := ""
		for _, r := range reasons {
			value += "• " + r + "\n"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Details", Value: value})
	}

	if alert.Compromised {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Action Required",
			Value: "This is a veteran account posting scam content; it may be hacked. " +
				"DM the user to verify, consider a temporary mute, and do NOT ban unless confirmed malicious.",
		})
	}

	return embed
}
