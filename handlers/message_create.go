package handlers

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"sentinel-bot/bot"
	"sentinel-bot/models"
)

// MessageCreate evaluates every inbound guild message through the security
// engine. Each event is processed on its own goroutine; the engine's shared
// state is synchronized per author, so unrelated messages never contend.
func MessageCreate(b *bot.Bot) func(s *discordgo.Session, m *discordgo.MessageCreate) {
	return func(s *discordgo.Session, m *discordgo.MessageCreate) {
		// Ignore messages by the bot itself and other bots.
		if m.Author == nil || m.Author.ID == s.State.User.ID || m.Author.Bot {
			return
		}
		// DMs have no guild to enforce in.
		if m.GuildID == "" {
			return
		}
		if !b.Engine.GuildEnabled(m.GuildID) {
			return
		}

		ev := buildEvent(m)
		go b.Engine.Process(context.Background(), ev)
	}
}

// buildEvent snapshots the gateway payload into the engine's event shape.
func buildEvent(m *discordgo.MessageCreate) *models.MessageEvent {
	ev := &models.MessageEvent{
		GuildID:        m.GuildID,
		ChannelID:      m.ChannelID,
		MessageID:      m.ID,
		AuthorID:       m.Author.ID,
		AuthorUsername: m.Author.Username,
		HasAvatar:      m.Author.Avatar != "",
		AvatarURL:      m.Author.AvatarURL(""),
		Content:        m.Content,
		Timestamp:      m.Timestamp,
	}

	// 显示名优先：刷屏者通常只改服务器内昵称。
	if m.Member != nil {
		ev.IsMember = true
		ev.AuthorRoles = m.Member.Roles
		if m.Member.Nick != "" {
			ev.AuthorUsername = m.Member.Nick
		}
	}

	if created, err := discordgo.SnowflakeTimestamp(m.Author.ID); err == nil {
		ev.AccountCreated = created
	}

	for _, att := range m.Attachments {
		ev.Attachments = append(ev.Attachments, models.AttachmentInfo{
			URL:         att.URL,
			Filename:    att.Filename,
			ContentType: att.ContentType,
			Size:        att.Size,
		})
	}

	for _, embed := range m.Embeds {
		if embed.Image != nil && embed.Image.URL != "" {
			ev.EmbedImageURLs = append(ev.EmbedImageURLs, embed.Image.URL)
		}
		if embed.Thumbnail != nil && embed.Thumbnail.URL != "" {
			ev.EmbedImageURLs = append(ev.EmbedImageURLs, embed.Thumbnail.URL)
		}
	}

	return ev
}
