package handlers

import (
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"sentinel-bot/bot"
	"sentinel-bot/models"
	"sentinel-bot/utils"
)

// MemberAddHandler 处理成员加入服务器事件。
// 对新成员只跑身份启发式（用户名、头像），达到观察阈值时记录，不做任何处置。
func MemberAddHandler(b *bot.Bot) func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	return func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		if m.User == nil || m.User.Bot {
			return
		}
		if !b.Engine.GuildEnabled(m.GuildID) {
			return
		}

		username := m.User.Username
		if m.Nick != "" {
			username = m.Nick
		}

		score, reasons := b.Engine.IdentityScore(username, m.User.Avatar != "", m.Roles, true)
		if score < b.Engine.WatchlistThreshold() {
			return
		}

		log.Printf("Suspicious join: %s (%s) in guild %s, identity score %d",
			username, m.User.ID, m.GuildID, score)

		inc := models.Incident{
			GuildID:   m.GuildID,
			UserID:    m.User.ID,
			Username:  username,
			Action:    "join",
			Score:     score,
			Reasons:   joinReasonText(reasons),
			Timestamp: time.Now().Unix(),
		}
		if err := b.Store.RecordIncident(inc); err != nil {
			log.Printf("Failed to record suspicious join for %s: %v", m.User.ID, err)
		}

		utils.Warn("Security", "SuspiciousJoin",
			fmt.Sprintf("%s (%s) joined guild %s with identity score %d: %s",
				username, m.User.ID, m.GuildID, score, inc.Reasons))
	}
}

func joinReasonText(reasons []string) string {
	out := ""
	for i, r := range reasons {
		if i > 0 {
			out += "; "
		}
		out += r
	}
	return out
}
