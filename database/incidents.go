package database

import (
	"fmt"
	"time"

	"sentinel-bot/models"
)

// RecordIncident appends one enforcement record.
func (s *Store) RecordIncident(inc models.Incident) error {
	query := `
    INSERT INTO incidents (guild_id, channel_id, message_id, user_id, username, action, score, reasons, timestamp)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.Exec(query,
		inc.GuildID, inc.ChannelID, inc.MessageID, inc.UserID, inc.Username,
		inc.Action, inc.Score, inc.Reasons, inc.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert incident: %w", err)
	}
	return nil
}

// RecentIncidents returns up to limit incidents, newest first, optionally
// filtered by action ("" returns all).
func (s *Store) RecentIncidents(limit int, action string) ([]models.Incident, error) {
	query := `
    SELECT incident_id, guild_id, channel_id, message_id, user_id, username, action, score, reasons, timestamp
    FROM incidents`
	args := []interface{}{}
	if action != "" {
		query += " WHERE action = ?"
		args = append(args, action)
	}
	query += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query incidents: %w", err)
	}
	defer rows.Close()

	var incidents []models.Incident
	for rows.Next() {
		var inc models.Incident
		if err := rows.Scan(&inc.ID, &inc.GuildID, &inc.ChannelID, &inc.MessageID,
			&inc.UserID, &inc.Username, &inc.Action, &inc.Score, &inc.Reasons, &inc.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}
		incidents = append(incidents, inc)
	}
	return incidents, rows.Err()
}

// BumpDailyStat increments the per-guild counter for the action's tier on the
// event's UTC calendar day. Unknown actions (e.g. "join", "ban_failed") only
// land in the incidents table.
func (s *Store) BumpDailyStat(guildID, action string, t time.Time) error {
	var column string
	switch action {
	case "watchlist":
		column = "watchlisted"
	case "delete":
		column = "deleted"
	case "ban":
		column = "banned"
	default:
		return nil
	}

	date := t.UTC().Format("2006-01-02")
	query := fmt.Sprintf(`
    INSERT INTO daily_stats (date, guild_id, %[1]s) VALUES (?, ?, 1)
    ON CONFLICT(date, guild_id) DO UPDATE SET %[1]s = %[1]s + 1`, column)
	if _, err := s.db.Exec(query, date, guildID); err != nil {
		return fmt.Errorf("failed to bump %s for guild %s: %w", column, guildID, err)
	}
	return nil
}

// StatsForDate returns per-guild counts for one UTC calendar day.
func (s *Store) StatsForDate(date string) ([]models.DailyStat, error) {
	rows, err := s.db.Query(`
    SELECT date, guild_id, watchlisted, deleted, banned
    FROM daily_stats WHERE date = ?`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer rows.Close()

	var stats []models.DailyStat
	for rows.Next() {
		var st models.DailyStat
		if err := rows.Scan(&st.Date, &st.GuildID, &st.Watchlisted, &st.Deleted, &st.Banned); err != nil {
			return nil, fmt.Errorf("failed to scan daily stat: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
