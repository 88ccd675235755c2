package models

import "time"

// MessageEvent is an immutable snapshot of an inbound message, extracted from
// the gateway event before evaluation so the scoring path never touches
// session state.
type MessageEvent struct {
	GuildID   string
	ChannelID string
	MessageID string

	AuthorID       string
	AuthorUsername string
	IsMember       bool     // false for webhooks and uncached senders; role checks are skipped
	AuthorRoles    []string // assignable role IDs, @everyone excluded
	HasAvatar      bool
	AvatarURL      string
	AccountCreated time.Time

	Content        string
	Attachments    []AttachmentInfo
	EmbedImageURLs []string

	Timestamp time.Time
}

// AttachmentInfo describes one uploaded file as declared by the sender.
type AttachmentInfo struct {
	URL         string
	Filename    string
	ContentType string
	Size        int
}

// EnforcementDecision is the tier an aggregate score maps to.
type EnforcementDecision int

const (
	DecisionIgnore EnforcementDecision = iota
	DecisionWatchlist
	DecisionDeleteAndAlert
	DecisionInstantBan
)

// String returns the action name used in logs, incidents and metrics labels.
func (d EnforcementDecision) String() string {
	switch d {
	case DecisionWatchlist:
		return "watchlist"
	case DecisionDeleteAndAlert:
		return "delete"
	case DecisionInstantBan:
		return "ban"
	default:
		return "ignore"
	}
}

// ScoreBreakdown carries the per-signal contributions behind a decision.
type ScoreBreakdown struct {
	Identity   int
	Text       int
	Attachment int
	CrossPost  int
	Total      int // capped sum of the four contributions
	Reasons    []string
	Bypassed   bool // owner or trusted identity; no heuristics ran
}

// Incident is one enforcement record in the database.
type Incident struct {
	ID        int64  `db:"incident_id"`
	GuildID   string `db:"guild_id"`
	ChannelID string `db:"channel_id"`
	MessageID string `db:"message_id"`
	UserID    string `db:"user_id"`
	Username  string `db:"username"`
	Action    string `db:"action"` // watchlist / delete / ban / join
	Score     int    `db:"score"`
	Reasons   string `db:"reasons"` // "; "-joined reason list
	Timestamp int64  `db:"timestamp"`
}

// DailyStat is one row of per-guild enforcement counts for a calendar day.
type DailyStat struct {
	Date        string `db:"date"` // YYYY-MM-DD, UTC
	GuildID     string `db:"guild_id"`
	Watchlisted int64  `db:"watchlisted"`
	Deleted     int64  `db:"deleted"`
	Banned      int64  `db:"banned"`
}
