package models

import "time"

// SecurityConfig represents the "security" section of config/security_config.json.
// Environment variables and config.yaml can override individual keys through viper.
type SecurityConfig struct {
	// Enabled maps guild IDs to an on/off switch. Guilds missing from the map
	// fall back to DefaultEnabled.
	Enabled        map[string]bool `json:"enabled" mapstructure:"enabled"`
	DefaultEnabled bool            `json:"default_enabled" mapstructure:"default_enabled"`

	// TrustedUserIDs are never scored. The guild owner is always trusted.
	TrustedUserIDs []string `json:"trusted_user_ids" mapstructure:"trusted_user_ids"`

	// ExploitableRoleID is a self-assignable role that scammers grab to look
	// legitimate. Holding only this role is itself a signal.
	ExploitableRoleID string `json:"exploitable_role_id" mapstructure:"exploitable_role_id"`

	// AdminChannelIDs receive alert embeds and the daily summary.
	AdminChannelIDs []string `json:"admin_channel_ids" mapstructure:"admin_channel_ids"`

	DBPath string `json:"db_path" mapstructure:"db_path"`

	Thresholds Thresholds `json:"thresholds" mapstructure:"thresholds"`
	Weights    Weights    `json:"weights" mapstructure:"weights"`

	// KeywordPatterns maps a regexp (applied case-insensitively to the message
	// text) to the points it contributes when matched.
	KeywordPatterns map[string]int `json:"keyword_patterns" mapstructure:"keyword_patterns"`

	CrossPostWindowSeconds int `json:"crosspost_window_seconds" mapstructure:"crosspost_window_seconds"`
	PurgeWindowSeconds     int `json:"purge_window_seconds" mapstructure:"purge_window_seconds"`
	MaxTrackedAuthors      int `json:"max_tracked_authors" mapstructure:"max_tracked_authors"`

	// VeteranAccountDays marks accounts older than this as veterans; a veteran
	// hitting the delete tier is flagged as possibly compromised instead of a
	// throwaway.
	VeteranAccountDays int `json:"veteran_account_days" mapstructure:"veteran_account_days"`
}

// CrossPostWindow returns the duplicate-detection window as a duration.
func (c *SecurityConfig) CrossPostWindow() time.Duration {
	return time.Duration(c.CrossPostWindowSeconds) * time.Second
}

// PurgeWindow returns how far back a ban's message cleanup reaches.
func (c *SecurityConfig) PurgeWindow() time.Duration {
	return time.Duration(c.PurgeWindowSeconds) * time.Second
}

// VeteranAge returns the account age past which a flagged account is treated
// as possibly compromised rather than a throwaway.
func (c *SecurityConfig) VeteranAge() time.Duration {
	return time.Duration(c.VeteranAccountDays) * 24 * time.Hour
}

// Thresholds are the score boundaries between enforcement tiers, plus the
// global cap on an aggregate score.
type Thresholds struct {
	Watchlist int `json:"watchlist" mapstructure:"watchlist"`
	Delete    int `json:"delete" mapstructure:"delete"`
	Ban       int `json:"ban" mapstructure:"ban"`
	Cap       int `json:"cap" mapstructure:"cap"`
}

// Weights are the per-signal score contributions. They are policy, not
// contracts: tune them against real traffic.
type Weights struct {
	CurrencySymbol      int `json:"currency_symbol" mapstructure:"currency_symbol"`
	HoistingChar        int `json:"hoisting_char" mapstructure:"hoisting_char"`
	UsernamePattern     int `json:"username_pattern" mapstructure:"username_pattern"`
	NoAvatar            int `json:"no_avatar" mapstructure:"no_avatar"`
	NoRoles             int `json:"no_roles" mapstructure:"no_roles"`
	ExploitableRoleOnly int `json:"exploitable_role_only" mapstructure:"exploitable_role_only"`
	CapsSpam            int `json:"caps_spam" mapstructure:"caps_spam"`
	Gibberish           int `json:"gibberish" mapstructure:"gibberish"`
	KeywordCap          int `json:"keyword_cap" mapstructure:"keyword_cap"`
	CrossPost           int `json:"cross_post" mapstructure:"cross_post"`
	BadMagic            int `json:"bad_magic" mapstructure:"bad_magic"`
}

// CommandsConfig represents the "commands" section used for slash command
// permission checks.
type CommandsConfig struct {
	Auth AuthConfig `json:"auth" mapstructure:"auth"`
}

// AuthConfig lists the identities for each permission level.
type AuthConfig struct {
	Developers  []string `json:"developers" mapstructure:"developers"`
	AdminsRoles []string `json:"admins_roles" mapstructure:"admins_roles"`
	Guest       []string `json:"guest" mapstructure:"guest"`
}
