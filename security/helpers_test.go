package security

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sentinel-bot/models"
)

// testSecurityConfig mirrors the shipped default policy.
func testSecurityConfig() *models.SecurityConfig {
	return &models.SecurityConfig{
		DefaultEnabled:    true,
		ExploitableRoleID: "catcher-role",
		Thresholds: models.Thresholds{
			Watchlist: 50,
			Delete:    75,
			Ban:       100,
			Cap:       150,
		},
		Weights: models.Weights{
			CurrencySymbol:      20,
			HoistingChar:        20,
			UsernamePattern:     15,
			NoAvatar:            15,
			NoRoles:             20,
			ExploitableRoleOnly: 30,
			CapsSpam:            30,
			Gibberish:           25,
			KeywordCap:          100,
			CrossPost:           60,
			BadMagic:            100,
		},
		KeywordPatterns: map[string]int{
			`\bWALL?LET\b`:               50,
			`\b\d+\s*SOL\b`:              50,
			`\bDEAD\s+TOKENS?\b`:         50,
			`\bPAY\s+HIM\b`:              50,
			`\bPLENTY\s+TRANSACTIONS?\b`: 40,
			`\bEMPTY\s+WALL?LET\b`:       40,
			`\bCRYPTO\b`:                 20,
			`\bDM\s+ME\b`:                30,
			`\bBUY\b.*\bWALL?LET\b`:      40,
		},
		CrossPostWindowSeconds: 600,
		PurgeWindowSeconds:     300,
		MaxTrackedAuthors:      128,
		VeteranAccountDays:     365,
	}
}

// fakePlatform records moderation calls instead of issuing them.
type fakePlatform struct {
	mu      sync.Mutex
	ownerID string

	deletes []string // "channel/message"
	bans    []string // user IDs
	purges  []string // user IDs
	alerts  []AlertContext

	banErr   error
	banDelay time.Duration
}

func (p *fakePlatform) IsGuildOwner(guildID, userID string) bool {
	return userID == p.ownerID
}

func (p *fakePlatform) DeleteMessage(channelID, messageID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deletes = append(p.deletes, channelID+"/"+messageID)
	return nil
}

func (p *fakePlatform) BanUser(guildID, userID, reason string) error {
	if p.banDelay > 0 {
		time.Sleep(p.banDelay)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.banErr != nil {
		return p.banErr
	}
	p.bans = append(p.bans, userID)
	return nil
}

func (p *fakePlatform) PurgeRecentMessages(guildID, userID string, window time.Duration) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.purges = append(p.purges, userID)
	return 0, nil
}

func (p *fakePlatform) SendAlert(alert AlertContext) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, alert)
	return nil
}

func (p *fakePlatform) banCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.bans)
}

// fakeFetcher serves canned byte prefixes per URL.
type fakeFetcher struct {
	prefixes map[string][]byte
}

func (f *fakeFetcher) FetchPrefix(ctx context.Context, url string, n int) ([]byte, error) {
	prefix, ok := f.prefixes[url]
	if !ok {
		return nil, fmt.Errorf("no bytes for %s", url)
	}
	if len(prefix) > n {
		prefix = prefix[:n]
	}
	return prefix, nil
}

// fakeRecorder collects incidents in memory.
type fakeRecorder struct {
	mu        sync.Mutex
	incidents []models.Incident
}

func (r *fakeRecorder) RecordIncident(inc models.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.incidents = append(r.incidents, inc)
	return nil
}

func (r *fakeRecorder) BumpDailyStat(guildID, action string, t time.Time) error {
	return nil
}
