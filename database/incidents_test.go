package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel-bot/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "incidents.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testIncident(action string, ts int64) models.Incident {
	return models.Incident{
		GuildID:   "guild-1",
		ChannelID: "chan-a",
		MessageID: "msg-1",
		UserID:    "user-1",
		Username:  "scammer",
		Action:    action,
		Score:     120,
		Reasons:   "Keyword: wallet; Cross-posted in 2 channels",
		Timestamp: ts,
	}
}

func TestRecordAndListIncidents(t *testing.T) {
	assert := assert.New(t)
	s := newTestStore(t)

	base := time.Now().Unix()
	require.NoError(t, s.RecordIncident(testIncident("watchlist", base)))
	require.NoError(t, s.RecordIncident(testIncident("ban", base+1)))
	require.NoError(t, s.RecordIncident(testIncident("delete", base+2)))

	all, err := s.RecentIncidents(10, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Newest first.
	assert.Equal("delete", all[0].Action)
	assert.Equal("watchlist", all[2].Action)
	assert.Equal("scammer", all[0].Username)
	assert.Equal(120, all[0].Score)

	limited, err := s.RecentIncidents(2, "")
	require.NoError(t, err)
	assert.Len(limited, 2)

	bans, err := s.RecentIncidents(10, "ban")
	require.NoError(t, err)
	require.Len(t, bans, 1)
	assert.Equal("ban", bans[0].Action)
}

func TestBumpDailyStatUpsert(t *testing.T) {
	assert := assert.New(t)
	s := newTestStore(t)

	day := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.BumpDailyStat("guild-1", "ban", day))
	require.NoError(t, s.BumpDailyStat("guild-1", "ban", day))
	require.NoError(t, s.BumpDailyStat("guild-1", "delete", day))
	require.NoError(t, s.BumpDailyStat("guild-1", "watchlist", day))
	require.NoError(t, s.BumpDailyStat("guild-2", "ban", day))
	// Actions without a tier column are incident-only.
	require.NoError(t, s.BumpDailyStat("guild-1", "join", day))
	require.NoError(t, s.BumpDailyStat("guild-1", "ban_failed", day))

	stats, err := s.StatsForDate("2025-06-01")
	require.NoError(t, err)
	require.Len(t, stats, 2)

	byGuild := map[string]models.DailyStat{}
	for _, st := range stats {
		byGuild[st.GuildID] = st
	}
	assert.EqualValues(2, byGuild["guild-1"].Banned)
	assert.EqualValues(1, byGuild["guild-1"].Deleted)
	assert.EqualValues(1, byGuild["guild-1"].Watchlisted)
	assert.EqualValues(1, byGuild["guild-2"].Banned)

	empty, err := s.StatsForDate("2025-06-02")
	require.NoError(t, err)
	assert.Empty(empty)
}

func TestCleanupOldIncidents(t *testing.T) {
	assert := assert.New(t)
	s := newTestStore(t)

	old := time.Now().AddDate(0, 0, -(incidentRetentionDays + 5)).Unix()
	require.NoError(t, s.RecordIncident(testIncident("ban", old)))
	require.NoError(t, s.RecordIncident(testIncident("ban", time.Now().Unix())))

	s.CleanupOldIncidents()

	remaining, err := s.RecentIncidents(10, "")
	require.NoError(t, err)
	assert.Len(remaining, 1)
}
