package security

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel-bot/models"
)

func banEvent(authorID string) *models.MessageEvent {
	return &models.MessageEvent{
		GuildID:        "guild-1",
		ChannelID:      "chan-a",
		MessageID:      "msg-1",
		AuthorID:       authorID,
		AuthorUsername: "scammer",
		Timestamp:      time.Now(),
	}
}

func banBreakdown() *models.ScoreBreakdown {
	return &models.ScoreBreakdown{
		Identity: 40, Text: 60, CrossPost: 60,
		Total:   150,
		Reasons: []string{"Keyword: wallet", "Cross-posted in 2 channels"},
	}
}

func TestDispatcherIgnoreHasNoSideEffects(t *testing.T) {
	platform := &fakePlatform{}
	recorder := &fakeRecorder{}
	d := NewDispatcher(testSecurityConfig(), platform, recorder)

	d.Dispatch(context.Background(), banEvent("user-1"), models.DecisionIgnore, &models.ScoreBreakdown{})

	assert.Empty(t, platform.deletes)
	assert.Empty(t, platform.alerts)
	assert.Empty(t, recorder.incidents)
}

func TestDispatcherWatchlistRecordsOnly(t *testing.T) {
	assert := assert.New(t)
	platform := &fakePlatform{}
	recorder := &fakeRecorder{}
	d := NewDispatcher(testSecurityConfig(), platform, recorder)

	bd := &models.ScoreBreakdown{Total: 55, Reasons: []string{"No roles"}}
	d.Dispatch(context.Background(), banEvent("user-1"), models.DecisionWatchlist, bd)

	// Observability only: no platform action.
	assert.Empty(platform.deletes)
	assert.Empty(platform.bans)
	require.Len(t, recorder.incidents, 1)
	assert.Equal("watchlist", recorder.incidents[0].Action)
	assert.Equal(55, recorder.incidents[0].Score)
}

func TestDispatcherDeleteAndAlert(t *testing.T) {
	assert := assert.New(t)
	platform := &fakePlatform{}
	recorder := &fakeRecorder{}
	d := NewDispatcher(testSecurityConfig(), platform, recorder)

	bd := &models.ScoreBreakdown{Total: 80, Reasons: []string{"Caps spam (90%)"}}
	d.Dispatch(context.Background(), banEvent("user-1"), models.DecisionDeleteAndAlert, bd)

	assert.Equal([]string{"chan-a/msg-1"}, platform.deletes)
	assert.Empty(platform.bans) // account standing untouched
	require.Len(t, platform.alerts, 1)
	assert.Equal("DELETED", platform.alerts[0].Action)
	require.Len(t, recorder.incidents, 1)
	assert.Equal("delete", recorder.incidents[0].Action)
}

func TestDispatcherVeteranCompromisedNote(t *testing.T) {
	assert := assert.New(t)
	platform := &fakePlatform{}
	d := NewDispatcher(testSecurityConfig(), platform, &fakeRecorder{})

	ev := banEvent("user-1")
	ev.AccountCreated = time.Now().AddDate(-3, 0, 0)
	d.Dispatch(context.Background(), ev, models.DecisionDeleteAndAlert, banBreakdown())

	require.Len(t, platform.alerts, 1)
	assert.True(platform.alerts[0].Compromised)
}

func TestDispatcherInstantBanSequence(t *testing.T) {
	assert := assert.New(t)
	platform := &fakePlatform{}
	recorder := &fakeRecorder{}
	d := NewDispatcher(testSecurityConfig(), platform, recorder)

	d.Dispatch(context.Background(), banEvent("user-1"), models.DecisionInstantBan, banBreakdown())

	assert.Equal([]string{"chan-a/msg-1"}, platform.deletes)
	assert.Equal([]string{"user-1"}, platform.bans)
	assert.Equal([]string{"user-1"}, platform.purges)
	require.Len(t, platform.alerts, 1)
	assert.Equal("BANNED", platform.alerts[0].Action)
	require.Len(t, recorder.incidents, 1)
	assert.Equal("ban", recorder.incidents[0].Action)
}

func TestDispatcherBanGuardIdempotency(t *testing.T) {
	assert := assert.New(t)
	// Slow the ban call so both goroutines are in flight together.
	platform := &fakePlatform{banDelay: 50 * time.Millisecond}
	d := NewDispatcher(testSecurityConfig(), platform, &fakeRecorder{})

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Dispatch(context.Background(), banEvent("user-1"), models.DecisionInstantBan, banBreakdown())
		}()
	}
	wg.Wait()

	// Exactly one ban and one cleanup, however the two evaluations raced.
	assert.Equal(1, platform.banCount())
	assert.Len(platform.purges, 1)
}

func TestDispatcherBanFailureReleasesGuard(t *testing.T) {
	assert := assert.New(t)
	platform := &fakePlatform{banErr: errors.New("missing permissions")}
	recorder := &fakeRecorder{}
	d := NewDispatcher(testSecurityConfig(), platform, recorder)

	d.Dispatch(context.Background(), banEvent("user-1"), models.DecisionInstantBan, banBreakdown())

	// Failure is reported via the alert path, never as a panic or error.
	require.Len(t, platform.alerts, 1)
	assert.Equal("BAN FAILED", platform.alerts[0].Action)
	assert.Empty(platform.purges)

	// The guard must not stay held: a later attempt goes through.
	platform.mu.Lock()
	platform.banErr = nil
	platform.mu.Unlock()
	d.Dispatch(context.Background(), banEvent("user-1"), models.DecisionInstantBan, banBreakdown())
	assert.Equal(1, platform.banCount())
}

func TestWithRetryEventuallySucceeds(t *testing.T) {
	assert := assert.New(t)

	calls := 0
	err := withRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	assert.NoError(err)
	assert.Equal(3, calls)

	calls = 0
	err = withRetry(context.Background(), func() error {
		calls++
		return errors.New("permanent")
	})
	assert.Error(err)
	assert.Equal(retryAttempts, calls)
}
