package security

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"sentinel-bot/metrics"
	"sentinel-bot/models"
)

// retryAttempts bounds each platform call. Failures past the last attempt fall
// back to the alert path; the scoring decision is never re-run or escalated.
const retryAttempts = 3

// IncidentRecorder persists enforcement outcomes for the watchlist commands
// and daily summary. A nil recorder disables persistence, not enforcement.
type IncidentRecorder interface {
	RecordIncident(inc models.Incident) error
	BumpDailyStat(guildID, action string, t time.Time) error
}

// Dispatcher executes the action a decision maps to, exactly once per
// triggering event. The per-author ban guard prevents concurrently evaluated
// messages from issuing duplicate ban calls.
type Dispatcher struct {
	cfg      *models.SecurityConfig
	platform Platform
	recorder IncidentRecorder

	// banGuards holds a marker per author while their ban is in progress.
	banGuards *xsync.MapOf[string, struct{}]
}

// NewDispatcher creates a dispatcher over the given platform. recorder may be
// nil.
func NewDispatcher(cfg *models.SecurityConfig, platform Platform, recorder IncidentRecorder) *Dispatcher {
	return &Dispatcher{
		cfg:       cfg,
		platform:  platform,
		recorder:  recorder,
		banGuards: xsync.NewMapOf[string, struct{}](),
	}
}

// Dispatch performs the side effects for a decision. Platform failures are
// logged and alerted but never propagate; the worst case is "flagged but not
// enforced".
func (d *Dispatcher) Dispatch(ctx context.Context, ev *models.MessageEvent, decision models.EnforcementDecision, bd *models.ScoreBreakdown) {
	switch decision {
	case models.DecisionIgnore:
		// No side effect.
	case models.DecisionWatchlist:
		d.watchlist(ev, bd)
	case models.DecisionDeleteAndAlert:
		d.deleteAndAlert(ctx, ev, bd)
	case models.DecisionInstantBan:
		d.instantBan(ctx, ev, bd)
	}
}

func (d *Dispatcher) watchlist(ev *models.MessageEvent, bd *models.ScoreBreakdown) {
	log.Printf("Watchlist: %s (%s) score %d - %s", ev.AuthorUsername, ev.AuthorID, bd.Total, joinReasons(bd.Reasons))
	d.record(ev, "watchlist", bd)
}

func (d *Dispatcher) deleteAndAlert(ctx context.Context, ev *models.MessageEvent, bd *models.ScoreBreakdown) {
	if err := withRetry(ctx, func() error {
		return d.platform.DeleteMessage(ev.ChannelID, ev.MessageID)
	}); err != nil {
		log.Printf("Failed to delete message %s: %v", ev.MessageID, err)
		metrics.PlatformErrors.WithLabelValues("delete").Inc()
	}

	d.alert(ev, bd, "DELETED")
	d.record(ev, "delete", bd)
}

func (d *Dispatcher) instantBan(ctx context.Context, ev *models.MessageEvent, bd *models.ScoreBreakdown) {
	// Atomic check-and-set: exactly one concurrent evaluation of this author
	// runs the ban sequence. Losers report the same outcome without a
	// duplicate platform call.
	if _, alreadyBanning := d.banGuards.LoadOrStore(ev.AuthorID, struct{}{}); alreadyBanning {
		metrics.BanGuardSkips.Inc()
		log.Printf("Ban already in progress for %s, skipping duplicate", ev.AuthorID)
		return
	}
	// Released unconditionally; a permanently held guard would silence all
	// future bans for the author.
	defer d.banGuards.Delete(ev.AuthorID)

	log.Printf("INSTANT BAN: %s (%s) score %d - %s", ev.AuthorUsername, ev.AuthorID, bd.Total, joinReasons(bd.Reasons))

	if err := withRetry(ctx, func() error {
		return d.platform.DeleteMessage(ev.ChannelID, ev.MessageID)
	}); err != nil {
		log.Printf("Failed to delete triggering message %s: %v", ev.MessageID, err)
		metrics.PlatformErrors.WithLabelValues("delete").Inc()
	}

	reason := fmt.Sprintf("Auto-ban (score %d): %s", bd.Total, joinReasons(bd.Reasons))
	if err := withRetry(ctx, func() error {
		return d.platform.BanUser(ev.GuildID, ev.AuthorID, reason)
	}); err != nil {
		log.Printf("Failed to ban %s: %v", ev.AuthorID, err)
		metrics.PlatformErrors.WithLabelValues("ban").Inc()
		d.alert(ev, bd, "BAN FAILED")
		d.record(ev, "ban_failed", bd)
		return
	}

	// A half-finished cleanup is an acceptable degraded outcome; the ban
	// itself already landed.
	if deleted, err := d.platform.PurgeRecentMessages(ev.GuildID, ev.AuthorID, d.cfg.PurgeWindow()); err != nil {
		log.Printf("Cleanup after banning %s incomplete: %v", ev.AuthorID, err)
		metrics.PlatformErrors.WithLabelValues("purge").Inc()
	} else if deleted > 0 {
		log.Printf("Deleted %d recent messages from banned user %s", deleted, ev.AuthorID)
	}

	d.alert(ev, bd, "BANNED")
	d.record(ev, "ban", bd)
}

// alert posts the score breakdown and message context to the configured alert
// destinations. Veteran accounts hitting the delete tier get the compromised-
// account note instead of scam framing.
func (d *Dispatcher) alert(ev *models.MessageEvent, bd *models.ScoreBreakdown, action string) {
	compromised := action == "DELETED" &&
		d.cfg.VeteranAccountDays > 0 &&
		!ev.AccountCreated.IsZero() &&
		time.Since(ev.AccountCreated) > d.cfg.VeteranAge()

	if err := d.platform.SendAlert(AlertContext{
		Event:       ev,
		Breakdown:   bd,
		Action:      action,
		Compromised: compromised,
	}); err != nil {
		log.Printf("Failed to send alert for %s: %v", ev.AuthorID, err)
		metrics.PlatformErrors.WithLabelValues("alert").Inc()
	}
}

func (d *Dispatcher) record(ev *models.MessageEvent, action string, bd *models.ScoreBreakdown) {
	if d.recorder == nil {
		return
	}
	inc := models.Incident{
		GuildID:   ev.GuildID,
		ChannelID: ev.ChannelID,
		MessageID: ev.MessageID,
		UserID:    ev.AuthorID,
		Username:  ev.AuthorUsername,
		Action:    action,
		Score:     bd.Total,
		Reasons:   joinReasons(bd.Reasons),
		Timestamp: ev.Timestamp.Unix(),
	}
	if err := d.recorder.RecordIncident(inc); err != nil {
		log.Printf("Failed to record %s incident for %s: %v", action, ev.AuthorID, err)
	}
	if err := d.recorder.BumpDailyStat(ev.GuildID, action, ev.Timestamp); err != nil {
		log.Printf("Failed to bump daily stats for guild %s: %v", ev.GuildID, err)
	}
}

// withRetry runs op up to retryAttempts times with doubling backoff. It stops
// early when the context is done so shutdown doesn't hang on a dead platform,
// but an op already in flight always runs to completion.
func withRetry(ctx context.Context, op func() error) error {
	var err error
	backoff := 250 * time.Millisecond
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if attempt == retryAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}

func joinReasons(reasons []string) string {
	if len(reasons) == 0 {
		return "no details"
	}
	return strings.Join(reasons, "; ")
}
