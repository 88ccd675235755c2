package security

import (
	"context"
	"log"

	"sentinel-bot/metrics"
	"sentinel-bot/models"
)

// Engine runs the full evaluation pipeline for one message event: bypass
// check, the four heuristics, capped aggregation, threshold mapping and
// enforcement dispatch. Evaluations are independent; the only shared state is
// the window store and the dispatcher's ban guards, both internally
// synchronized per author.
type Engine struct {
	cfg        *models.SecurityConfig
	trusted    map[string]bool
	windows    *WindowStore
	identity   *identityScorer
	text       *textScorer
	attachment *attachmentScorer
	crosspost  *crossPostDetector
	dispatcher *Dispatcher
	platform   Platform
}

// NewEngine wires the scorers around a platform and an incident recorder.
// fetcher may be nil, in which case the default HTTP prefix fetcher is used.
func NewEngine(cfg *models.SecurityConfig, platform Platform, recorder IncidentRecorder, fetcher PrefixFetcher) *Engine {
	if fetcher == nil {
		fetcher = NewPrefixFetcher()
	}

	trusted := make(map[string]bool, len(cfg.TrustedUserIDs))
	for _, id := range cfg.TrustedUserIDs {
		trusted[id] = true
	}

	windows := NewWindowStore(cfg.MaxTrackedAuthors, cfg.CrossPostWindow())

	return &Engine{
		cfg:        cfg,
		trusted:    trusted,
		windows:    windows,
		identity:   newIdentityScorer(cfg),
		text:       newTextScorer(cfg),
		attachment: newAttachmentScorer(cfg, fetcher),
		crosspost:  newCrossPostDetector(cfg, windows),
		dispatcher: NewDispatcher(cfg, platform, recorder),
		platform:   platform,
	}
}

// GuildEnabled reports whether the engine evaluates messages for a guild.
func (e *Engine) GuildEnabled(guildID string) bool {
	if enabled, ok := e.cfg.Enabled[guildID]; ok {
		return enabled
	}
	return e.cfg.DefaultEnabled
}

// Windows exposes the recency window store for the scheduler's sweep.
func (e *Engine) Windows() *WindowStore {
	return e.windows
}

// IdentityScore runs only the identity heuristics; used by the member-join
// screening, which has no message to evaluate.
func (e *Engine) IdentityScore(username string, hasAvatar bool, roles []string, isMember bool) (int, []string) {
	return e.identity.Score(username, hasAvatar, roles, isMember)
}

// WatchlistThreshold returns the lowest enforcement boundary.
func (e *Engine) WatchlistThreshold() int {
	return e.cfg.Thresholds.Watchlist
}

// Evaluate computes the score breakdown for an event. The owner/trusted bypass
// runs before any heuristic, so trusted accounts incur no heuristic cost and
// cannot be flagged by incidental false positives.
func (e *Engine) Evaluate(ctx context.Context, ev *models.MessageEvent) *models.ScoreBreakdown {
	bd := &models.ScoreBreakdown{}

	if e.trusted[ev.AuthorID] || e.platform.IsGuildOwner(ev.GuildID, ev.AuthorID) {
		bd.Bypassed = true
		return bd
	}

	var reasons []string

	bd.Identity, reasons = e.identity.Score(ev.AuthorUsername, ev.HasAvatar, ev.AuthorRoles, ev.IsMember)
	bd.Reasons = append(bd.Reasons, reasons...)

	bd.Text, reasons = e.text.Score(ev.Content, len(ev.AuthorRoles) > 0)
	bd.Reasons = append(bd.Reasons, reasons...)

	bd.Attachment, reasons = e.attachment.Score(ctx, ev)
	bd.Reasons = append(bd.Reasons, reasons...)

	fingerprint := Fingerprint(ev.Content, len(ev.Attachments))
	bd.CrossPost, reasons = e.crosspost.Score(ev, fingerprint)
	bd.Reasons = append(bd.Reasons, reasons...)

	bd.Total = bd.Identity + bd.Text + bd.Attachment + bd.CrossPost
	if bd.Total > e.cfg.Thresholds.Cap {
		bd.Total = e.cfg.Thresholds.Cap
	}

	return bd
}

// Decide maps a total score to its enforcement tier.
func (e *Engine) Decide(total int) models.EnforcementDecision {
	t := e.cfg.Thresholds
	switch {
	case total >= t.Ban:
		return models.DecisionInstantBan
	case total >= t.Delete:
		return models.DecisionDeleteAndAlert
	case total >= t.Watchlist:
		return models.DecisionWatchlist
	default:
		return models.DecisionIgnore
	}
}

// Process evaluates one event and executes the resulting action. This is the
// per-message unit of work the gateway handler spawns.
func (e *Engine) Process(ctx context.Context, ev *models.MessageEvent) (models.EnforcementDecision, *models.ScoreBreakdown) {
	metrics.MessagesEvaluated.Inc()

	bd := e.Evaluate(ctx, ev)
	decision := models.DecisionIgnore
	if !bd.Bypassed {
		decision = e.Decide(bd.Total)
	}

	metrics.Decisions.WithLabelValues(decision.String()).Inc()

	if decision != models.DecisionIgnore {
		log.Printf("Security: %s for %s (%s) in guild %s, score %d: %v",
			decision, ev.AuthorUsername, ev.AuthorID, ev.GuildID, bd.Total, bd.Reasons)
	}

	e.dispatcher.Dispatch(ctx, ev, decision, bd)
	return decision, bd
}
