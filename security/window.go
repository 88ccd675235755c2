package security

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// WindowStore tracks, per author, which channels each message fingerprint was
// recently seen in. Entries older than the window are evicted lazily on
// access; idle authors are dropped by the LRU's TTL, so memory is bounded by
// active authors times distinct recent fingerprints, not by message volume.
//
// The store is safe for concurrent use. Each author has its own lock, so
// evaluations of unrelated authors never contend.
type WindowStore struct {
	// mu only guards author lookup/creation; per-entry expiry and mutation
	// happen under the author's own lock.
	mu      sync.Mutex
	authors *expirable.LRU[string, *authorWindow]
	window  time.Duration
}

type authorWindow struct {
	mu sync.Mutex
	// fingerprint -> channel ID -> last seen
	entries map[string]map[string]time.Time
}

// NewWindowStore creates a store that remembers fingerprints for the given
// window and tracks at most maxAuthors concurrently active authors.
func NewWindowStore(maxAuthors int, window time.Duration) *WindowStore {
	// Idle authors stick around a little past the window so a borderline
	// repost still sees its prior entry; the lazy per-entry expiry is what
	// enforces the window itself.
	return &WindowStore{
		authors: expirable.NewLRU[string, *authorWindow](maxAuthors, nil, 2*window),
		window:  window,
	}
}

// getOrCreate returns the author's window, creating it on first message.
// The re-Add on existing windows resets the author's LRU TTL.
func (ws *WindowStore) getOrCreate(authorID string) *authorWindow {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	w, ok := ws.authors.Get(authorID)
	if !ok {
		w = &authorWindow{entries: make(map[string]map[string]time.Time)}
	}
	ws.authors.Add(authorID, w)
	return w
}

// Record appends or refreshes the (fingerprint, channel) entry for an author.
func (ws *WindowStore) Record(authorID, channelID, fingerprint string, now time.Time) {
	w := ws.getOrCreate(authorID)

	w.mu.Lock()
	w.expireLocked(now.Add(-ws.window))
	chans, ok := w.entries[fingerprint]
	if !ok {
		chans = make(map[string]time.Time)
		w.entries[fingerprint] = chans
	}
	chans[channelID] = now
	w.mu.Unlock()
}

// ChannelsSeen returns the distinct channels in which the author posted the
// given fingerprint within the window, expiring stale entries as a side
// effect.
func (ws *WindowStore) ChannelsSeen(authorID, fingerprint string, now time.Time) []string {
	ws.mu.Lock()
	w, ok := ws.authors.Get(authorID)
	ws.mu.Unlock()
	if !ok {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.expireLocked(now.Add(-ws.window))

	chans := w.entries[fingerprint]
	if len(chans) == 0 {
		return nil
	}
	out := make([]string, 0, len(chans))
	for ch := range chans {
		out = append(out, ch)
	}
	return out
}

// Sweep expires stale entries for every tracked author and drops authors left
// empty. Called periodically by the scheduler; correctness does not depend on
// it, it only reclaims memory sooner than the LRU TTL would.
func (ws *WindowStore) Sweep(now time.Time) {
	cutoff := now.Add(-ws.window)
	for _, authorID := range ws.authors.Keys() {
		// Hold the lookup lock per author so a concurrent Record cannot
		// slip fresh entries in between the emptiness check and removal.
		ws.mu.Lock()
		w, ok := ws.authors.Peek(authorID)
		if !ok {
			ws.mu.Unlock()
			continue
		}
		w.mu.Lock()
		w.expireLocked(cutoff)
		empty := len(w.entries) == 0
		w.mu.Unlock()
		if empty {
			ws.authors.Remove(authorID)
		}
		ws.mu.Unlock()
	}
}

// TrackedAuthors reports how many authors currently have a window.
func (ws *WindowStore) TrackedAuthors() int {
	return ws.authors.Len()
}

// expireLocked removes entries last seen before cutoff. Caller holds w.mu.
func (w *authorWindow) expireLocked(cutoff time.Time) {
	for fp, chans := range w.entries {
		for ch, seen := range chans {
			if seen.Before(cutoff) {
				delete(chans, ch)
			}
		}
		if len(chans) == 0 {
			delete(w.entries, fp)
		}
	}
}
