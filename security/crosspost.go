package security

import (
	"fmt"

	"sentinel-bot/models"
)

// crossPostDetector records each message's fingerprint in the recency window
// and fires when the same author has now posted it in two or more distinct
// channels. This is the single strongest signal: legitimate content is
// essentially never reposted verbatim across channels within minutes.
type crossPostDetector struct {
	windows *WindowStore
	weights models.Weights
}

func newCrossPostDetector(cfg *models.SecurityConfig, windows *WindowStore) *crossPostDetector {
	return &crossPostDetector{windows: windows, weights: cfg.Weights}
}

// Score records the event and returns the cross-post contribution. The first
// post of any content never fires; detection triggers on the message that
// completes the two-channel pattern.
func (d *crossPostDetector) Score(ev *models.MessageEvent, fingerprint string) (int, []string) {
	d.windows.Record(ev.AuthorID, ev.ChannelID, fingerprint, ev.Timestamp)

	channels := d.windows.ChannelsSeen(ev.AuthorID, fingerprint, ev.Timestamp)
	if len(channels) < 2 {
		return 0, nil
	}
	return d.weights.CrossPost, []string{
		fmt.Sprintf("Cross-posted in %d channels", len(channels)),
	}
}
