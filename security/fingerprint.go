package security

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"unicode"
)

// decorativeRunes are punctuation characters scammers pad into text to dodge
// naive duplicate detection. They carry no content and are stripped before
// fingerprinting.
const decorativeRunes = "*_~`|>#-=+^\"'.,!?(){}[]"

// Fingerprint derives the duplicate-detection key for a message: an md5 of the
// normalized text plus an attachment-count bucket. Two messages with the same
// fingerprint are treated as the same content for cross-posting purposes.
// It never fails; an empty message with attachments still keys off the bucket.
func Fingerprint(content string, attachmentCount int) string {
	normalized := normalizeContent(content)
	sum := md5.Sum([]byte(normalized + "|att:" + attachmentBucket(attachmentCount)))
	return hex.EncodeToString(sum[:])
}

// normalizeContent case-folds, strips decorative punctuation and collapses
// whitespace runs, so that superficial obfuscation ("B U Y  wallet!!!" vs
// "buy wallet") converges on one key.
func normalizeContent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true // swallows leading whitespace
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		case strings.ContainsRune(decorativeRunes, r):
			// dropped
		default:
			b.WriteRune(r)
			lastSpace = false
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// attachmentBucket coarsens attachment counts so that re-uploads with one
// screenshot added or removed still collide.
func attachmentBucket(n int) string {
	switch {
	case n <= 0:
		return "0"
	case n == 1:
		return "1"
	case n <= 3:
		return "few"
	default:
		return "many"
	}
}

// Normalize is exported for callers that want the canonical text itself, e.g.
// to show why two messages collided.
func Normalize(s string) string {
	return normalizeContent(s)
}
