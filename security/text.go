package security

import (
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"sentinel-bot/models"
)

// Caps spam only counts on messages long enough for the ratio to mean
// anything.
const capsMinLength = 20
const capsRatioThreshold = 0.7

// commonShortWords are single words that look like gibberish to the
// character-diversity checks but are normal chat.
var commonShortWords = map[string]bool{
	"hello": true, "hi": true, "thanks": true, "thank": true, "please": true,
	"welcome": true, "yes": true, "no": true, "okay": true, "ok": true,
	"sure": true, "nice": true, "good": true, "great": true, "awesome": true,
	"cool": true, "wow": true, "lol": true, "lmao": true, "rofl": true,
	"omg": true, "wtf": true, "brb": true, "afk": true, "gg": true, "gn": true,
}

type keywordPattern struct {
	re     *regexp.Regexp
	source string
	points int
}

// textScorer evaluates message text: caps spam, weighted scam keywords and
// gibberish. Patterns are compiled once at construction.
type textScorer struct {
	patterns []keywordPattern
	weights  models.Weights
}

func newTextScorer(cfg *models.SecurityConfig) *textScorer {
	ts := &textScorer{weights: cfg.Weights}

	// Sort for deterministic reason ordering across runs.
	sources := make([]string, 0, len(cfg.KeywordPatterns))
	for src := range cfg.KeywordPatterns {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	for _, src := range sources {
		re, err := regexp.Compile("(?i)" + src)
		if err != nil {
			log.Printf("Skipping invalid keyword pattern %q: %v", src, err)
			continue
		}
		ts.patterns = append(ts.patterns, keywordPattern{re: re, source: src, points: cfg.KeywordPatterns[src]})
	}
	return ts
}

// Score returns the text contribution and reasons. hasRoles reports whether
// the author holds at least one assignable role; it suppresses the gibberish
// checks only, caps and keyword signals always apply.
func (ts *textScorer) Score(content string, hasRoles bool) (int, []string) {
	score := 0
	var reasons []string

	trimmed := strings.TrimSpace(content)

	if ratio, ok := capsRatio(trimmed); ok && ratio > capsRatioThreshold {
		score += ts.weights.CapsSpam
		reasons = append(reasons, fmt.Sprintf("Caps spam (%.0f%%)", ratio*100))
	}

	keywordScore := 0
	for _, p := range ts.patterns {
		if p.re.MatchString(trimmed) {
			keywordScore += p.points
			reasons = append(reasons, "Keyword: "+p.source)
		}
	}
	if keywordScore > ts.weights.KeywordCap {
		keywordScore = ts.weights.KeywordCap
	}
	score += keywordScore

	// Gibberish is a throwaway-account signal. Members with any assignable
	// role get to shout "AAAA", and image-only posts have no text to judge.
	if !hasRoles && trimmed != "" {
		if isGibberish(trimmed) {
			score += ts.weights.Gibberish
			reasons = append(reasons, "Gibberish text")
		}
	}

	return score, reasons
}

// capsRatio reports the upper-case share of alphabetic characters. ok is false
// when the text is too short or has no letters.
func capsRatio(s string) (float64, bool) {
	if len(s) <= capsMinLength {
		return 0, false
	}
	letters, upper := 0, 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters == 0 {
		return 0, false
	}
	return float64(upper) / float64(letters), true
}

// isGibberish flags single-token random letter strings like "tdnfaagoie":
// either almost no vowel/consonant alternation or very low unique-character
// diversity for the length. Multi-word text is never flagged here.
func isGibberish(s string) bool {
	if strings.ContainsRune(s, ' ') {
		return false
	}
	lower := strings.ToLower(s)
	for _, r := range lower {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	n := len(lower)
	if n < 3 || n > 40 {
		return false
	}
	if commonShortWords[lower] {
		return false
	}

	unique := make(map[rune]bool)
	alternations := 0
	prevVowel := isVowel(rune(lower[0]))
	for i, r := range lower {
		unique[r] = true
		if i > 0 {
			v := isVowel(r)
			if v != prevVowel {
				alternations++
			}
			prevVowel = v
		}
	}

	// Pure repeated-letter spam ("AAAA", "aaaaaaa") at any flagged length.
	if len(unique) <= 2 {
		return true
	}
	// The ratio checks need enough letters to be meaningful.
	if n < 5 {
		return false
	}

	diversity := float64(len(unique)) / float64(n)
	alternationRatio := float64(alternations) / float64(n-1)

	// 0.35 catches keyboard mashing ("tdnfaagoie" scores 0.33) while real
	// words sit well above it. The odd consonant-heavy English word that
	// trips this contributes too little to cross a threshold alone.
	return alternationRatio < 0.35 || diversity < 0.3
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
