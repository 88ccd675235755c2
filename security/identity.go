package security

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"sentinel-bot/models"
)

// currencySymbols in a display name are a wallet-scammer tell.
const currencySymbols = "£€¥₿$₹₽"

// hoistingChars sort a name to the top of the member list.
const hoistingChars = "!=#@._-~"

// autoGeneratedName matches throwaway names like "john.smith1234_56789".
var autoGeneratedName = regexp.MustCompile(`[a-z]+\.[a-z]+\d{2,4}_\d{4,}`)

// identityScorer evaluates who is posting rather than what: username shape,
// avatar presence and role standing. Account age is deliberately not a signal;
// hijacked veteran accounts post the same scams as day-old ones.
type identityScorer struct {
	exploitableRoleID string
	weights           models.Weights
}

func newIdentityScorer(cfg *models.SecurityConfig) *identityScorer {
	return &identityScorer{
		exploitableRoleID: cfg.ExploitableRoleID,
		weights:           cfg.Weights,
	}
}

// Score returns the identity contribution for a username, avatar flag and
// role ID list (assignable roles only, @everyone excluded; nil when the
// sender is a webhook and role checks are skipped).
func (is *identityScorer) Score(username string, hasAvatar bool, roles []string, isMember bool) (int, []string) {
	score := 0
	var reasons []string

	if strings.ContainsAny(username, currencySymbols) {
		score += is.weights.CurrencySymbol
		reasons = append(reasons, "Currency symbols in username")
	}

	if first, _ := utf8.DecodeRuneInString(username); first != utf8.RuneError && strings.ContainsRune(hoistingChars, first) {
		score += is.weights.HoistingChar
		reasons = append(reasons, "Hoisting character in username")
	}

	if autoGeneratedName.MatchString(strings.ToLower(username)) {
		score += is.weights.UsernamePattern
		reasons = append(reasons, "Auto-generated username pattern")
	}

	// Role standing only applies to real guild members.
	if isMember {
		switch {
		case len(roles) == 1 && is.exploitableRoleID != "" && roles[0] == is.exploitableRoleID:
			// The one self-assignable role scammers grab to look rostered.
			score += is.weights.ExploitableRoleOnly
			reasons = append(reasons, "Only holds the self-assignable role")
		case len(roles) == 0:
			score += is.weights.NoRoles
			reasons = append(reasons, "No roles")
		}
	}

	// Weak on its own; never enough to cross a threshold by itself.
	if !hasAvatar {
		score += is.weights.NoAvatar
		reasons = append(reasons, "No profile picture")
	}

	return score, reasons
}
