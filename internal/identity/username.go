package identity

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FallbackUsername is used when no text yields a usable username.
const FallbackUsername = "user"

// maxSuffixDigits bounds the random suffix appended to colliding usernames.
const maxSuffixDigits = 6

var (
	usernameDisallowed = regexp.MustCompile(`[^\w\s@+.-]`)
	usernameWhitespace = regexp.MustCompile(`\s+`)
)

// Rand is the random source used for username suffixes.
type Rand interface {
	IntN(n int) int
}

type defaultRand struct{}

func (defaultRand) IntN(n int) int { return rand.Intn(n) }

// CleanEmail trims and lower-cases an email address.
func CleanEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UsernameBase derives a username base from the first text that yields a
// non-empty result. Characters are decomposed, reduced to ASCII and limited
// to word characters, whitespace and "@+.-"; everything from "@" on is cut
// and whitespace runs become "_".
func UsernameBase(txts ...string) string {
	for _, txt := range txts {
		if base := usernameFromText(txt); base != "" {
			return base
		}
	}
	return FallbackUsername
}

func usernameFromText(txt string) string {
	ascii, _, errTransform := transform.String(
		transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII }))),
		txt,
	)
	if errTransform != nil {
		return ""
	}
	cleaned := strings.ToLower(usernameDisallowed.ReplaceAllString(ascii, ""))
	cleaned, _, _ = strings.Cut(cleaned, "@")
	cleaned = strings.TrimSpace(cleaned)
	return usernameWhitespace.ReplaceAllString(cleaned, "_")
}

// UsernameCandidates returns base followed by base with random numeric
// suffixes of one to six digits. Each candidate is truncated so it fits maxLen
// with its suffix intact.
func UsernameCandidates(base string, maxLen int, rnd Rand) []string {
	if rnd == nil {
		rnd = defaultRand{}
	}
	candidates := make([]string, 0, maxSuffixDigits+1)
	candidates = append(candidates, truncate(base, maxLen))
	limit := 1
	for digits := 1; digits <= maxSuffixDigits; digits++ {
		limit *= 10
		suffix := fmt.Sprintf("%0*d", digits, rnd.IntN(limit))
		candidates = append(candidates, truncate(base, maxLen-len(suffix))+suffix)
	}
	return candidates
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) > n {
		return s[:n]
	}
	return s
}
