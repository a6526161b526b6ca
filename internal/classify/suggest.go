package classify

import (
	"regexp"
	"strings"
)

var (
	urlRe      = regexp.MustCompile(`https?://\S+`)
	domainRe   = regexp.MustCompile(`\.com|\.ro|\.md`)
	locationRe = regexp.MustCompile(`\b(bucuresti|cluj|iasi|timisoara|brasov|constanta|romania|spain|madrid|barcelona)\b`)
	digitRe    = regexp.MustCompile(`[0-9]`)
	symbolRe   = regexp.MustCompile(`[^a-z\s]`)
	spacesRe   = regexp.MustCompile(`\s+`)
)

// SuggestKeyword extracts a reusable keyword candidate from a transaction
// description, for the user to confirm and save as an override:
//
//	"COFIDIS SPAIN"         -> "cofidis"
//	"MEGA IMAGE BUCURESTI"  -> "mega image"
//	"Netflix.com"           -> "netflix"
//
// URLs, known domains, location tokens, digits and symbols are stripped; the
// first one or two remaining words of at least 3 characters form the
// suggestion. This is a heuristic; a wrong suggestion costs nothing because
// the user confirms before saving.
func SuggestKeyword(description string) string {
	s := strings.ToLower(strings.TrimSpace(description))
	if s == "" {
		return ""
	}

	s = urlRe.ReplaceAllString(s, "")
	s = domainRe.ReplaceAllString(s, "")
	s = locationRe.ReplaceAllString(s, "")
	s = digitRe.ReplaceAllString(s, "")
	s = symbolRe.ReplaceAllString(s, " ")
	s = spacesRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	var words []string
	for _, w := range strings.Split(s, " ") {
		if len(w) > 2 {
			words = append(words, w)
		}
		if len(words) == 2 {
			break
		}
	}
	return strings.Join(words, " ")
}
