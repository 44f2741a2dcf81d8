// Package question derives statement, alternatives and the correct answer
// from blocks classified as exercises or questions.
package question

import (
	"regexp"
	"strings"
)

// Question is the extracted form of an exercise/question block. The
// alternatives map may be empty and CorrectAnswer may be blank: both are
// accepted outcomes, not errors.
type Question struct {
	Statement     string
	Alternatives  map[string]string
	CorrectAnswer string // "" when no explicit answer key was found
	Page          int
}

// minLetters is the stop condition for the template cascade: once a
// template captures at least this many distinct letters, later templates
// are not tried. This can miss more complete matches from lower-priority
// templates; the behavior is a deliberate product decision, do not change
// it without direction.
const minLetters = 2

// altTemplate matches the "letter + separator" head of an alternative.
// The payload is the text between one marker and the next, since RE2 has
// no lookahead. Fallback templates constrain payload length instead.
type altTemplate struct {
	marker     *regexp.Regexp
	minPayload int
	maxPayload int
}

var altTemplates = []altTemplate{
	// "A) texto" and "(A) texto"
	{marker: regexp.MustCompile(`\(?\b([A-Ea-e])\)\s*`)},
	// "A. texto" (start of text or preceded by whitespace)
	{marker: regexp.MustCompile(`(?:^|\s)([A-Ea-e])\.\s+`)},
	// "A: texto"
	{marker: regexp.MustCompile(`(?:^|\s)([A-Ea-e]):\s+`)},
	// Generic fallback: any separator, but only plausible payloads count.
	{marker: regexp.MustCompile(`(?:^|\s)([A-Ea-e])\s*[-–)\.:]\s*`), minPayload: 10, maxPayload: 200},
}

// answerExtractor is one phrasing of an explicit answer key. Inline
// phrasings mark a single alternative (the "(correta)" suffix) and do not
// open an answer-key zone.
type answerExtractor struct {
	pattern *regexp.Regexp
	// group is the submatch index holding the letter.
	group  int
	inline bool
}

var answerExtractors = []answerExtractor{
	{pattern: regexp.MustCompile(`(?i)gabarito\s*[:\-]?\s*([A-E])\b`), group: 1},
	// "resposta" needs an explicit separator or the word "letra" before the
	// letter: bare prose like "resposta a seguir" is not an answer key.
	{pattern: regexp.MustCompile(`(?i)resposta\s*(?:correta)?\s*(?:[:\-]\s*(?:letra\s*)?|letra\s+)([A-E])\b`), group: 1},
	{pattern: regexp.MustCompile(`(?i)alternativa\s+correta\s*[:\-]?\s*([A-E])\b`), group: 1},
	// Case folding stays scoped to "correta": under a global (?i) the
	// negated bridge class would also exclude a-e and never span real
	// Portuguese payloads. The paren-free bridge keeps the match on the
	// nearest preceding alternative marker.
	{pattern: regexp.MustCompile(`([A-Ea-e])\)[^()]{0,200}?\(\s*(?i:correta)\s*\)`), group: 1, inline: true},
}

// Extract parses a question block. It never fails: missing pieces come
// back empty.
func Extract(text string) Question {
	q := Question{Alternatives: map[string]string{}}

	// Alternatives become garbage past the answer-key zone, so payloads
	// are cut at the first answer phrase.
	cut := answerZoneStart(text)

	firstMarker := -1
	for _, tmpl := range altTemplates {
		found, first := applyTemplate(tmpl, text, cut)
		for letter, payload := range found {
			if _, ok := q.Alternatives[letter]; !ok {
				q.Alternatives[letter] = payload
			}
		}
		if firstMarker == -1 || (first >= 0 && first < firstMarker) {
			firstMarker = first
		}
		if len(q.Alternatives) >= minLetters {
			break
		}
	}

	q.CorrectAnswer = extractAnswer(text)

	if firstMarker >= 0 {
		q.Statement = strings.TrimSpace(text[:firstMarker])
	} else {
		q.Statement = strings.TrimSpace(text)
	}
	return q
}

// applyTemplate collects letter→payload pairs for one template. The first
// value wins per letter. Returns the byte offset of the first marker, or
// -1 when nothing matched.
func applyTemplate(tmpl altTemplate, text string, cut int) (map[string]string, int) {
	locs := tmpl.marker.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil, -1
	}

	found := make(map[string]string)
	first := -1
	for i, loc := range locs {
		start, end := loc[0], loc[1]
		if cut >= 0 && start >= cut {
			break
		}
		letter := strings.ToUpper(text[loc[2]:loc[3]])

		payloadEnd := len(text)
		if i+1 < len(locs) {
			payloadEnd = locs[i+1][0]
		}
		if cut >= 0 && cut < payloadEnd {
			payloadEnd = cut
		}
		payload := strings.TrimSpace(text[end:payloadEnd])
		if payload == "" {
			continue
		}
		if tmpl.minPayload > 0 && len(payload) < tmpl.minPayload {
			continue
		}
		if tmpl.maxPayload > 0 && len(payload) > tmpl.maxPayload {
			continue
		}
		if _, ok := found[letter]; !ok {
			found[letter] = payload
		}
		if first == -1 {
			first = start
		}
	}
	return found, first
}

// extractAnswer tries the ordered answer-key phrasings; first match wins.
// No match means no answer: it is never inferred.
func extractAnswer(text string) string {
	for _, ex := range answerExtractors {
		m := ex.pattern.FindStringSubmatch(text)
		if m != nil && len(m) > ex.group {
			return strings.ToUpper(m[ex.group])
		}
	}
	return ""
}

// answerZoneStart returns the byte offset where the answer-key zone
// begins, or -1 when the text has none. Inline phrasings do not count:
// they live inside an alternative's own payload.
func answerZoneStart(text string) int {
	start := -1
	for _, ex := range answerExtractors {
		if ex.inline {
			continue
		}
		loc := ex.pattern.FindStringIndex(text)
		if loc != nil && (start == -1 || loc[0] < start) {
			start = loc[0]
		}
	}
	return start
}
