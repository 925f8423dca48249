package suggest

import (
	"regexp"
	"strings"

	"ai-scribe-be/pkg/scribe/textnorm"
)

// Question is a suggested follow-up question for the ongoing consultation.
// Session-scoped: questions are never persisted.
type Question struct {
	Text     string `json:"text"`
	Category string `json:"category"`
	Asked    bool   `json:"asked"`
}

// suggestionLineRe is the wire contract with the suggestion model:
// "Category: question" per line.
var suggestionLineRe = regexp.MustCompile(`^([^:]+):\s*(.+)$`)

// Dedupe filters candidate lines against the already-accepted questions.
//
// Lines that do not match the contract or whose category is not one of the
// valid localized categories are silently dropped: suggestions are a
// best-effort feature and a garbled line is not an error. Accepted candidates
// keep first-seen order; the key set is seeded with the existing questions'
// normalized keys and grows as candidates are accepted, so duplicates inside
// the same batch are caught too. The merge is commutative across batches: no
// two accepted questions ever share a normalized key, whatever the arrival
// order.
func Dedupe(existing []Question, candidateLines []string, validCategories []string) []Question {
	seen := make(map[string]struct{}, len(existing)+len(candidateLines))
	for _, q := range existing {
		seen[textnorm.Normalize(q.Text)] = struct{}{}
	}

	var accepted []Question
	for _, line := range candidateLines {
		m := suggestionLineRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}

		category, ok := matchCategory(strings.TrimSpace(m[1]), validCategories)
		if !ok {
			continue
		}

		text := strings.TrimSpace(m[2])
		key := textnorm.Normalize(text)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}
		accepted = append(accepted, Question{Text: text, Category: category})
	}

	return accepted
}

// matchCategory resolves a raw prefix to its canonical localized category,
// case-insensitively.
func matchCategory(prefix string, validCategories []string) (string, bool) {
	for _, c := range validCategories {
		if strings.EqualFold(prefix, c) {
			return c, true
		}
	}
	return "", false
}

// Group arranges unanswered questions by the fixed category priority order
// and caps the total at maxVisible. Read-only presentation step: the
// underlying set is untouched.
func Group(questions []Question, priorityOrder []string, maxVisible int) []Question {
	grouped := make([]Question, 0, len(questions))
	for _, category := range priorityOrder {
		for _, q := range questions {
			if q.Asked || q.Category != category {
				continue
			}
			grouped = append(grouped, q)
			if len(grouped) == maxVisible {
				return grouped
			}
		}
	}
	return grouped
}
