package sections

import (
	"regexp"
	"strings"

	"ai-scribe-be/internal/constant"
	"ai-scribe-be/pkg/scribe/textnorm"
)

// Parsed is the renderable structure of a note body.
type Parsed struct {
	// Disclaimer collects the lines before the first heading. A body with
	// no heading at all is entirely disclaimer.
	Disclaimer string
	Sections   []Section
}

// Section is one "## " titled block of the note.
type Section struct {
	Title   string
	Content string

	// Hypotheses is populated only for diagnosis/hypothesis sections.
	Hypotheses []Hypothesis

	// CopyPayload is populated only for studies/exams sections: the
	// content truncated at the first separator line, for the copy
	// affordance. Never stored.
	CopyPayload string
}

// Hypothesis is one numbered entry of a diagnosis section.
type Hypothesis struct {
	// Label is the short bold-stripped label shown in the summary chips.
	Label string
	// Text is the full captured remainder of the numbered line.
	Text string
	// Notes are the non-numbered lines following this entry.
	Notes []string
}

var (
	numberedLineRe = regexp.MustCompile(`^\d+\.\s*(.*)$`)
	boldSpanRe     = regexp.MustCompile(`\*\*(.+?)\*\*`)
)

// Title keyword sets, compared against the normalized section title. Keys are
// already accent-stripped, so "Hipótesis" and "hipotesis" both match.
var (
	hypothesisKeywords = []string{"hipotesis", "diagnostico", "diagnosticos", "diagnosis", "hypothesis", "differential", "impresion"}
	studiesKeywords    = []string{"estudios", "examenes", "exams", "studies", "tests", "laboratorio", "workup"}
)

// Parse splits a note body into a leading disclaimer plus ordered titled
// sections. Lines starting with "## " at column 0 open a new section; content
// accumulates until the next heading or end of input.
func Parse(noteBody string) Parsed {
	var parsed Parsed

	lines := strings.Split(noteBody, "\n")
	currentTitle := ""
	var buffer []string
	seenHeading := false

	flush := func() {
		content := strings.TrimSpace(strings.Join(buffer, "\n"))
		buffer = buffer[:0]

		if !seenHeading {
			// First block wins as disclaimer.
			if parsed.Disclaimer == "" {
				parsed.Disclaimer = content
			}
			return
		}
		if looksLikeAlertPayload(content) {
			// Second line of defense: raw JSON that leaked inline
			// without sentinels is never rendered.
			return
		}
		parsed.Sections = append(parsed.Sections, buildSection(currentTitle, content))
	}

	for _, line := range lines {
		if strings.HasPrefix(line, constant.SectionHeadingPrefix) {
			flush()
			currentTitle = strings.TrimSpace(line[len(constant.SectionHeadingPrefix):])
			seenHeading = true
			continue
		}
		buffer = append(buffer, line)
	}
	flush()

	return parsed
}

func buildSection(title, content string) Section {
	section := Section{Title: title, Content: content}

	normTitle := textnorm.Normalize(title)
	if containsAnyKeyword(normTitle, hypothesisKeywords) {
		section.Hypotheses = parseHypotheses(content)
	}
	if containsAnyKeyword(normTitle, studiesKeywords) {
		section.CopyPayload = studiesCopyPayload(content)
	}

	return section
}

func containsAnyKeyword(normTitle string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(normTitle, kw) {
			return true
		}
	}
	return false
}

// parseHypotheses splits a diagnosis section on numbered-list lines. Lines
// that are not numbered entries attach to the previous entry as sub-notes;
// leading stray lines before the first entry are dropped.
func parseHypotheses(content string) []Hypothesis {
	var entries []Hypothesis

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := numberedLineRe.FindStringSubmatch(trimmed); m != nil {
			remainder := strings.TrimSpace(m[1])
			entries = append(entries, Hypothesis{
				Label: hypothesisLabel(remainder),
				Text:  remainder,
			})
			continue
		}

		if len(entries) > 0 {
			last := &entries[len(entries)-1]
			last.Notes = append(last.Notes, trimmed)
		}
	}

	return entries
}

// hypothesisLabel prefers the first bold span; a plain entry is its own label.
func hypothesisLabel(remainder string) string {
	if m := boldSpanRe.FindStringSubmatch(remainder); m != nil {
		return strings.TrimSpace(m[1])
	}
	return remainder
}

// studiesCopyPayload truncates the content at the first separator line, so
// the copy affordance grabs the order list without trailing commentary.
func studiesCopyPayload(content string) string {
	for i, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == constant.StudiesCopySeparator {
			lines := strings.Split(content, "\n")
			return strings.TrimSpace(strings.Join(lines[:i], "\n"))
		}
	}
	return content
}

// looksLikeAlertPayload sniffs whether section content is really a leaked
// alerts payload rather than prose. Heuristic and deliberately narrow: a
// whole-content JSON object, a stray sentinel fragment, or a pair of quoted
// alert field signatures. Best-effort only; the sentinel extractor remains
// the primary excision path.
func looksLikeAlertPayload(content string) bool {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return false
	}

	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		return true
	}
	if strings.HasPrefix(trimmed, "[{") && strings.HasSuffix(trimmed, "}]") {
		return true
	}
	if strings.Contains(trimmed, "ALERTS_JSON") {
		return true
	}

	signatures := 0
	for _, sig := range []string{`"severity"`, `"recommendation"`, `"details"`, `"severidad"`, `"recomendacion"`} {
		if strings.Contains(trimmed, sig) {
			signatures++
		}
	}
	return signatures >= 2
}

// StripBold removes bold markers for plain-text export paths. The content is
// kept, only the markup goes.
func StripBold(text string) string {
	return strings.ReplaceAll(text, constant.BoldMarker, "")
}
