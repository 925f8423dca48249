package sections

import (
	"strings"
	"testing"
)

func TestParseBasic(t *testing.T) {
	body := "Borrador generado automáticamente.\n## Resumen\nPaciente de 40 años.\n## Plan\nReposo\nHidratación"

	got := Parse(body)

	if got.Disclaimer != "Borrador generado automáticamente." {
		t.Errorf("Disclaimer = %q", got.Disclaimer)
	}
	if len(got.Sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(got.Sections))
	}
	if got.Sections[0].Title != "Resumen" || got.Sections[0].Content != "Paciente de 40 años." {
		t.Errorf("section 0 = %+v", got.Sections[0])
	}
	if got.Sections[1].Title != "Plan" || got.Sections[1].Content != "Reposo\nHidratación" {
		t.Errorf("section 1 = %+v", got.Sections[1])
	}
}

func TestParseNoHeadings(t *testing.T) {
	got := Parse("Solo texto libre\nsin encabezados")
	if got.Disclaimer != "Solo texto libre\nsin encabezados" {
		t.Errorf("Disclaimer = %q", got.Disclaimer)
	}
	if len(got.Sections) != 0 {
		t.Errorf("got %d sections, want 0", len(got.Sections))
	}
}

func TestParseHeadingNotAtColumnZero(t *testing.T) {
	got := Parse("  ## No es encabezado\ntexto")
	if len(got.Sections) != 0 {
		t.Errorf("indented heading should not open a section, got %d", len(got.Sections))
	}
}

// Round trip: N headings, no heading-like content, reconstruction matches.
func TestParseRoundTrip(t *testing.T) {
	body := "## Resumen\nTexto uno\n## Exploración\nTexto dos\n## Plan\nTexto tres"

	got := Parse(body)
	if got.Disclaimer != "" {
		t.Errorf("Disclaimer = %q, want empty", got.Disclaimer)
	}
	if len(got.Sections) != 3 {
		t.Fatalf("got %d sections, want 3", len(got.Sections))
	}

	var rebuilt []string
	for _, s := range got.Sections {
		rebuilt = append(rebuilt, "## "+s.Title+"\n"+s.Content)
	}
	if joined := strings.Join(rebuilt, "\n"); joined != body {
		t.Errorf("round trip mismatch:\n%q\nwant\n%q", joined, body)
	}
}

func TestParseHypothesisSection(t *testing.T) {
	body := "## Resumen\nTexto\n## Hipótesis\n1. **Gripe** - probable\n2. Otra causa"

	got := Parse(body)
	if len(got.Sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(got.Sections))
	}

	hyps := got.Sections[1].Hypotheses
	if len(hyps) != 2 {
		t.Fatalf("got %d hypotheses, want 2", len(hyps))
	}
	if hyps[0].Label != "Gripe" {
		t.Errorf("label 0 = %q, want Gripe", hyps[0].Label)
	}
	if hyps[0].Text != "**Gripe** - probable" {
		t.Errorf("text 0 = %q", hyps[0].Text)
	}
	if hyps[1].Label != "Otra causa" {
		t.Errorf("label 1 = %q, want Otra causa", hyps[1].Label)
	}
}

func TestParseHypothesisSubNotes(t *testing.T) {
	body := "## Diagnóstico diferencial\n1. **Migraña**\nCon aura visual\n2. **Cefalea tensional**"

	got := Parse(body)
	hyps := got.Sections[0].Hypotheses
	if len(hyps) != 2 {
		t.Fatalf("got %d hypotheses, want 2", len(hyps))
	}
	if len(hyps[0].Notes) != 1 || hyps[0].Notes[0] != "Con aura visual" {
		t.Errorf("notes 0 = %v", hyps[0].Notes)
	}
	if len(hyps[1].Notes) != 0 {
		t.Errorf("notes 1 = %v, want none", hyps[1].Notes)
	}
}

func TestParseStudiesCopyPayload(t *testing.T) {
	body := "## Estudios sugeridos\nHemograma\nPerfil hepático\n---\nComentario no copiable"

	got := Parse(body)
	if got.Sections[0].CopyPayload != "Hemograma\nPerfil hepático" {
		t.Errorf("CopyPayload = %q", got.Sections[0].CopyPayload)
	}
}

func TestParseStudiesCopyPayloadNoSeparator(t *testing.T) {
	body := "## Exámenes\nHemograma\nPerfil hepático"

	got := Parse(body)
	if got.Sections[0].CopyPayload != "Hemograma\nPerfil hepático" {
		t.Errorf("CopyPayload = %q", got.Sections[0].CopyPayload)
	}
}

func TestParseSuppressesLeakedPayloadSection(t *testing.T) {
	body := "## Plan\nReposo\n## Alertas\n{\"type\":\"X\",\"severity\":\"High\",\"title\":\"T\"}"

	got := Parse(body)
	if len(got.Sections) != 1 {
		t.Fatalf("got %d sections, want 1 (payload section suppressed)", len(got.Sections))
	}
	if got.Sections[0].Title != "Plan" {
		t.Errorf("surviving section = %q", got.Sections[0].Title)
	}
}

func TestLooksLikeAlertPayload(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"prose", "Reposo e hidratación.", false},
		{"json object", `{"type":"X"}`, true},
		{"json array", `[{"type":"X"}]`, true},
		{"sentinel fragment", "texto &&&ALERTS_JSON_START&&& texto", true},
		{"field signatures", `contiene "severity" y "recommendation" citadas`, true},
		{"single signature", `solo "severity" aparece`, false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := looksLikeAlertPayload(tt.content); got != tt.want {
				t.Errorf("looksLikeAlertPayload(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestStripBold(t *testing.T) {
	if got := StripBold("1. **Gripe** - probable"); got != "1. Gripe - probable" {
		t.Errorf("StripBold = %q", got)
	}
	if got := StripBold("sin negrita"); got != "sin negrita" {
		t.Errorf("StripBold = %q", got)
	}
}
