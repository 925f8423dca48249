package suggest

import (
	"testing"

	"ai-scribe-be/pkg/scribe/textnorm"
)

var categories = []string{"Señales de alarma", "Síntomas", "Antecedentes"}

func TestDedupeAcceptsValidLines(t *testing.T) {
	lines := []string{
		"Antecedentes: ¿Tiene alergias?",
		"Síntomas: ¿Desde cuándo presenta fiebre?",
	}

	got := Dedupe(nil, lines, categories)
	if len(got) != 2 {
		t.Fatalf("accepted %d, want 2", len(got))
	}
	if got[0].Category != "Antecedentes" || got[0].Text != "¿Tiene alergias?" {
		t.Errorf("question 0 = %+v", got[0])
	}
	if got[0].Asked {
		t.Error("new question should not be marked asked")
	}
}

func TestDedupeCategoryCaseInsensitive(t *testing.T) {
	got := Dedupe(nil, []string{"antecedentes: ¿Fuma?"}, categories)
	if len(got) != 1 {
		t.Fatalf("accepted %d, want 1", len(got))
	}
	// Tagged with the canonical category, not the raw prefix.
	if got[0].Category != "Antecedentes" {
		t.Errorf("Category = %q, want Antecedentes", got[0].Category)
	}
}

func TestDedupeDropsInvalidLines(t *testing.T) {
	lines := []string{
		"sin dos puntos",
		"Facturación: ¿Tiene seguro?", // unknown category
		"",
		": pregunta sin categoría",
	}

	if got := Dedupe(nil, lines, categories); len(got) != 0 {
		t.Errorf("accepted %d invalid lines", len(got))
	}
}

func TestDedupeAgainstExisting(t *testing.T) {
	existing := []Question{{Text: "¿Tiene alergias?", Category: "Antecedentes"}}

	got := Dedupe(existing, []string{"antecedentes: ¿tiene  alergias?!"}, categories)
	if len(got) != 0 {
		t.Errorf("near-duplicate accepted: %+v", got)
	}
}

func TestDedupeWithinBatch(t *testing.T) {
	lines := []string{
		"Síntomas: ¿Tiene fiebre?",
		"Síntomas: ¿TIENE FIEBRE?",
		"Síntomas: ¿Tiene tos?",
	}

	got := Dedupe(nil, lines, categories)
	if len(got) != 2 {
		t.Fatalf("accepted %d, want 2", len(got))
	}
	if got[0].Text != "¿Tiene fiebre?" || got[1].Text != "¿Tiene tos?" {
		t.Errorf("order not preserved: %+v", got)
	}
}

// Dedup invariant: whatever the batch order or duplication, the final set
// never holds two questions with the same normalized key.
func TestDedupeCommutativeMerge(t *testing.T) {
	batchA := []string{"Síntomas: ¿Tiene fiebre?", "Antecedentes: ¿Fuma usted?"}
	batchB := []string{"Antecedentes: ¿FUMA usted!?", "Síntomas: ¿Tiene tos?"}

	merge := func(batches ...[]string) []Question {
		var acc []Question
		for _, b := range batches {
			acc = append(acc, Dedupe(acc, b, categories)...)
		}
		return acc
	}

	ab := merge(batchA, batchB)
	ba := merge(batchB, batchA)

	for _, set := range [][]Question{ab, ba} {
		keys := make(map[string]bool)
		for _, q := range set {
			k := textnorm.Normalize(q.Text)
			if keys[k] {
				t.Errorf("duplicate key %q in %+v", k, set)
			}
			keys[k] = true
		}
		if len(set) != 3 {
			t.Errorf("merged set has %d entries, want 3", len(set))
		}
	}
}

func TestGroup(t *testing.T) {
	questions := []Question{
		{Text: "q1", Category: "Antecedentes"},
		{Text: "q2", Category: "Señales de alarma"},
		{Text: "q3", Category: "Síntomas", Asked: true},
		{Text: "q4", Category: "Síntomas"},
	}

	got := Group(questions, categories, 10)
	if len(got) != 3 {
		t.Fatalf("got %d, want 3 (asked questions hidden)", len(got))
	}
	// Priority order: alarm first, then symptoms, then history.
	if got[0].Text != "q2" || got[1].Text != "q4" || got[2].Text != "q1" {
		t.Errorf("priority order wrong: %+v", got)
	}
}

func TestGroupCap(t *testing.T) {
	questions := []Question{
		{Text: "q1", Category: "Síntomas"},
		{Text: "q2", Category: "Síntomas"},
		{Text: "q3", Category: "Antecedentes"},
	}

	if got := Group(questions, categories, 2); len(got) != 2 {
		t.Errorf("cap not applied, got %d", len(got))
	}
}
