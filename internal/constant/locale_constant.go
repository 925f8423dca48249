package constant

import "fmt"

// LocaleBundle binds every user-visible string the scribe pipeline emits to a
// single locale. The three suggestion categories are fixed per locale: the
// suggestion model is prompted with them and the deduplicator only accepts
// lines whose prefix matches one of them.
type LocaleBundle struct {
	Code string

	// Suggestion categories, already in priority order for presentation
	// (most urgent first).
	SuggestionCategories []string

	// Error fragment appended to the displayed note when the primary
	// generation stream fails. %s is the classified upstream message.
	GenerationErrorFormat string

	// Generic banner for suggestion sub-failures. Suggestions are
	// best-effort: this never interrupts note generation.
	SuggestionsUnavailableMessage string

	StoppedByUserMessage string
}

var localeBundles = map[string]LocaleBundle{
	"es": {
		Code:                          "es",
		SuggestionCategories:          []string{"Señales de alarma", "Síntomas", "Antecedentes"},
		GenerationErrorFormat:         "\n\n⚠️ Error de generación: %s",
		SuggestionsUnavailableMessage: "Las preguntas sugeridas no están disponibles en este momento.",
		StoppedByUserMessage:          "\n\n[Generación detenida por el usuario]",
	},
	"en": {
		Code:                          "en",
		SuggestionCategories:          []string{"Red flags", "Symptoms", "History"},
		GenerationErrorFormat:         "\n\n⚠️ Generation error: %s",
		SuggestionsUnavailableMessage: "Suggested questions are not available right now.",
		StoppedByUserMessage:          "\n\n[Generation stopped by user]",
	},
}

// LocaleFor returns the bundle for the given code, falling back to Spanish,
// the primary deployment locale.
func LocaleFor(code string) LocaleBundle {
	if b, ok := localeBundles[code]; ok {
		return b
	}
	return localeBundles["es"]
}

// FormatGenerationError renders the localized inline error fragment.
func (b LocaleBundle) FormatGenerationError(classified string) string {
	return fmt.Sprintf(b.GenerationErrorFormat, classified)
}
