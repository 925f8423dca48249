package constant

// Sentinel markers bounding the embedded alerts payload inside the generated
// note stream. Exact and case-sensitive: the model is instructed to emit them
// verbatim and the extractor matches them verbatim.
const (
	AlertsPayloadStartMarker = "&&&ALERTS_JSON_START&&&"
	AlertsPayloadEndMarker   = "&&&ALERTS_JSON_END&&&"
)

// Section markup recognized by the section parser. Intentionally tiny: a
// two-level heading prefix, a numbered-list prefix and a bold pair. This is
// NOT a markdown parser and must not grow into one.
const (
	SectionHeadingPrefix = "## "
	BoldMarker           = "**"

	// Studies/exams sections expose a copy payload truncated at this
	// separator line when present.
	StudiesCopySeparator = "---"
)

// Placeholders used by the alert normalizer when a raw record is missing a
// required field. Records are never dropped for missing fields.
const (
	AlertTypeFallback           = "Alerta clínica"
	AlertTitleFallback          = "Alerta sin título"
	AlertDetailsFallback        = "-"
	AlertRecommendationFallback = "-"
)

// SessionState values for a scribe generation session.
const (
	SessionStateIdle       = "IDLE"
	SessionStateStreaming  = "STREAMING"
	SessionStateFinalizing = "FINALIZING"
	SessionStateCompleted  = "COMPLETED"
	SessionStateFailed     = "FAILED"
)

// WebSocket event types pushed to the clinician's live view.
const (
	EventNoteChunk              = "note_chunk"
	EventNoteCompleted          = "note_completed"
	EventNoteError              = "note_error"
	EventSuggestionsUpdated     = "suggestions_updated"
	EventSuggestionsUnavailable = "suggestions_unavailable"
)
