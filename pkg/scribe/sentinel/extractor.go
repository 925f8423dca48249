package sentinel

import (
	"strings"

	"ai-scribe-be/internal/constant"
)

// Extraction is the result of splitting a completed stream into the
// human-visible note and the embedded alerts payload.
type Extraction struct {
	// Visible is the text shown to the clinician and stored in history.
	// When no well-formed payload exists it is the input, unchanged.
	Visible string

	// Payload is the trimmed text strictly between the sentinel markers.
	// Meaningful only when Found is true.
	Payload string

	// Found reports whether both markers were present in order.
	Found bool
}

// Extract locates the first start marker and the first end marker at or after
// it. A missing marker, or an end marker that only appears before the start
// marker, is treated as "no payload found": we never guess at malformed
// ordering, the full text stays visible and the alerts list stays empty.
//
// Extract is a pure single pass and idempotent: running it on its own Visible
// output is a no-op, since a well-formed extraction leaves no markers behind.
func Extract(fullText string) Extraction {
	start := strings.Index(fullText, constant.AlertsPayloadStartMarker)
	if start == -1 {
		return Extraction{Visible: fullText}
	}

	payloadFrom := start + len(constant.AlertsPayloadStartMarker)
	endOffset := strings.Index(fullText[payloadFrom:], constant.AlertsPayloadEndMarker)
	if endOffset == -1 {
		return Extraction{Visible: fullText}
	}

	return Extraction{
		Visible: strings.TrimSpace(fullText[:start]),
		Payload: strings.TrimSpace(fullText[payloadFrom : payloadFrom+endOffset]),
		Found:   true,
	}
}
