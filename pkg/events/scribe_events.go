package events

import "time"

// EventTypeNoteCompleted is consumed by the organizational audit/report
// dashboard. The payload is deliberately de-identified: counts and severity
// distribution only, never note text, transcript or context.
const EventTypeNoteCompleted = "scribe.note_completed"

// NewNoteCompletedEvent builds the completion report for one finished
// generation session.
func NewNoteCompletedEvent(sessionId string, sectionCount, alertCount, highSeverityCount int, durationMs int64) Event {
	return BaseEvent{
		Type: EventTypeNoteCompleted,
		Data: map[string]interface{}{
			"session_id":          sessionId,
			"section_count":       sectionCount,
			"alert_count":         alertCount,
			"high_severity_count": highSeverityCount,
			"duration_ms":         durationMs,
			"timestamp":           time.Now().UnixMilli(),
		},
		OccurredAt: time.Now(),
	}
}
