package dto

import (
	"ai-scribe-be/internal/entity"

	"github.com/google/uuid"
)

// HistoryEntryResponse is the persisted-history wire record. Timestamp is
// epoch milliseconds, matching the convention of the report consumers.
type HistoryEntryResponse struct {
	Id        uuid.UUID                  `json:"id"`
	Timestamp int64                      `json:"timestamp"`
	Context   entity.ConsultationContext `json:"context"`
	Profile   entity.ProfileSnapshot     `json:"profile"`
	NoteText  string                     `json:"noteText"`
	Alerts    []entity.ClinicalAlert     `json:"alerts"`
}

func FromHistoryEntry(e *entity.HistoryEntry) *HistoryEntryResponse {
	alerts := e.Alerts
	if alerts == nil {
		alerts = []entity.ClinicalAlert{}
	}
	return &HistoryEntryResponse{
		Id:        e.Id,
		Timestamp: e.CreatedAt.UnixMilli(),
		Context:   e.Context,
		Profile:   e.Profile,
		NoteText:  e.NoteText,
		Alerts:    alerts,
	}
}
