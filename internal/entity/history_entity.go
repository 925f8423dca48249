package entity

import (
	"time"

	"github.com/google/uuid"
)

// ConsultationContext is the ephemeral encounter context the clinician fills
// in. It is only ever captured into history snapshots; the live value lives
// client-side.
type ConsultationContext struct {
	Age               string `json:"age"`
	Sex               string `json:"sex"`
	Modality          string `json:"modality"`
	AdditionalContext string `json:"additional_context"`
}

// ProfileSnapshot is the clinician profile as captured at generation time.
// Profile storage itself is an external collaborator; we only snapshot what
// we were handed.
type ProfileSnapshot struct {
	FullName  string `json:"full_name"`
	Specialty string `json:"specialty"`
}

// HistoryEntry is one finished note. Created once per successful generation,
// immutable except deletion.
type HistoryEntry struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Context   ConsultationContext
	Profile   ProfileSnapshot
	NoteText  string
	Alerts    []ClinicalAlert
	CreatedAt time.Time
}
