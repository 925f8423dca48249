package dto

import (
	"time"

	"ai-scribe-be/internal/entity"
	"ai-scribe-be/pkg/scribe/sections"
	"ai-scribe-be/pkg/scribe/suggest"
)

// ConsultationContextDTO carries the required encounter context. Age, sex and
// modality are the required-context validation gate: generation is blocked
// synchronously when any is missing.
type ConsultationContextDTO struct {
	Age               string `json:"age" validate:"required"`
	Sex               string `json:"sex" validate:"required"`
	Modality          string `json:"modality" validate:"required"`
	AdditionalContext string `json:"additional_context"`
}

// ProfileDTO is the clinician profile snapshot as handed to us by the client;
// profile storage is not ours.
type ProfileDTO struct {
	FullName  string `json:"full_name"`
	Specialty string `json:"specialty"`
}

// AttachmentDTO is an already-extracted attachment: file/OCR conversion is an
// external collaborator, we only receive its text output.
type AttachmentDTO struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

type GenerateNoteRequest struct {
	Context     ConsultationContextDTO `json:"context" validate:"required"`
	Profile     ProfileDTO             `json:"profile"`
	Transcript  string                 `json:"transcript" validate:"required,min=1"`
	Attachments []AttachmentDTO        `json:"attachments" validate:"dive"`
}

type GenerateNoteResponse struct {
	SessionId string `json:"session_id"`
	State     string `json:"state"`
}

type StopGenerationResponse struct {
	State string `json:"state"`
}

// SectionDTO mirrors sections.Section for rendering.
type SectionDTO struct {
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	Hypotheses  []HypothesisDTO `json:"hypotheses,omitempty"`
	CopyPayload string          `json:"copy_payload,omitempty"`
}

type HypothesisDTO struct {
	Label string   `json:"label"`
	Text  string   `json:"text"`
	Notes []string `json:"notes,omitempty"`
}

// SessionStateResponse is the poll/read view of the live session.
type SessionStateResponse struct {
	SessionId string    `json:"session_id"`
	State     string    `json:"state"`
	Displayed string    `json:"displayed"`
	StartedAt time.Time `json:"started_at"`
}

// CompletedNoteDTO is pushed over the websocket when a session finalizes.
type CompletedNoteDTO struct {
	SessionId  string                 `json:"session_id"`
	Disclaimer string                 `json:"disclaimer"`
	Visible    string                 `json:"visible"`
	Sections   []SectionDTO           `json:"sections"`
	Alerts     []entity.ClinicalAlert `json:"alerts"`
}

type TranscriptChangedRequest struct {
	Context    ConsultationContextDTO `json:"context"`
	Transcript string                 `json:"transcript" validate:"required"`
}

type SuggestionsResponse struct {
	Questions []suggest.Question `json:"questions"`
}

type AskQuestionRequest struct {
	Text string `json:"text" validate:"required"`
}

type DismissQuestionRequest struct {
	Text string `json:"text" validate:"required"`
}

// FromSections maps parser output onto DTOs.
func FromSections(parsed sections.Parsed) []SectionDTO {
	out := make([]SectionDTO, 0, len(parsed.Sections))
	for _, s := range parsed.Sections {
		dto := SectionDTO{
			Title:       s.Title,
			Content:     s.Content,
			CopyPayload: s.CopyPayload,
		}
		for _, h := range s.Hypotheses {
			dto.Hypotheses = append(dto.Hypotheses, HypothesisDTO{
				Label: h.Label,
				Text:  h.Text,
				Notes: h.Notes,
			})
		}
		out = append(out, dto)
	}
	return out
}
