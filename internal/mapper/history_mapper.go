package mapper

import (
	"encoding/json"

	"ai-scribe-be/internal/entity"
	"ai-scribe-be/internal/model"
)

type HistoryMapper struct{}

func NewHistoryMapper() *HistoryMapper {
	return &HistoryMapper{}
}

func (m *HistoryMapper) ToEntity(h *model.HistoryEntry) *entity.HistoryEntry {
	if h == nil {
		return nil
	}

	e := &entity.HistoryEntry{
		Id:        h.Id,
		UserId:    h.UserId,
		NoteText:  h.NoteText,
		CreatedAt: h.CreatedAt,
	}

	// Snapshots are written by us, so unmarshal failures only happen on
	// hand-edited rows; the entry is still useful without them.
	_ = json.Unmarshal(h.Context, &e.Context)
	_ = json.Unmarshal(h.Profile, &e.Profile)
	_ = json.Unmarshal(h.Alerts, &e.Alerts)

	return e
}

func (m *HistoryMapper) ToModel(e *entity.HistoryEntry) *model.HistoryEntry {
	if e == nil {
		return nil
	}

	contextJSON, _ := json.Marshal(e.Context)
	profileJSON, _ := json.Marshal(e.Profile)
	alertsJSON, _ := json.Marshal(e.Alerts)

	return &model.HistoryEntry{
		Id:        e.Id,
		UserId:    e.UserId,
		Context:   contextJSON,
		Profile:   profileJSON,
		NoteText:  e.NoteText,
		Alerts:    alertsJSON,
		CreatedAt: e.CreatedAt,
	}
}

func (m *HistoryMapper) ToEntities(entries []*model.HistoryEntry) []*entity.HistoryEntry {
	entities := make([]*entity.HistoryEntry, len(entries))
	for i, h := range entries {
		entities[i] = m.ToEntity(h)
	}
	return entities
}
