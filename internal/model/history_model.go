package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type HistoryEntry struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Context   datatypes.JSON `gorm:"type:jsonb"`
	Profile   datatypes.JSON `gorm:"type:jsonb"`
	NoteText  string         `gorm:"type:text;not null"`
	Alerts    datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index"`
}

func (HistoryEntry) TableName() string {
	return "history_entries"
}
