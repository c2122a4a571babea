package models

import (
	"time"

	"github.com/google/uuid"
)

// PageCursor - scroll token. nil означает начало каталога.
type PageCursor *string

type CheckpointStatus string

const (
	CheckpointActive CheckpointStatus = "active"
	CheckpointDone   CheckpointStatus = "done"
)

type CheckpointRecord struct {
	RunID           uuid.UUID
	Cursor          PageCursor
	LastProcessedID int64
	Status          CheckpointStatus
	StartedAt       time.Time
	LastProcessedAt time.Time
}

func NewCursor(token string) PageCursor {
	return &token
}

// CursorString is used for logging; nil prints as "<head>".
func CursorString(c PageCursor) string {
	if c == nil {
		return "<head>"
	}
	return *c
}
