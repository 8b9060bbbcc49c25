package models

import (
	"time"

	"gorm.io/gorm"
)

// Lookup is the audit record of one tool invocation.
type Lookup struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	RequestID    string         `gorm:"type:varchar(36);uniqueIndex" json:"request_id"`
	SessionID    string         `gorm:"type:varchar(64);index" json:"session_id,omitempty"`
	Tool         string         `gorm:"type:varchar(64);index;not null" json:"tool"`
	Arguments    string         `gorm:"type:text" json:"arguments"`
	Report       string         `gorm:"type:text" json:"report,omitempty"`
	ErrorMessage string         `gorm:"type:text" json:"error_message,omitempty"`
	DurationMs   int64          `json:"duration_ms"`
	Success      bool           `gorm:"index" json:"success"`
}

// LookupFilter narrows a history listing. Zero values mean no constraint.
type LookupFilter struct {
	Tool       string
	FailedOnly bool
	Limit      int
	Offset     int
}
