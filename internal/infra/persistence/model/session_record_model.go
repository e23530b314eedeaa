package model

import (
	"time"
)

// SessionRecordModel mirrors the 'session_records' table: one serialised record per key.
// It is an exported type so it can be used by the GORM Gen tool from other packages.
type SessionRecordModel struct {
	Key       string `gorm:"column:record_key;type:varchar(255);primaryKey"`
	Value     []byte `gorm:"type:bytea;not null"`
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (SessionRecordModel) TableName() string {
	return "session_records"
}
