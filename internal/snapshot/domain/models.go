package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Snapshot is the append-only audit record of one calculation.
type Snapshot struct {
	ID          snowflake.ID   `json:"id" gorm:"primaryKey"`
	ClaimID     string         `json:"claim_id" gorm:"type:text;not null;index:ix_calculation_snapshots_claim,priority:1"`
	RequestID   *string        `json:"request_id,omitempty" gorm:"type:text"`
	RuleVersion string         `json:"rule_version" gorm:"type:text;not null"`
	TotalCents  int64          `json:"total_cents" gorm:"not null"`
	Confidence  int            `json:"confidence" gorm:"not null"`
	Result      datatypes.JSON `json:"result" gorm:"not null"`
	CreatedAt   time.Time      `json:"created_at" gorm:"not null;index:ix_calculation_snapshots_claim,priority:2"`
}

func (Snapshot) TableName() string { return "calculation_snapshots" }

// Entry is what callers hand to the recorder. Result is serialized by the
// background writer.
type Entry struct {
	ClaimID     string
	RequestID   string
	RuleVersion string
	TotalCents  int64
	Confidence  int
	Result      any
}

type Cursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type ListFilter struct {
	ClaimID string
	Cursor  *Cursor
	Limit   int
}
