package period

import (
	"time"

	"github.com/google/uuid"
)

// Period statuses.
const (
	StatusDraft      = "DRAFT"
	StatusCalculated = "CALCULATED"
	StatusApproved   = "APPROVED"
	StatusSending    = "SENDING"
	StatusSent       = "SENT"
	StatusPartial    = "PARTIAL"
	StatusFailed     = "FAILED"
	StatusLocked     = "LOCKED"
)

// Source types.
const (
	SourceWorkbook     = "WORKBOOK"
	SourceManual       = "MANUAL"
	SourceCarryForward = "CARRY_FORWARD"
)

// PayrollPeriod is one calendar month of payroll. Never hard-deleted once it
// has computed values: that would break audit lineage.
type PayrollPeriod struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PeriodStart     time.Time `gorm:"type:date;not null;uniqueIndex"`
	PeriodEnd       time.Time `gorm:"type:date;not null"`
	Status          string    `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	SourceType      string    `gorm:"type:varchar(20);not null;default:'MANUAL'"`
	SummaryJSON     []byte    `gorm:"type:jsonb"`
	ApprovedBy      *uuid.UUID `gorm:"type:uuid"`
	ApprovalComment *string    `gorm:"type:text"`
	ApprovedAt      *time.Time
	LockedAt        *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (PayrollPeriod) TableName() string {
	return "payroll_periods"
}

// PeriodKey returns the canonical "YYYY-MM" key for the period.
func (p *PayrollPeriod) PeriodKey() string {
	return p.PeriodStart.Format("2006-01")
}
