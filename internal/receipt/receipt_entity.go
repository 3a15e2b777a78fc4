package receipt

import (
	"time"

	"github.com/google/uuid"
)

// Receipt statuses. READY receipts have never been dispatched; the rest
// track the e-signature lifecycle.
const (
	StatusReady           = "READY"
	StatusEnvelopeCreated = "ENVELOPE_CREATED"
	StatusSent            = "SENT"
	StatusCompleted       = "COMPLETED"
	StatusFailed          = "FAILED"
)

// PayrollReceipt is the signable snapshot of one payroll name's breakdown
// for a period. Regenerated wholesale with the computed values.
type PayrollReceipt struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PeriodID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_receipt_period_name,unique"`
	PayrollName   string     `gorm:"type:varchar(160);not null;index:idx_receipt_period_name,unique"`
	UserID        *uuid.UUID `gorm:"type:uuid;index"`
	ReceiptJSON   []byte     `gorm:"type:jsonb;not null"`
	Status        string     `gorm:"type:varchar(20);not null;default:'READY';index"`
	EnvelopeID    *string    `gorm:"type:varchar(120)"`
	FailureReason *string    `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (PayrollReceipt) TableName() string {
	return "payroll_receipts"
}

// ReceiptBody is the canonical structure consumed by PDF rendering and
// e-signature dispatch.
type ReceiptBody struct {
	Earnings   map[string]string `json:"earnings"`
	Deductions map[string]string `json:"deductions"`
	Net        ReceiptNet        `json:"net"`
}

type ReceiptNet struct {
	NetSalary string `json:"netSalary"`
	Paid      string `json:"paid"`
	Balance   string `json:"balance"`
}
