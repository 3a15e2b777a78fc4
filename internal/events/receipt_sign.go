package events

import (
	"encoding/json"
	"time"
)

const (
	ReceiptSignRequestedTopic = "payroll.receipt.sign.requested.v1"
	ReceiptSignResultTopic    = "payroll.receipt.sign.result.v1"
)

// ReceiptSignRequestedEvent asks the e-signature collaborator to create an
// envelope for one receipt. The payload carries the canonical receipt JSON
// so the dispatcher does not need to read the database.
type ReceiptSignRequestedEvent struct {
	EventType   string          `json:"event_type"`
	ReceiptID   string          `json:"receipt_id"`
	PeriodID    string          `json:"period_id"`
	PayrollName string          `json:"payroll_name"`
	Receipt     json.RawMessage `json:"receipt"`
	RequestedBy string          `json:"requested_by"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// ReceiptSignResultEvent reports the outcome of one dispatched receipt.
type ReceiptSignResultEvent struct {
	EventType  string    `json:"event_type"`
	ReceiptID  string    `json:"receipt_id"`
	PeriodID   string    `json:"period_id"`
	Status     string    `json:"status"`
	EnvelopeID string    `json:"envelope_id,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
