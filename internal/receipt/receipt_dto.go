package receipt

type SendRequest struct {
	// FailedOnly restricts the dispatch to receipts whose previous attempt
	// failed. Used to retry a PARTIAL or FAILED period without re-sending
	// receipts that already completed.
	FailedOnly bool `json:"failed_only"`
}

type SendResult struct {
	PeriodID        string `json:"period_id"`
	PeriodStatus    string `json:"period_status"`
	DispatchedCount int    `json:"dispatched_count"`
}

type ReceiptResponse struct {
	ID            string  `json:"id"`
	PayrollName   string  `json:"payroll_name"`
	UserID        *string `json:"user_id"`
	Status        string  `json:"status"`
	EnvelopeID    *string `json:"envelope_id"`
	FailureReason *string `json:"failure_reason"`
	Body          string  `json:"body"`
}
