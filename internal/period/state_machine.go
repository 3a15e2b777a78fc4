package period

// transitions lists the allowed status moves. LOCKED is terminal; any status
// may move to LOCKED.
var transitions = map[string][]string{
	StatusDraft:      {StatusCalculated, StatusLocked},
	StatusCalculated: {StatusCalculated, StatusApproved, StatusLocked},
	StatusApproved:   {StatusSending, StatusLocked},
	StatusSending:    {StatusSent, StatusPartial, StatusFailed, StatusLocked},
	StatusSent:       {StatusLocked},
	StatusPartial:    {StatusSending, StatusLocked},
	StatusFailed:     {StatusSending, StatusLocked},
	StatusLocked:     {},
}

func CanTransition(from, to string) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowsRecompute reports whether recomputation is meaningful for the status.
// The engine itself stays idempotent from any state; the gate is policy.
func AllowsRecompute(status string) bool {
	return status == StatusDraft || status == StatusCalculated
}

// AllowsInputMutation reports whether input rows (imports, overrides,
// attendance, travel) may still change.
func AllowsInputMutation(status string) bool {
	return status != StatusLocked
}

// AllowsSend reports whether the send-receipts batch may start. PARTIAL and
// FAILED re-enter SENDING for the explicit FAILED-only resend.
func AllowsSend(status string) bool {
	return status == StatusApproved || status == StatusPartial || status == StatusFailed
}
