package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// Mismatch severities.
const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Mismatch records one computed-vs-paid divergence beyond tolerance.
// Advisory only: it gates manual approval, never computation.
type Mismatch struct {
	PayrollName string          `json:"payrollName"`
	PeriodKey   string          `json:"periodKey"`
	Expected    decimal.Decimal `json:"expected"`
	Actual      decimal.Decimal `json:"actual"`
	Delta       decimal.Decimal `json:"delta"`
	Severity    string          `json:"severity"`
	Code        string          `json:"code"`
}

// Note is an advisory diagnostic attached to the summary, carrying an
// apperror code so audit views can filter by failure class.
type Note struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Summary is the per-period diagnostics snapshot stored on the period and
// served to approval and audit views.
type Summary struct {
	PeriodKey     string          `json:"periodKey"`
	Tolerance     decimal.Decimal `json:"tolerance"`
	MismatchCount int             `json:"mismatchCount"`
	Mismatches    []Mismatch      `json:"mismatches"`
	Notes         []Note          `json:"notes,omitempty"`
	AppliedFixes  []string        `json:"appliedFixes"`
	ComputedAt    time.Time       `json:"computedAt"`
}

type RecalculateRequest struct {
	Tolerance *float64 `json:"tolerance" binding:"omitempty,gte=0"`
}

type RecalculateResult struct {
	PeriodID      string     `json:"period_id"`
	PeriodKey     string     `json:"period_key"`
	PayrollCount  int        `json:"payroll_count"`
	ComputedCount int        `json:"computed_count"`
	MismatchCount int        `json:"mismatch_count"`
	Mismatches    []Mismatch `json:"mismatches"`
	AppliedFixes  []string   `json:"applied_fixes"`
}

type ComputedValueResponse struct {
	PayrollName    string  `json:"payroll_name"`
	UserID         *string `json:"user_id"`
	MetricKey      string  `json:"metric_key"`
	Amount         string  `json:"amount"`
	FormulaVersion string  `json:"formula_version"`
	Lineage        string  `json:"lineage"`
}
