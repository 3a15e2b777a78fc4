package engine

import (
	"github.com/shopspring/decimal"

	"go-payops/internal/shared/apperror"
)

// DefaultTolerance is the absolute currency amount a computed net may
// diverge from the recorded paid amount before it is flagged.
var DefaultTolerance = decimal.NewFromInt(1)

// criticalFactor scales the tolerance into the critical threshold.
var criticalFactor = decimal.NewFromInt(10)

// reconcile compares computed net salary against the recorded paid amount
// for every name that has a paid figure. Deltas strictly beyond tolerance
// are reported; deltas at exactly the tolerance pass. A delta beyond ten
// times the tolerance is escalated to critical.
func reconcile(periodKey string, computations []Computation, hasPaid func(name string) bool, tolerance decimal.Decimal) []Mismatch {
	var mismatches []Mismatch
	for _, c := range computations {
		if !hasPaid(c.Name) {
			continue
		}
		delta := c.NetSalary.Sub(c.Paid)
		if delta.Abs().Cmp(tolerance) <= 0 {
			continue
		}
		severity := SeverityWarning
		if delta.Abs().Cmp(tolerance.Mul(criticalFactor)) > 0 {
			severity = SeverityCritical
		}
		mismatches = append(mismatches, Mismatch{
			PayrollName: c.Name,
			PeriodKey:   periodKey,
			Expected:    c.NetSalary,
			Actual:      c.Paid,
			Delta:       delta,
			Severity:    severity,
			Code:        apperror.CodeReconciliation,
		})
	}
	return mismatches
}
