package formula

import "github.com/google/uuid"

// Lineage is the audit snapshot recorded next to every computed value:
// which formula version, financial year, working-day count and fixes
// produced it.
type Lineage struct {
	FormulaVersion  string     `json:"formulaVersion"`
	FinancialYearID *uuid.UUID `json:"financialYearId,omitempty"`
	WorkingDays     int        `json:"workingDays"`
	AppliedFixes    []string   `json:"appliedFixes"`
}
