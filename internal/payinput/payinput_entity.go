package payinput

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Component keys for the known line items of pay. Anything outside this set
// is classified against the salary-head catalog during computation.
const (
	KeyBasicSalary          = "BASIC_SALARY"
	KeyMedicalAllowance     = "MEDICAL_ALLOWANCE"
	KeyMedicalTaxExemption  = "MEDICAL_TAX_EXEMPTION"
	KeyBonus                = "BONUS"
	KeyTravelReimbursement  = "TRAVEL_REIMBURSEMENT"
	KeyUtilityAllowance     = "UTILITY_ALLOWANCE"
	KeyMealsAllowance       = "MEALS_ALLOWANCE"
	KeyMobileAllowance      = "MOBILE_ALLOWANCE"
	KeyExpenseReimbursement = "EXPENSE_REIMBURSEMENT"
	KeyAdvanceLoanIn        = "ADVANCE_LOAN_IN"
	KeyIncomeTax            = "INCOME_TAX"
	KeyAdjustment           = "ADJUSTMENT"
	KeyLoanRepayment        = "LOAN_REPAYMENT"
	KeyPaid                 = "PAID"
)

// Source methods recorded on input rows.
const (
	SourceWorkbook     = "WORKBOOK"
	SourceManual       = "MANUAL"
	SourceCarryForward = "CARRY_FORWARD"
	SourceDerived      = "DERIVED"
)

// KnownKeys returns the enumerated component-key set. The engine receives
// this explicitly rather than hiding a literal list inside the computation.
func KnownKeys() map[string]struct{} {
	return map[string]struct{}{
		KeyBasicSalary:          {},
		KeyMedicalAllowance:     {},
		KeyMedicalTaxExemption:  {},
		KeyBonus:                {},
		KeyTravelReimbursement:  {},
		KeyUtilityAllowance:     {},
		KeyMealsAllowance:       {},
		KeyMobileAllowance:      {},
		KeyExpenseReimbursement: {},
		KeyAdvanceLoanIn:        {},
		KeyIncomeTax:            {},
		KeyAdjustment:           {},
		KeyLoanRepayment:        {},
		KeyPaid:                 {},
	}
}

// PayrollInputValue is one pay input line. Exactly one row exists per
// (period, payroll name, component key); imports and manual edits upsert
// into that slot.
type PayrollInputValue struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PeriodID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_input_slot,unique"`
	PayrollName    string          `gorm:"type:varchar(160);not null;index:idx_input_slot,unique"`
	ComponentKey   string          `gorm:"type:varchar(60);not null;index:idx_input_slot,unique"`
	Amount         decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	SourceMethod   string          `gorm:"type:varchar(20);not null;default:'MANUAL'"`
	IsOverride     bool            `gorm:"not null;default:false"`
	ProvenanceJSON []byte          `gorm:"type:jsonb"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (PayrollInputValue) TableName() string {
	return "payroll_input_values"
}

// Provenance records where an imported or derived amount came from.
type Provenance struct {
	SourceSheet    string `json:"sourceSheet,omitempty"`
	SourceCell     string `json:"sourceCell,omitempty"`
	SourcePriority int    `json:"sourcePriority,omitempty"`
	TierID         string `json:"tierId,omitempty"`
	PresentDays    int    `json:"presentDays,omitempty"`
	WorkingDays    int    `json:"workingDays,omitempty"`
	Categories     string `json:"categories,omitempty"`
}
