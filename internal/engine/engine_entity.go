package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Metric keys for computed aggregates.
const (
	MetricTotalTaxableSalary = "TOTAL_TAXABLE_SALARY"
	MetricTotalEarnings      = "TOTAL_EARNINGS"
	MetricTotalDeductions    = "TOTAL_DEDUCTIONS"
	MetricNetSalary          = "NET_SALARY"
	MetricBalance            = "BALANCE"
)

// MetricKeys lists the emitted metrics in their stable emission order.
func MetricKeys() []string {
	return []string{
		MetricTotalTaxableSalary,
		MetricTotalEarnings,
		MetricTotalDeductions,
		MetricNetSalary,
		MetricBalance,
	}
}

// PayrollComputedValue is one computed metric for a payroll name in a
// period. The full set for a period is replaced wholesale on recompute;
// rows are never patched in place.
type PayrollComputedValue struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PeriodID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_computed_slot,unique"`
	PayrollName    string          `gorm:"type:varchar(160);not null;index:idx_computed_slot,unique"`
	MetricKey      string          `gorm:"type:varchar(40);not null;index:idx_computed_slot,unique"`
	UserID         *uuid.UUID      `gorm:"type:uuid;index"`
	Amount         decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	FormulaVersion string          `gorm:"type:varchar(20);not null"`
	LineageJSON    []byte          `gorm:"type:jsonb;not null"`
	CreatedAt      time.Time
}

func (PayrollComputedValue) TableName() string {
	return "payroll_computed_values"
}
