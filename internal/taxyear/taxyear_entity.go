package taxyear

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go-payops/internal/formula"
)

// FinancialYear holds a progressive-tax configuration effective over a date
// range. At most one year is active for a given period start.
type FinancialYear struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Label         string     `gorm:"type:varchar(20);not null;uniqueIndex"`
	EffectiveFrom time.Time  `gorm:"type:date;not null;index"`
	EffectiveTo   *time.Time `gorm:"type:date;index"`
	IsActive      bool       `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Brackets []TaxBracket `gorm:"foreignKey:FinancialYearID"`
}

func (FinancialYear) TableName() string {
	return "payroll_financial_years"
}

// TaxBracket is one ordered progressive slab. Cap is null on the unbounded
// top slab.
type TaxBracket struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FinancialYearID uuid.UUID        `gorm:"type:uuid;not null;index"`
	Position        int              `gorm:"not null"`
	Floor           decimal.Decimal  `gorm:"type:numeric(14,2);not null"`
	Cap             *decimal.Decimal `gorm:"type:numeric(14,2)"`
	Rate            decimal.Decimal  `gorm:"type:numeric(7,4);not null"`
	CreatedAt       time.Time
}

func (TaxBracket) TableName() string {
	return "payroll_tax_brackets"
}

// FormulaBrackets converts the configured slabs into the formula registry's
// shape, preserving their configured order.
func (fy *FinancialYear) FormulaBrackets() []formula.Bracket {
	brackets := make([]formula.Bracket, len(fy.Brackets))
	for i, b := range fy.Brackets {
		brackets[i] = formula.Bracket{Floor: b.Floor, Cap: b.Cap, Rate: b.Rate}
	}
	return brackets
}
