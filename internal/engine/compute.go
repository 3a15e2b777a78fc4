package engine

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go-payops/internal/formula"
	"go-payops/internal/payinput"
	"go-payops/internal/salaryhead"
	"go-payops/internal/taxyear"
)

// nameInput is one payroll name's bucketed inputs: amounts summed per
// component key, with the keys a human explicitly overrode.
type nameInput struct {
	Name      string
	UserID    *uuid.UUID
	Bucket    map[string]decimal.Decimal
	Overrides map[string]struct{}
}

// computeEnv is the master data shared by every name in one recompute pass.
type computeEnv struct {
	PeriodKey     string
	WorkingDays   int
	FinancialYear *taxyear.FinancialYear
	Heads         map[string]salaryhead.SalaryHead
	KnownKeys     map[string]struct{}
	Registry      formula.Registry
}

// Computation is the full derived result for one payroll name.
type Computation struct {
	Name   string
	UserID *uuid.UUID

	TaxableBase     decimal.Decimal
	IncomeTax       decimal.Decimal
	TotalEarnings   decimal.Decimal
	TotalDeductions decimal.Decimal
	NetSalary       decimal.Decimal
	Paid            decimal.Decimal
	Balance         decimal.Decimal

	Earnings     map[string]decimal.Decimal
	Deductions   map[string]decimal.Decimal
	Unclassified []string
}

// computeName derives all metrics for one payroll name from its bucket.
// Pure with respect to its arguments: identical inputs always produce
// identical output, which is what makes recompute idempotent.
func computeName(in nameInput, env computeEnv, prevBalance decimal.Decimal) Computation {
	get := func(key string) decimal.Decimal {
		return in.Bucket[key]
	}
	has := func(key string) bool {
		_, ok := in.Bucket[key]
		return ok
	}

	basic := get(payinput.KeyBasicSalary)
	medical := get(payinput.KeyMedicalAllowance)
	bonus := get(payinput.KeyBonus)

	// The exemption offsets the medical allowance for tax purposes only,
	// unless the sheet provided an explicit figure.
	medicalExemption := medical.Neg()
	if has(payinput.KeyMedicalTaxExemption) {
		medicalExemption = get(payinput.KeyMedicalTaxExemption)
	}

	var addlTaxable, addlNonTaxable, addlDeductions decimal.Decimal
	var unclassified []string
	for key, amount := range in.Bucket {
		if _, known := env.KnownKeys[key]; known {
			continue
		}
		head, ok := env.Heads[key]
		if !ok {
			unclassified = append(unclassified, key)
			continue
		}
		switch head.Type {
		case salaryhead.TypeEarning:
			if head.IsTaxable {
				addlTaxable = addlTaxable.Add(amount)
			} else {
				addlNonTaxable = addlNonTaxable.Add(amount)
			}
		case salaryhead.TypeDeduction:
			addlDeductions = addlDeductions.Add(amount)
		}
	}

	taxableBase := basic.Add(medicalExemption).Add(bonus).Add(addlTaxable)

	// The tax input deliberately excludes the medical exemption adjustment;
	// that asymmetry matches the organization's payroll convention.
	var incomeTax decimal.Decimal
	switch {
	case has(payinput.KeyIncomeTax):
		incomeTax = get(payinput.KeyIncomeTax)
	case env.FinancialYear != nil && len(env.FinancialYear.Brackets) > 0:
		annual := basic.Add(bonus).Add(addlTaxable).Mul(decimal.NewFromInt(12))
		incomeTax = env.Registry.
			ProgressiveTax(annual, env.FinancialYear.FormulaBrackets()).
			Div(decimal.NewFromInt(12)).
			Round(2)
	default:
		incomeTax = env.Registry.SlabEstimate(env.PeriodKey, basic.Add(bonus))
	}

	travel := get(payinput.KeyTravelReimbursement)
	utility := get(payinput.KeyUtilityAllowance)
	meals := get(payinput.KeyMealsAllowance)
	mobile := get(payinput.KeyMobileAllowance)
	expense := get(payinput.KeyExpenseReimbursement)
	advance := get(payinput.KeyAdvanceLoanIn)
	adjustment := get(payinput.KeyAdjustment)
	loanRepayment := get(payinput.KeyLoanRepayment)

	totalEarnings := taxableBase.
		Add(medical).
		Add(travel).
		Add(utility).
		Add(meals).
		Add(mobile).
		Add(expense).
		Add(advance).
		Add(addlNonTaxable)

	totalDeductions := incomeTax.
		Add(adjustment).
		Add(loanRepayment).
		Add(addlDeductions)

	netSalary := totalEarnings.Sub(totalDeductions)
	paid := get(payinput.KeyPaid)
	balance := prevBalance.Add(netSalary).Sub(paid)

	earnings := make(map[string]decimal.Decimal)
	putNonZero := func(m map[string]decimal.Decimal, key string, v decimal.Decimal) {
		if !v.IsZero() {
			m[key] = v
		}
	}
	putNonZero(earnings, payinput.KeyBasicSalary, basic)
	putNonZero(earnings, payinput.KeyBonus, bonus)
	putNonZero(earnings, payinput.KeyMedicalAllowance, medical)
	putNonZero(earnings, payinput.KeyMedicalTaxExemption, medicalExemption)
	putNonZero(earnings, payinput.KeyTravelReimbursement, travel)
	putNonZero(earnings, payinput.KeyUtilityAllowance, utility)
	putNonZero(earnings, payinput.KeyMealsAllowance, meals)
	putNonZero(earnings, payinput.KeyMobileAllowance, mobile)
	putNonZero(earnings, payinput.KeyExpenseReimbursement, expense)
	putNonZero(earnings, payinput.KeyAdvanceLoanIn, advance)

	deductions := make(map[string]decimal.Decimal)
	putNonZero(deductions, payinput.KeyIncomeTax, incomeTax)
	putNonZero(deductions, payinput.KeyAdjustment, adjustment)
	putNonZero(deductions, payinput.KeyLoanRepayment, loanRepayment)

	for key, amount := range in.Bucket {
		if _, known := env.KnownKeys[key]; known {
			continue
		}
		head, ok := env.Heads[key]
		if !ok {
			continue
		}
		switch head.Type {
		case salaryhead.TypeEarning:
			putNonZero(earnings, key, amount)
		case salaryhead.TypeDeduction:
			putNonZero(deductions, key, amount)
		}
	}

	return Computation{
		Name:            in.Name,
		UserID:          in.UserID,
		TaxableBase:     taxableBase,
		IncomeTax:       incomeTax,
		TotalEarnings:   totalEarnings,
		TotalDeductions: totalDeductions,
		NetSalary:       netSalary,
		Paid:            paid,
		Balance:         balance,
		Earnings:        earnings,
		Deductions:      deductions,
		Unclassified:    unclassified,
	}
}
