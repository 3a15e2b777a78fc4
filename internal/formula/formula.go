package formula

import (
	"github.com/shopspring/decimal"
)

// FormulaVersion is stamped on every computed value so historical runs can be
// audited against the formula set that produced them.
const FormulaVersion = "2024.2"

// Fix identifiers name behavioral corrections that are active in the current
// formula set. They travel with every computed row's lineage.
const (
	FixMedicalExemptionOffset   = "MEDICAL_EXEMPTION_OFFSET"
	FixTravelProrationRounding  = "TRAVEL_PRORATION_ROUNDING"
	FixBalanceZeroStart         = "BALANCE_ZERO_START"
	FixProgressiveAnnualization = "PROGRESSIVE_ANNUALIZATION"
)

// ActiveFixes returns the fixes in effect for FormulaVersion, in a stable
// order so recomputes produce identical lineage.
func ActiveFixes() []string {
	return []string{
		FixMedicalExemptionOffset,
		FixTravelProrationRounding,
		FixBalanceZeroStart,
		FixProgressiveAnnualization,
	}
}

// Bracket is one progressive tax slab. Cap is nil for the unbounded top slab.
type Bracket struct {
	Floor decimal.Decimal
	Cap   *decimal.Decimal
	Rate  decimal.Decimal
}

// CalculateAnnualProgressiveTax sums (min(base, cap) - floor) * rate over
// ordered, non-overlapping brackets, clamping each term at zero. Pure: same
// input always yields the same output.
func CalculateAnnualProgressiveTax(annualBase decimal.Decimal, brackets []Bracket) decimal.Decimal {
	tax := decimal.Zero
	for _, b := range brackets {
		upper := annualBase
		if b.Cap != nil && b.Cap.LessThan(upper) {
			upper = *b.Cap
		}
		portion := upper.Sub(b.Floor)
		if portion.Sign() <= 0 {
			continue
		}
		tax = tax.Add(portion.Mul(b.Rate))
	}
	if tax.Sign() < 0 {
		return decimal.Zero
	}
	return tax
}

// Legacy flat-slab rates, applied to the whole monthly base. Kept for periods
// that predate configured tax brackets; the period key is part of the legacy
// signature even though rates no longer vary by period.
var legacySlabs = []struct {
	upTo *decimal.Decimal
	rate decimal.Decimal
}{
	{dec("50000"), decimal.Zero},
	{dec("100000"), decimal.NewFromFloat(0.05)},
	{dec("200000"), decimal.NewFromFloat(0.10)},
	{nil, decimal.NewFromFloat(0.15)},
}

// EstimateIncomeTaxFromSlabs is the fallback monthly estimator used when no
// financial year with brackets covers the period.
func EstimateIncomeTaxFromSlabs(periodKey string, base decimal.Decimal) decimal.Decimal {
	_ = periodKey
	if base.Sign() <= 0 {
		return decimal.Zero
	}
	for _, slab := range legacySlabs {
		if slab.upTo == nil || base.LessThanOrEqual(*slab.upTo) {
			return base.Mul(slab.rate).Round(2)
		}
	}
	return decimal.Zero
}

// Registry bundles the versioned formulas the engine runs with. Function
// fields let tests substitute a fixed estimator without touching the engine.
type Registry struct {
	Version        string
	Fixes          []string
	ProgressiveTax func(annualBase decimal.Decimal, brackets []Bracket) decimal.Decimal
	SlabEstimate   func(periodKey string, base decimal.Decimal) decimal.Decimal
}

func DefaultRegistry() Registry {
	return Registry{
		Version:        FormulaVersion,
		Fixes:          ActiveFixes(),
		ProgressiveTax: CalculateAnnualProgressiveTax,
		SlabEstimate:   EstimateIncomeTaxFromSlabs,
	}
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
