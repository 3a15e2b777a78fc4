package salaryhead

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedDefaults inserts the catalog entries payroll sheets commonly carry
// outside the enumerated component keys. Existing codes are left untouched.
func SeedDefaults(ctx context.Context, db *gorm.DB) error {
	defaults := []SalaryHead{
		{Code: "OVERTIME", Name: "Overtime", Type: TypeEarning, IsTaxable: true, IsActive: true},
		{Code: "COMMISSION", Name: "Commission", Type: TypeEarning, IsTaxable: true, IsActive: true},
		{Code: "REFERRAL_BONUS", Name: "Referral Bonus", Type: TypeEarning, IsTaxable: true, IsActive: true},
		{Code: "INTERNET_ALLOWANCE", Name: "Internet Allowance", Type: TypeEarning, IsTaxable: false, IsActive: true},
		{Code: "RELOCATION_SUPPORT", Name: "Relocation Support", Type: TypeEarning, IsTaxable: false, IsActive: true},
		{Code: "PROVIDENT_FUND", Name: "Provident Fund", Type: TypeDeduction, IsActive: true},
		{Code: "INSURANCE_PREMIUM", Name: "Insurance Premium", Type: TypeDeduction, IsActive: true},
		{Code: "CANTEEN_RECOVERY", Name: "Canteen Recovery", Type: TypeDeduction, IsActive: true},
	}

	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).
		Create(&defaults).Error
}
