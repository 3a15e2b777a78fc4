package travel

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ModeCar       = "CAR"
	ModeMotorbike = "MOTORBIKE"
	ModePublic    = "PUBLIC_TRANSPORT"
)

// EmployeeProfile holds the commute inputs for travel-tier resolution.
type EmployeeProfile struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	DistanceKm    decimal.Decimal `gorm:"type:numeric(8,2);not null"`
	TransportMode string          `gorm:"type:varchar(30);not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (EmployeeProfile) TableName() string {
	return "payroll_employee_profiles"
}

// AllowanceTier is a monthly travel rate for a transport mode over a km band.
// Concurrent effective tiers must not overlap km bands within a mode.
type AllowanceTier struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TransportMode string          `gorm:"type:varchar(30);not null;index"`
	MinKm         decimal.Decimal `gorm:"type:numeric(8,2);not null"`
	MaxKm         decimal.Decimal `gorm:"type:numeric(8,2);not null"`
	MonthlyRate   decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	EffectiveFrom time.Time       `gorm:"type:date;not null"`
	EffectiveTo   *time.Time      `gorm:"type:date"`
	IsActive      bool            `gorm:"not null;default:true;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (AllowanceTier) TableName() string {
	return "payroll_travel_allowance_tiers"
}

// Covers reports whether the tier applies to the given mode, distance and
// period window.
func (t AllowanceTier) Covers(mode string, distanceKm decimal.Decimal, periodStart, periodEnd time.Time) bool {
	if t.TransportMode != mode {
		return false
	}
	if distanceKm.LessThan(t.MinKm) || distanceKm.GreaterThan(t.MaxKm) {
		return false
	}
	if t.EffectiveFrom.After(periodStart) {
		return false
	}
	if t.EffectiveTo != nil && t.EffectiveTo.Before(periodEnd) {
		return false
	}
	return true
}
