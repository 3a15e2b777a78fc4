package salaryhead

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeEarning   = "EARNING"
	TypeDeduction = "DEDUCTION"
)

// SalaryHead is one catalog entry for a pay line outside the known component
// keys. The engine classifies extra bucket keys against this catalog.
type SalaryHead struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code      string    `gorm:"type:varchar(60);not null;uniqueIndex"`
	Name      string    `gorm:"type:varchar(120);not null"`
	Type      string    `gorm:"type:varchar(20);not null;index"`
	IsTaxable bool      `gorm:"not null;default:false"`
	IsActive  bool      `gorm:"not null;default:true;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SalaryHead) TableName() string {
	return "payroll_salary_heads"
}
