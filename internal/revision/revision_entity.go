package revision

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalaryRevision is one effective-dated set of per-head defaults for an
// employee. The latest revision with effectiveFrom on or before the period
// start supplies defaults during computation.
type SalaryRevision struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index:idx_revision_user_effective"`
	EffectiveFrom time.Time `gorm:"type:date;not null;index:idx_revision_user_effective"`
	Note          *string   `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Lines []SalaryRevisionLine `gorm:"foreignKey:RevisionID"`
}

func (SalaryRevision) TableName() string {
	return "payroll_salary_revisions"
}

type SalaryRevisionLine struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RevisionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	HeadCode   string          `gorm:"type:varchar(60);not null"`
	Amount     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CreatedAt  time.Time
}

func (SalaryRevisionLine) TableName() string {
	return "payroll_salary_revision_lines"
}
