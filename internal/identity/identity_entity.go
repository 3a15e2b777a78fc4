package identity

import (
	"time"

	"github.com/google/uuid"
)

const (
	MappingResolved  = "RESOLVED"
	MappingAmbiguous = "AMBIGUOUS"
)

// PayrollIdentityMapping links a normalized payroll-sheet name to a canonical
// user. Rows are written by the sync process; confirmed (RESOLVED) rows are
// never deleted automatically.
type PayrollIdentityMapping struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NormalizedName string     `gorm:"type:varchar(160);not null;uniqueIndex"`
	UserID         *uuid.UUID `gorm:"type:uuid;index"`
	Status         string     `gorm:"type:varchar(12);not null;default:'RESOLVED'"`
	CandidatesJSON []byte     `gorm:"type:jsonb"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (PayrollIdentityMapping) TableName() string {
	return "payroll_identity_mappings"
}
