package revision

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=revision_repo.go -destination=mock/revision_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, rev *SalaryRevision) error
	LatestEffective(ctx context.Context, userID uuid.UUID, onOrBefore time.Time) (*SalaryRevision, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]SalaryRevision, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, rev *SalaryRevision) error {
	return r.db.WithContext(ctx).Create(rev).Error
}

// LatestEffective returns the newest revision effective on/before the given
// date, with lines, or nil when the employee has none yet.
func (r *repository) LatestEffective(ctx context.Context, userID uuid.UUID, onOrBefore time.Time) (*SalaryRevision, error) {
	var rev SalaryRevision
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("user_id = ? AND effective_from <= ?", userID, onOrBefore).
		Order("effective_from DESC").
		First(&rev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]SalaryRevision, error) {
	var revs []SalaryRevision
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("user_id = ?", userID).
		Order("effective_from DESC").
		Find(&revs).Error
	return revs, err
}
