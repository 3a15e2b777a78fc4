package taxyear

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=taxyear_repo.go -destination=mock/taxyear_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, fy *FinancialYear) error
	ActiveForDate(ctx context.Context, on time.Time) (*FinancialYear, error)
	List(ctx context.Context) ([]FinancialYear, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, fy *FinancialYear) error {
	return r.db.WithContext(ctx).Create(fy).Error
}

// ActiveForDate resolves the financial year covering the given date, with
// brackets in configured order, or nil when none is configured; the engine
// degrades to the legacy slab estimator in that case.
func (r *repository) ActiveForDate(ctx context.Context, on time.Time) (*FinancialYear, error) {
	var fy FinancialYear
	err := r.db.WithContext(ctx).
		Preload("Brackets", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("is_active = ?", true).
		Where("effective_from <= ?", on).
		Where("effective_to IS NULL OR effective_to >= ?", on).
		Order("effective_from DESC").
		First(&fy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fy, nil
}

func (r *repository) List(ctx context.Context) ([]FinancialYear, error) {
	var years []FinancialYear
	err := r.db.WithContext(ctx).
		Preload("Brackets", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("effective_from DESC").
		Find(&years).Error
	return years, err
}
