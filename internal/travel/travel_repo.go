package travel

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=travel_repo.go -destination=mock/travel_repo_mock.go -package=mock
type Repository interface {
	FindProfile(ctx context.Context, userID uuid.UUID) (*EmployeeProfile, error)
	UpsertProfile(ctx context.Context, profile *EmployeeProfile) error
	ListActiveTiers(ctx context.Context, on time.Time) ([]AllowanceTier, error)
	CreateTier(ctx context.Context, tier *AllowanceTier) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindProfile(ctx context.Context, userID uuid.UUID) (*EmployeeProfile, error) {
	var profile EmployeeProfile
	err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) UpsertProfile(ctx context.Context, profile *EmployeeProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *repository) ListActiveTiers(ctx context.Context, on time.Time) ([]AllowanceTier, error) {
	var tiers []AllowanceTier
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("effective_from <= ?", on).
		Where("effective_to IS NULL OR effective_to >= ?", on).
		Order("transport_mode ASC, min_km ASC").
		Find(&tiers).Error
	return tiers, err
}

func (r *repository) CreateTier(ctx context.Context, tier *AllowanceTier) error {
	return r.db.WithContext(ctx).Create(tier).Error
}
