package salaryhead

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=salaryhead_repo.go -destination=mock/salaryhead_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, head *SalaryHead) error
	ListActive(ctx context.Context) ([]SalaryHead, error)
	FindByCode(ctx context.Context, code string) (*SalaryHead, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, head *SalaryHead) error {
	return r.db.WithContext(ctx).Create(head).Error
}

func (r *repository) ListActive(ctx context.Context) ([]SalaryHead, error) {
	var heads []SalaryHead
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("code ASC").
		Find(&heads).Error
	return heads, err
}

func (r *repository) FindByCode(ctx context.Context, code string) (*SalaryHead, error) {
	var head SalaryHead
	err := r.db.WithContext(ctx).First(&head, "code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &head, nil
}
