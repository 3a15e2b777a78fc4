package salaryhead

import (
	"context"
	"errors"

	"gorm.io/gorm"

	salaryheaderrors "go-payops/internal/salaryhead/errors"
	"go-payops/internal/shared/apperror"
)

//go:generate mockgen -source=salaryhead_service.go -destination=mock/salaryhead_service_mock.go -package=mock

type Service interface {
	Create(ctx context.Context, req CreateHeadRequest) (HeadResponse, error)
	ListActive(ctx context.Context) ([]HeadResponse, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateHeadRequest) (HeadResponse, error) {
	if req.Type != TypeEarning && req.Type != TypeDeduction {
		return HeadResponse{}, salaryheaderrors.ErrInvalidHeadType
	}

	existing, err := s.repo.FindByCode(ctx, req.Code)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return HeadResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to check salary head code", 500)
	}
	if existing != nil {
		return HeadResponse{}, salaryheaderrors.ErrDuplicateCode
	}

	head := SalaryHead{
		Code:      req.Code,
		Name:      req.Name,
		Type:      req.Type,
		IsTaxable: req.IsTaxable,
		IsActive:  true,
	}
	if err := s.repo.Create(ctx, &head); err != nil {
		return HeadResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to create salary head", 500)
	}
	return toHeadResponse(head), nil
}

func (s *service) ListActive(ctx context.Context) ([]HeadResponse, error) {
	heads, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to list salary heads", 500)
	}
	out := make([]HeadResponse, 0, len(heads))
	for _, head := range heads {
		out = append(out, toHeadResponse(head))
	}
	return out, nil
}

func toHeadResponse(head SalaryHead) HeadResponse {
	return HeadResponse{
		ID:        head.ID.String(),
		Code:      head.Code,
		Name:      head.Name,
		Type:      head.Type,
		IsTaxable: head.IsTaxable,
		IsActive:  head.IsActive,
	}
}
