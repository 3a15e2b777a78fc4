package taxyear

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"go-payops/internal/shared/apperror"
	taxyearerrors "go-payops/internal/taxyear/errors"
)

//go:generate mockgen -source=taxyear_service.go -destination=mock/taxyear_service_mock.go -package=mock

type Service interface {
	Create(ctx context.Context, req CreateYearRequest) (YearResponse, error)
	List(ctx context.Context) ([]YearResponse, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateYearRequest) (YearResponse, error) {
	effectiveFrom, err := time.Parse("2006-01-02", req.EffectiveFrom)
	if err != nil {
		return YearResponse{}, taxyearerrors.ErrInvalidEffectiveRange
	}
	var effectiveTo *time.Time
	if req.EffectiveTo != nil {
		to, err := time.Parse("2006-01-02", *req.EffectiveTo)
		if err != nil || to.Before(effectiveFrom) {
			return YearResponse{}, taxyearerrors.ErrInvalidEffectiveRange
		}
		effectiveTo = &to
	}

	brackets, err := buildBrackets(req.Brackets)
	if err != nil {
		return YearResponse{}, err
	}

	fy := FinancialYear{
		Label:         req.Label,
		EffectiveFrom: effectiveFrom,
		EffectiveTo:   effectiveTo,
		IsActive:      true,
		Brackets:      brackets,
	}
	if err := s.repo.Create(ctx, &fy); err != nil {
		return YearResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to create financial year", 500)
	}
	return toYearResponse(fy), nil
}

func (s *service) List(ctx context.Context) ([]YearResponse, error) {
	years, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to list financial years", 500)
	}
	out := make([]YearResponse, 0, len(years))
	for _, fy := range years {
		out = append(out, toYearResponse(fy))
	}
	return out, nil
}

// buildBrackets validates that the slabs are contiguous and ascending: each
// bracket's floor equals the previous cap, and only the last bracket may be
// uncapped.
func buildBrackets(inputs []BracketInput) ([]TaxBracket, error) {
	if len(inputs) == 0 {
		return nil, taxyearerrors.ErrNoBrackets
	}

	brackets := make([]TaxBracket, 0, len(inputs))
	prevCap := decimal.Zero
	for i, in := range inputs {
		floor := decimal.NewFromFloat(in.Floor)
		if !floor.Equal(prevCap) {
			return nil, taxyearerrors.ErrInvalidBracketOrder
		}
		var capVal *decimal.Decimal
		if in.Cap != nil {
			c := decimal.NewFromFloat(*in.Cap)
			if c.LessThanOrEqual(floor) {
				return nil, taxyearerrors.ErrInvalidBracketOrder
			}
			capVal = &c
			prevCap = c
		} else if i != len(inputs)-1 {
			return nil, taxyearerrors.ErrInvalidBracketOrder
		}
		brackets = append(brackets, TaxBracket{
			Position: i,
			Floor:    floor,
			Cap:      capVal,
			Rate:     decimal.NewFromFloat(in.Rate),
		})
	}
	return brackets, nil
}

func toYearResponse(fy FinancialYear) YearResponse {
	var effectiveTo *string
	if fy.EffectiveTo != nil {
		s := fy.EffectiveTo.Format("2006-01-02")
		effectiveTo = &s
	}
	brackets := make([]BracketResponse, 0, len(fy.Brackets))
	for _, b := range fy.Brackets {
		var capVal *string
		if b.Cap != nil {
			s := b.Cap.StringFixed(2)
			capVal = &s
		}
		brackets = append(brackets, BracketResponse{
			Position: b.Position,
			Floor:    b.Floor.StringFixed(2),
			Cap:      capVal,
			Rate:     b.Rate.String(),
		})
	}
	return YearResponse{
		ID:            fy.ID.String(),
		Label:         fy.Label,
		EffectiveFrom: fy.EffectiveFrom.Format("2006-01-02"),
		EffectiveTo:   effectiveTo,
		IsActive:      fy.IsActive,
		Brackets:      brackets,
	}
}
