package travel

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go-payops/internal/shared/apperror"
	travelerrors "go-payops/internal/travel/errors"
)

//go:generate mockgen -source=travel_service.go -destination=mock/travel_service_mock.go -package=mock

type Service interface {
	UpsertProfile(ctx context.Context, req UpsertProfileRequest) (ProfileResponse, error)
	CreateTier(ctx context.Context, req CreateTierRequest) (TierResponse, error)
	ListTiers(ctx context.Context, on time.Time) ([]TierResponse, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func validMode(mode string) bool {
	switch mode {
	case ModeCar, ModeMotorbike, ModePublic:
		return true
	}
	return false
}

func (s *service) UpsertProfile(ctx context.Context, req UpsertProfileRequest) (ProfileResponse, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return ProfileResponse{}, travelerrors.ErrInvalidUserID
	}
	if !validMode(req.TransportMode) {
		return ProfileResponse{}, travelerrors.ErrUnknownTransportMode
	}

	profile := EmployeeProfile{
		UserID:        userID,
		DistanceKm:    decimal.NewFromFloat(req.DistanceKm),
		TransportMode: req.TransportMode,
	}
	// Save requires the existing primary key to update instead of insert.
	existing, err := s.repo.FindProfile(ctx, userID)
	if err != nil {
		return ProfileResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to load travel profile", 500)
	}
	if existing != nil {
		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
	}

	if err := s.repo.UpsertProfile(ctx, &profile); err != nil {
		return ProfileResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to save travel profile", 500)
	}
	return toProfileResponse(profile), nil
}

func (s *service) CreateTier(ctx context.Context, req CreateTierRequest) (TierResponse, error) {
	if !validMode(req.TransportMode) {
		return TierResponse{}, travelerrors.ErrUnknownTransportMode
	}
	minKm := decimal.NewFromFloat(req.MinKm)
	maxKm := decimal.NewFromFloat(req.MaxKm)
	if !minKm.LessThan(maxKm) {
		return TierResponse{}, travelerrors.ErrInvalidKmBand
	}
	effectiveFrom, err := time.Parse("2006-01-02", req.EffectiveFrom)
	if err != nil {
		return TierResponse{}, travelerrors.ErrInvalidEffectiveFrom
	}

	tier := AllowanceTier{
		TransportMode: req.TransportMode,
		MinKm:         minKm,
		MaxKm:         maxKm,
		MonthlyRate:   decimal.NewFromFloat(req.MonthlyRate),
		EffectiveFrom: effectiveFrom,
		IsActive:      true,
	}
	if req.EffectiveTo != nil {
		effectiveTo, err := time.Parse("2006-01-02", *req.EffectiveTo)
		if err != nil {
			return TierResponse{}, travelerrors.ErrInvalidEffectiveTo
		}
		if effectiveTo.Before(effectiveFrom) {
			return TierResponse{}, travelerrors.ErrInvalidEffectiveTo
		}
		tier.EffectiveTo = &effectiveTo
	}

	if err := s.repo.CreateTier(ctx, &tier); err != nil {
		return TierResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to create travel tier", 500)
	}
	return toTierResponse(tier), nil
}

func (s *service) ListTiers(ctx context.Context, on time.Time) ([]TierResponse, error) {
	tiers, err := s.repo.ListActiveTiers(ctx, on)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to list travel tiers", 500)
	}
	out := make([]TierResponse, 0, len(tiers))
	for _, tier := range tiers {
		out = append(out, toTierResponse(tier))
	}
	return out, nil
}

func toProfileResponse(profile EmployeeProfile) ProfileResponse {
	return ProfileResponse{
		UserID:        profile.UserID.String(),
		DistanceKm:    profile.DistanceKm.StringFixed(2),
		TransportMode: profile.TransportMode,
	}
}

func toTierResponse(tier AllowanceTier) TierResponse {
	resp := TierResponse{
		ID:            tier.ID.String(),
		TransportMode: tier.TransportMode,
		MinKm:         tier.MinKm.StringFixed(2),
		MaxKm:         tier.MaxKm.StringFixed(2),
		MonthlyRate:   tier.MonthlyRate.StringFixed(2),
		EffectiveFrom: tier.EffectiveFrom.Format("2006-01-02"),
		IsActive:      tier.IsActive,
	}
	if tier.EffectiveTo != nil {
		formatted := tier.EffectiveTo.Format("2006-01-02")
		resp.EffectiveTo = &formatted
	}
	return resp
}
