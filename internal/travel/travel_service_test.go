package travel_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"go-payops/internal/travel"
	travelerrors "go-payops/internal/travel/errors"
)

func TestTravelService_UpsertProfile(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("keeps existing primary key on update", func(t *testing.T) {
		existingID := uuid.New()
		var saved *travel.EmployeeProfile
		repo := &fakeTravelRepository{
			findProfileFn: func(ctx context.Context, uid uuid.UUID) (*travel.EmployeeProfile, error) {
				return &travel.EmployeeProfile{ID: existingID, UserID: uid}, nil
			},
			upsertProfileFn: func(ctx context.Context, profile *travel.EmployeeProfile) error {
				saved = profile
				return nil
			},
		}
		svc := travel.NewService(repo)

		resp, err := svc.UpsertProfile(ctx, travel.UpsertProfileRequest{
			UserID:        userID.String(),
			DistanceKm:    12.5,
			TransportMode: travel.ModeCar,
		})

		assert.NoError(t, err)
		assert.Equal(t, existingID, saved.ID)
		assert.Equal(t, "12.50", resp.DistanceKm)
	})

	t.Run("rejects unknown transport mode", func(t *testing.T) {
		svc := travel.NewService(&fakeTravelRepository{})

		_, err := svc.UpsertProfile(ctx, travel.UpsertProfileRequest{
			UserID:        userID.String(),
			DistanceKm:    5,
			TransportMode: "TELEPORT",
		})

		assert.ErrorIs(t, err, travelerrors.ErrUnknownTransportMode)
	})
}

func TestTravelService_CreateTier(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an active tier", func(t *testing.T) {
		var stored *travel.AllowanceTier
		repo := &fakeTravelRepository{
			createTierFn: func(ctx context.Context, tier *travel.AllowanceTier) error {
				stored = tier
				return nil
			},
		}
		svc := travel.NewService(repo)

		resp, err := svc.CreateTier(ctx, travel.CreateTierRequest{
			TransportMode: travel.ModeMotorbike,
			MinKm:         0,
			MaxKm:         10,
			MonthlyRate:   4600,
			EffectiveFrom: "2025-07-01",
		})

		assert.NoError(t, err)
		assert.True(t, stored.IsActive)
		assert.Equal(t, "4600.00", resp.MonthlyRate)
		assert.Nil(t, resp.EffectiveTo)
	})

	t.Run("rejects inverted km band", func(t *testing.T) {
		svc := travel.NewService(&fakeTravelRepository{})

		_, err := svc.CreateTier(ctx, travel.CreateTierRequest{
			TransportMode: travel.ModeCar,
			MinKm:         10,
			MaxKm:         10,
			MonthlyRate:   8000,
			EffectiveFrom: "2025-07-01",
		})

		assert.ErrorIs(t, err, travelerrors.ErrInvalidKmBand)
	})

	t.Run("rejects effective_to before effective_from", func(t *testing.T) {
		svc := travel.NewService(&fakeTravelRepository{})
		to := "2025-06-30"

		_, err := svc.CreateTier(ctx, travel.CreateTierRequest{
			TransportMode: travel.ModeCar,
			MinKm:         0,
			MaxKm:         10,
			MonthlyRate:   8000,
			EffectiveFrom: "2025-07-01",
			EffectiveTo:   &to,
		})

		assert.ErrorIs(t, err, travelerrors.ErrInvalidEffectiveTo)
	})
}

func TestTravelService_ListTiers(t *testing.T) {
	on := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	repo := &fakeTravelRepository{
		listActiveTiersFn: func(ctx context.Context, got time.Time) ([]travel.AllowanceTier, error) {
			assert.Equal(t, on, got)
			return []travel.AllowanceTier{{
				TransportMode: travel.ModePublic,
				MinKm:         decimal.Zero,
				MaxKm:         decimal.NewFromInt(50),
				MonthlyRate:   decimal.NewFromInt(3000),
				EffectiveFrom: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
				IsActive:      true,
			}}, nil
		},
	}
	svc := travel.NewService(repo)

	resp, err := svc.ListTiers(context.Background(), on)

	assert.NoError(t, err)
	assert.Len(t, resp, 1)
	assert.Equal(t, "3000.00", resp[0].MonthlyRate)
	assert.Equal(t, "2025-07-01", resp[0].EffectiveFrom)
}
