package travel

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AttendanceCounter is implemented by the payroll attendance module.
type AttendanceCounter interface {
	PresentDays(ctx context.Context, userID uuid.UUID, from, to time.Time) (present int, recorded bool, err error)
}

// Allowance is the derived travel reimbursement for one user and period.
type Allowance struct {
	Amount      decimal.Decimal
	TierID      uuid.UUID
	WorkingDays int
	PresentDays int
}

//go:generate mockgen -source=calculator.go -destination=mock/calculator_mock.go -package=mock
type Calculator interface {
	// ProratedAllowance resolves the applicable tier and prorates its monthly
	// rate by the present-day ratio. Returns (nil, nil) when the user has no
	// profile or no tier covers them, and the engine then derives nothing.
	ProratedAllowance(ctx context.Context, userID uuid.UUID, periodStart, periodEnd time.Time) (*Allowance, error)
}

type calculator struct {
	repo       Repository
	attendance AttendanceCounter
	holidays   []time.Time
}

func NewCalculator(repo Repository, attendance AttendanceCounter, holidays []time.Time) Calculator {
	return &calculator{repo: repo, attendance: attendance, holidays: holidays}
}

func (c *calculator) ProratedAllowance(ctx context.Context, userID uuid.UUID, periodStart, periodEnd time.Time) (*Allowance, error) {
	profile, err := c.repo.FindProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, nil
	}

	tiers, err := c.repo.ListActiveTiers(ctx, periodStart)
	if err != nil {
		return nil, err
	}

	var tier *AllowanceTier
	for i := range tiers {
		if tiers[i].Covers(profile.TransportMode, profile.DistanceKm, periodStart, periodEnd) {
			tier = &tiers[i]
			break
		}
	}
	if tier == nil {
		return nil, nil
	}

	workingDays := WorkingDays(periodStart, periodEnd, c.holidays)
	if workingDays == 0 {
		return &Allowance{Amount: decimal.Zero, TierID: tier.ID}, nil
	}

	present, recorded, err := c.attendance.PresentDays(ctx, userID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	// No attendance recorded means full attendance, not zero.
	if !recorded {
		present = workingDays
	}
	if present > workingDays {
		present = workingDays
	}

	amount := tier.MonthlyRate.
		Mul(decimal.NewFromInt(int64(present))).
		Div(decimal.NewFromInt(int64(workingDays))).
		Round(2)
	if amount.Sign() < 0 {
		amount = decimal.Zero
	}

	return &Allowance{
		Amount:      amount,
		TierID:      tier.ID,
		WorkingDays: workingDays,
		PresentDays: present,
	}, nil
}
