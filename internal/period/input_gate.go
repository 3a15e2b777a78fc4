package period

import (
	"context"
	"errors"

	perioderrors "go-payops/internal/period/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InputGate enforces the period write-gate for input-mutating modules
// without those modules importing this package's service.
type InputGate struct {
	repo Repository
}

func NewInputGate(repo Repository) *InputGate {
	return &InputGate{repo: repo}
}

func (g *InputGate) CanMutateInputs(ctx context.Context, periodID uuid.UUID) error {
	p, err := g.repo.FindByID(ctx, periodID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return perioderrors.ErrPeriodNotFound
		}
		return err
	}
	if !AllowsInputMutation(p.Status) {
		return perioderrors.ErrPeriodLocked
	}
	return nil
}
