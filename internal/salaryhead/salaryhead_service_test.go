package salaryhead_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"go-payops/internal/salaryhead"
	salaryheaderrors "go-payops/internal/salaryhead/errors"
)

type fakeHeadRepository struct {
	createFn     func(ctx context.Context, head *salaryhead.SalaryHead) error
	listActiveFn func(ctx context.Context) ([]salaryhead.SalaryHead, error)
	findByCodeFn func(ctx context.Context, code string) (*salaryhead.SalaryHead, error)
}

func (f *fakeHeadRepository) Create(ctx context.Context, head *salaryhead.SalaryHead) error {
	if f.createFn != nil {
		return f.createFn(ctx, head)
	}
	return nil
}

func (f *fakeHeadRepository) ListActive(ctx context.Context) ([]salaryhead.SalaryHead, error) {
	if f.listActiveFn != nil {
		return f.listActiveFn(ctx)
	}
	return nil, nil
}

func (f *fakeHeadRepository) FindByCode(ctx context.Context, code string) (*salaryhead.SalaryHead, error) {
	if f.findByCodeFn != nil {
		return f.findByCodeFn(ctx, code)
	}
	return nil, gorm.ErrRecordNotFound
}

func TestHeadService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an active head", func(t *testing.T) {
		var stored *salaryhead.SalaryHead
		repo := &fakeHeadRepository{
			createFn: func(ctx context.Context, head *salaryhead.SalaryHead) error {
				stored = head
				return nil
			},
		}
		svc := salaryhead.NewService(repo)

		resp, err := svc.Create(ctx, salaryhead.CreateHeadRequest{
			Code:      "OVERTIME",
			Name:      "Overtime",
			Type:      salaryhead.TypeEarning,
			IsTaxable: true,
		})

		assert.NoError(t, err)
		assert.True(t, stored.IsActive)
		assert.Equal(t, "OVERTIME", resp.Code)
		assert.True(t, resp.IsTaxable)
	})

	t.Run("rejects unknown head type", func(t *testing.T) {
		svc := salaryhead.NewService(&fakeHeadRepository{})

		_, err := svc.Create(ctx, salaryhead.CreateHeadRequest{
			Code: "OVERTIME", Name: "Overtime", Type: "TRANSFER",
		})

		assert.ErrorIs(t, err, salaryheaderrors.ErrInvalidHeadType)
	})

	t.Run("rejects duplicate code", func(t *testing.T) {
		repo := &fakeHeadRepository{
			findByCodeFn: func(ctx context.Context, code string) (*salaryhead.SalaryHead, error) {
				return &salaryhead.SalaryHead{Code: code}, nil
			},
			createFn: func(ctx context.Context, head *salaryhead.SalaryHead) error {
				t.Fatal("duplicate code must not reach create")
				return nil
			},
		}
		svc := salaryhead.NewService(repo)

		_, err := svc.Create(ctx, salaryhead.CreateHeadRequest{
			Code: "BASIC_SALARY", Name: "Basic", Type: salaryhead.TypeEarning,
		})

		assert.ErrorIs(t, err, salaryheaderrors.ErrDuplicateCode)
	})
}
