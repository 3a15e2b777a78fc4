package engine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-payops/internal/payinput"
	"go-payops/internal/period"
	"go-payops/internal/receipt"
	"go-payops/internal/revision"
	"go-payops/internal/salaryhead"
	"go-payops/internal/taxyear"
)

//go:generate mockgen -source=engine_repo.go -destination=mock/engine_repo_mock.go -package=mock

// Repository is the engine's aggregate data access. The recompute pass
// touches several modules' tables inside one transaction, so the engine
// owns a single repository spanning them instead of juggling per-module
// repositories with separate transaction handles.
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	FindPeriod(ctx context.Context, id string) (*period.PayrollPeriod, error)
	FindPreviousPeriod(ctx context.Context, before time.Time) (*period.PayrollPeriod, error)
	UpdatePeriod(ctx context.Context, p *period.PayrollPeriod) error

	ListInputs(ctx context.Context, periodID uuid.UUID) ([]payinput.PayrollInputValue, error)
	UpsertDerivedInput(ctx context.Context, row *payinput.PayrollInputValue) error

	ActiveFinancialYear(ctx context.Context, on time.Time) (*taxyear.FinancialYear, error)
	LatestRevision(ctx context.Context, userID uuid.UUID, onOrBefore time.Time) (*revision.SalaryRevision, error)
	ActiveSalaryHeads(ctx context.Context) ([]salaryhead.SalaryHead, error)

	BalanceForName(ctx context.Context, periodID uuid.UUID, payrollName string) (decimal.Decimal, bool, error)
	ListComputed(ctx context.Context, periodID uuid.UUID) ([]PayrollComputedValue, error)
	ReplaceSnapshot(ctx context.Context, periodID uuid.UUID, values []PayrollComputedValue, receipts []receipt.PayrollReceipt) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

// conn returns the gorm handle, routed through the bound *sql.Tx when one
// is present so every statement of the recompute commits or rolls back as
// a unit.
func (r *repository) conn() *gorm.DB {
	if r.tx == nil {
		return r.db
	}
	session := r.db.Session(&gorm.Session{NewDB: true})
	session.Statement.ConnPool = r.tx
	return session
}

func (r *repository) FindPeriod(ctx context.Context, id string) (*period.PayrollPeriod, error) {
	var p period.PayrollPeriod
	err := r.conn().WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) FindPreviousPeriod(ctx context.Context, before time.Time) (*period.PayrollPeriod, error) {
	var p period.PayrollPeriod
	err := r.conn().WithContext(ctx).
		Where("period_start < ?", before).
		Order("period_start DESC").
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) UpdatePeriod(ctx context.Context, p *period.PayrollPeriod) error {
	return r.conn().WithContext(ctx).Save(p).Error
}

func (r *repository) ListInputs(ctx context.Context, periodID uuid.UUID) ([]payinput.PayrollInputValue, error) {
	var rows []payinput.PayrollInputValue
	err := r.conn().WithContext(ctx).
		Where("period_id = ?", periodID).
		Order("payroll_name ASC, component_key ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) UpsertDerivedInput(ctx context.Context, row *payinput.PayrollInputValue) error {
	return r.conn().WithContext(ctx).
		Where("period_id = ? AND payroll_name = ? AND component_key = ?", row.PeriodID, row.PayrollName, row.ComponentKey).
		Assign(map[string]any{
			"amount":          row.Amount,
			"source_method":   row.SourceMethod,
			"provenance_json": row.ProvenanceJSON,
		}).
		FirstOrCreate(row).Error
}

func (r *repository) ActiveFinancialYear(ctx context.Context, on time.Time) (*taxyear.FinancialYear, error) {
	var fy taxyear.FinancialYear
	err := r.conn().WithContext(ctx).
		Preload("Brackets", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("is_active = ? AND effective_from <= ? AND (effective_to IS NULL OR effective_to >= ?)", true, on, on).
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

func (r *repository) LatestRevision(ctx context.Context, userID uuid.UUID, onOrBefore time.Time) (*revision.SalaryRevision, error) {
	var rev revision.SalaryRevision
	err := r.conn().WithContext(ctx).
		Preload("Lines").
		Where("user_id = ? AND effective_from <= ?", userID, onOrBefore).
		Order("effective_from DESC").
		First(&rev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

func (r *repository) ActiveSalaryHeads(ctx context.Context) ([]salaryhead.SalaryHead, error) {
	var heads []salaryhead.SalaryHead
	err := r.conn().WithContext(ctx).
		Where("is_active = ?", true).
		Order("code ASC").
		Find(&heads).Error
	return heads, err
}

func (r *repository) BalanceForName(ctx context.Context, periodID uuid.UUID, payrollName string) (decimal.Decimal, bool, error) {
	var row PayrollComputedValue
	err := r.conn().WithContext(ctx).
		Where("period_id = ? AND payroll_name = ? AND metric_key = ?", periodID, payrollName, MetricBalance).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	return row.Amount, true, nil
}

func (r *repository) ListComputed(ctx context.Context, periodID uuid.UUID) ([]PayrollComputedValue, error) {
	var rows []PayrollComputedValue
	err := r.conn().WithContext(ctx).
		Where("period_id = ?", periodID).
		Order("payroll_name ASC, metric_key ASC").
		Find(&rows).Error
	return rows, err
}

// ReplaceSnapshot swaps the period's derived state wholesale: computed
// values and receipts are deleted then re-inserted. Partial updates are
// never issued, which keeps a failed recompute from leaving a mixed
// snapshot behind.
func (r *repository) ReplaceSnapshot(ctx context.Context, periodID uuid.UUID, values []PayrollComputedValue, receipts []receipt.PayrollReceipt) error {
	conn := r.conn().WithContext(ctx)
	if err := conn.Where("period_id = ?", periodID).Delete(&PayrollComputedValue{}).Error; err != nil {
		return err
	}
	if err := conn.Where("period_id = ?", periodID).Delete(&receipt.PayrollReceipt{}).Error; err != nil {
		return err
	}
	if len(values) > 0 {
		if err := conn.CreateInBatches(values, 200).Error; err != nil {
			return err
		}
	}
	if len(receipts) > 0 {
		if err := conn.CreateInBatches(receipts, 200).Error; err != nil {
			return err
		}
	}
	return nil
}
