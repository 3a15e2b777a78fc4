package receipt

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=receipt_repo.go -destination=mock/receipt_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	ListByPeriod(ctx context.Context, periodID uuid.UUID) ([]PayrollReceipt, error)
	ListByPeriodAndStatus(ctx context.Context, periodID uuid.UUID, statuses []string) ([]PayrollReceipt, error)
	FindByID(ctx context.Context, id string) (*PayrollReceipt, error)
	UpdateStatus(ctx context.Context, id string, status string, envelopeID, failureReason *string) error
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

// conn routes statements through the bound *sql.Tx when one is present so
// receipt status changes commit or roll back with the caller's transaction.
func (r *repository) conn() *gorm.DB {
	if r.tx == nil {
		return r.db
	}
	session := r.db.Session(&gorm.Session{NewDB: true})
	session.Statement.ConnPool = r.tx
	return session
}

func (r *repository) ListByPeriod(ctx context.Context, periodID uuid.UUID) ([]PayrollReceipt, error) {
	var receipts []PayrollReceipt
	err := r.conn().WithContext(ctx).
		Where("period_id = ?", periodID).
		Order("payroll_name ASC").
		Find(&receipts).Error
	return receipts, err
}

func (r *repository) ListByPeriodAndStatus(ctx context.Context, periodID uuid.UUID, statuses []string) ([]PayrollReceipt, error) {
	var receipts []PayrollReceipt
	err := r.conn().WithContext(ctx).
		Where("period_id = ? AND status IN ?", periodID, statuses).
		Order("payroll_name ASC").
		Find(&receipts).Error
	return receipts, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*PayrollReceipt, error) {
	var receipt PayrollReceipt
	err := r.conn().WithContext(ctx).First(&receipt, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id string, status string, envelopeID, failureReason *string) error {
	updates := map[string]any{"status": status}
	if envelopeID != nil {
		updates["envelope_id"] = *envelopeID
	}
	updates["failure_reason"] = failureReason
	return r.conn().WithContext(ctx).
		Model(&PayrollReceipt{}).
		Where("id = ?", id).
		Updates(updates).Error
}
