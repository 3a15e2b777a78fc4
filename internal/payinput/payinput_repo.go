package payinput

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=payinput_repo.go -destination=mock/payinput_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Upsert(ctx context.Context, row *PayrollInputValue) error
	FindBySlot(ctx context.Context, periodID uuid.UUID, payrollName, componentKey string) (*PayrollInputValue, error)
	ListByPeriod(ctx context.Context, periodID uuid.UUID) ([]PayrollInputValue, error)
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

// conn routes statements through the bound *sql.Tx when one is present so a
// bulk import commits or rolls back as one unit.
func (r *repository) conn() *gorm.DB {
	if r.tx == nil {
		return r.db
	}
	session := r.db.Session(&gorm.Session{NewDB: true})
	session.Statement.ConnPool = r.tx
	return session
}

// Upsert writes into the (period, payrollName, componentKey) slot, keeping
// the uniqueness invariant regardless of how many imports run.
func (r *repository) Upsert(ctx context.Context, row *PayrollInputValue) error {
	return r.conn().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "period_id"}, {Name: "payroll_name"}, {Name: "component_key"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"amount", "source_method", "is_override", "provenance_json", "updated_at",
			}),
		}).
		Create(row).Error
}

func (r *repository) FindBySlot(ctx context.Context, periodID uuid.UUID, payrollName, componentKey string) (*PayrollInputValue, error) {
	var row PayrollInputValue
	err := r.conn().WithContext(ctx).
		Where("period_id = ? AND payroll_name = ? AND component_key = ?", periodID, payrollName, componentKey).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) ListByPeriod(ctx context.Context, periodID uuid.UUID) ([]PayrollInputValue, error) {
	var rows []PayrollInputValue
	err := r.conn().WithContext(ctx).
		Where("period_id = ?", periodID).
		Order("payroll_name ASC, component_key ASC").
		Find(&rows).Error
	return rows, err
}
