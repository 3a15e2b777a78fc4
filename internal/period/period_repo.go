package period

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=period_repo.go -destination=mock/period_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, p *PayrollPeriod) error
	FindByID(ctx context.Context, id string) (*PayrollPeriod, error)
	FindByStart(ctx context.Context, start time.Time) (*PayrollPeriod, error)
	FindLatestBefore(ctx context.Context, start time.Time) (*PayrollPeriod, error)
	List(ctx context.Context) ([]PayrollPeriod, error)
	Update(ctx context.Context, p *PayrollPeriod) error
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
// period and its seeded inputs commit or roll back as one unit.
func (r *repository) conn() *gorm.DB {
	if r.tx == nil {
		return r.db
	}
	session := r.db.Session(&gorm.Session{NewDB: true})
	session.Statement.ConnPool = r.tx
	return session
}

func (r *repository) Create(ctx context.Context, p *PayrollPeriod) error {
	return r.conn().WithContext(ctx).Create(p).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*PayrollPeriod, error) {
	var p PayrollPeriod
	err := r.conn().WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) FindByStart(ctx context.Context, start time.Time) (*PayrollPeriod, error) {
	var p PayrollPeriod
	err := r.conn().WithContext(ctx).First(&p, "period_start = ?", start).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindLatestBefore returns the most recent period starting before the given
// date, or nil. The first period of an employee carries a zero balance in.
func (r *repository) FindLatestBefore(ctx context.Context, start time.Time) (*PayrollPeriod, error) {
	var p PayrollPeriod
	err := r.conn().WithContext(ctx).
		Where("period_start < ?", start).
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

func (r *repository) List(ctx context.Context) ([]PayrollPeriod, error) {
	var periods []PayrollPeriod
	err := r.conn().WithContext(ctx).
		Order("period_start DESC").
		Find(&periods).Error
	return periods, err
}

func (r *repository) Update(ctx context.Context, p *PayrollPeriod) error {
	return r.conn().WithContext(ctx).Save(p).Error
}
