package identity

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=identity_repo.go -destination=mock/identity_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByNormalizedName(ctx context.Context, normalized string) (*PayrollIdentityMapping, error)
	Upsert(ctx context.Context, mapping *PayrollIdentityMapping) error
	List(ctx context.Context) ([]PayrollIdentityMapping, error)
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
// mapping sync commits or rolls back as one unit.
func (r *repository) conn() *gorm.DB {
	if r.tx == nil {
		return r.db
	}
	session := r.db.Session(&gorm.Session{NewDB: true})
	session.Statement.ConnPool = r.tx
	return session
}

func (r *repository) FindByNormalizedName(ctx context.Context, normalized string) (*PayrollIdentityMapping, error) {
	var mapping PayrollIdentityMapping
	err := r.conn().WithContext(ctx).First(&mapping, "normalized_name = ?", normalized).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

func (r *repository) Upsert(ctx context.Context, mapping *PayrollIdentityMapping) error {
	return r.conn().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "normalized_name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"user_id", "status", "candidates_json", "updated_at",
			}),
		}).
		Create(mapping).Error
}

func (r *repository) List(ctx context.Context) ([]PayrollIdentityMapping, error) {
	var mappings []PayrollIdentityMapping
	err := r.conn().WithContext(ctx).
		Order("normalized_name ASC").
		Find(&mappings).Error
	return mappings, err
}
