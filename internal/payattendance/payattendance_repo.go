package payattendance

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=payattendance_repo.go -destination=mock/payattendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Upsert(ctx context.Context, entry *AttendanceEntry) error
	// PresentDays counts PRESENT entries in the range; recorded reports
	// whether any entry exists at all for the user in that range.
	PresentDays(ctx context.Context, userID uuid.UUID, from, to time.Time) (present int, recorded bool, err error)
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

// conn routes statements through the bound *sql.Tx when one is present so an
// attendance import lands atomically.
func (r *repository) conn() *gorm.DB {
	if r.tx == nil {
		return r.db
	}
	session := r.db.Session(&gorm.Session{NewDB: true})
	session.Statement.ConnPool = r.tx
	return session
}

func (r *repository) Upsert(ctx context.Context, entry *AttendanceEntry) error {
	return r.conn().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "entry_date"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
		}).
		Create(entry).Error
}

func (r *repository) PresentDays(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, bool, error) {
	var total int64
	err := r.conn().WithContext(ctx).
		Model(&AttendanceEntry{}).
		Where("user_id = ? AND entry_date BETWEEN ? AND ?", userID, from, to).
		Count(&total).Error
	if err != nil {
		return 0, false, err
	}
	if total == 0 {
		return 0, false, nil
	}

	var present int64
	err = r.conn().WithContext(ctx).
		Model(&AttendanceEntry{}).
		Where("user_id = ? AND entry_date BETWEEN ? AND ? AND status = ?", userID, from, to, StatusPresent).
		Count(&present).Error
	if err != nil {
		return 0, false, err
	}
	return int(present), true, nil
}
