package payattendance

import (
	"context"
	"database/sql"
	"time"

	payattendanceerrors "go-payops/internal/payattendance/errors"

	"github.com/google/uuid"
)

// PeriodGate answers whether a period still accepts input mutation. Locked
// periods reject attendance imports the same way they reject sheet imports.
type PeriodGate interface {
	CanMutateInputs(ctx context.Context, periodID uuid.UUID) error
}

//go:generate mockgen -source=payattendance_service.go -destination=mock/payattendance_service_mock.go -package=mock
type Service interface {
	Import(ctx context.Context, periodID string, req ImportRequest) (ImportResultResponse, error)
}

type service struct {
	db   *sql.DB
	repo Repository
	gate PeriodGate
}

func NewService(db *sql.DB, repo Repository, gate PeriodGate) Service {
	return &service{db: db, repo: repo, gate: gate}
}

func (s *service) Import(ctx context.Context, periodID string, req ImportRequest) (ImportResultResponse, error) {
	pid, err := uuid.Parse(periodID)
	if err != nil {
		return ImportResultResponse{}, payattendanceerrors.ErrInvalidPeriodID
	}

	if err := s.gate.CanMutateInputs(ctx, pid); err != nil {
		return ImportResultResponse{}, err
	}

	entries := make([]AttendanceEntry, 0, len(req.Entries))
	for _, in := range req.Entries {
		userID, err := uuid.Parse(in.UserID)
		if err != nil {
			return ImportResultResponse{}, payattendanceerrors.ErrInvalidUserID
		}
		date, err := time.Parse("2006-01-02", in.Date)
		if err != nil {
			return ImportResultResponse{}, payattendanceerrors.ErrInvalidDate
		}
		if in.Status != StatusPresent && in.Status != StatusAbsent {
			return ImportResultResponse{}, payattendanceerrors.ErrUnknownStatus
		}
		entries = append(entries, AttendanceEntry{
			ID:        uuid.New(),
			UserID:    userID,
			EntryDate: date,
			Status:    in.Status,
		})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportResultResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	for i := range entries {
		if err := qtx.Upsert(ctx, &entries[i]); err != nil {
			return ImportResultResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return ImportResultResponse{}, err
	}
	return ImportResultResponse{Imported: len(entries)}, nil
}
