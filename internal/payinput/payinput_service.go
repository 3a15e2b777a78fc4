package payinput

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"

	payinputerrors "go-payops/internal/payinput/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PeriodGate answers whether a period still accepts input mutation. The
// period module provides the implementation; locked periods reject every
// import, including expense and attendance-derived rows.
type PeriodGate interface {
	CanMutateInputs(ctx context.Context, periodID uuid.UUID) error
}

//go:generate mockgen -source=payinput_service.go -destination=mock/payinput_service_mock.go -package=mock
type Service interface {
	Import(ctx context.Context, periodID string, req ImportRequest) (ImportResultResponse, error)
	ImportExpenses(ctx context.Context, periodID string, req ImportExpensesRequest) (ImportResultResponse, error)
	SetOverride(ctx context.Context, periodID string, req OverrideRequest) (InputValueResponse, error)
	ListByPeriod(ctx context.Context, periodID string) ([]InputValueResponse, error)
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
		return ImportResultResponse{}, payinputerrors.ErrInvalidPeriodID
	}

	if err := s.gate.CanMutateInputs(ctx, pid); err != nil {
		return ImportResultResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportResultResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	// Duplicate (name, key) tuples in one batch collapse into a single slot,
	// summing amounts, so the uniqueness invariant holds.
	type slot struct {
		name, key string
	}
	amounts := make(map[slot]decimal.Decimal)
	provenance := make(map[slot]Provenance)
	order := make([]slot, 0, len(req.Rows))

	for _, row := range req.Rows {
		sl := slot{name: row.PayrollName, key: row.ComponentKey}
		if _, seen := amounts[sl]; !seen {
			order = append(order, sl)
			provenance[sl] = Provenance{
				SourceSheet:    row.SourceSheet,
				SourceCell:     row.SourceCell,
				SourcePriority: row.SourcePriority,
			}
		}
		amounts[sl] = amounts[sl].Add(decimal.NewFromFloat(row.Amount))
	}

	for _, sl := range order {
		prov, _ := json.Marshal(provenance[sl])
		if err := qtx.Upsert(ctx, &PayrollInputValue{
			ID:             uuid.New(),
			PeriodID:       pid,
			PayrollName:    sl.name,
			ComponentKey:   sl.key,
			Amount:         amounts[sl],
			SourceMethod:   req.SourceMethod,
			IsOverride:     false,
			ProvenanceJSON: prov,
		}); err != nil {
			return ImportResultResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return ImportResultResponse{}, err
	}

	return ImportResultResponse{PeriodID: periodID, RowCount: len(order)}, nil
}

func (s *service) ImportExpenses(ctx context.Context, periodID string, req ImportExpensesRequest) (ImportResultResponse, error) {
	pid, err := uuid.Parse(periodID)
	if err != nil {
		return ImportResultResponse{}, payinputerrors.ErrInvalidPeriodID
	}

	if err := s.gate.CanMutateInputs(ctx, pid); err != nil {
		return ImportResultResponse{}, err
	}

	totals := make(map[string]decimal.Decimal)
	categories := make(map[string]string)
	for _, e := range req.Entries {
		if e.Amount < 0 {
			return ImportResultResponse{}, payinputerrors.ErrNegativeExpense
		}
		totals[e.PayrollName] = totals[e.PayrollName].Add(decimal.NewFromFloat(e.Amount))
		if categories[e.PayrollName] == "" {
			categories[e.PayrollName] = e.CategoryKey
		} else {
			categories[e.PayrollName] += "," + e.CategoryKey
		}
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportResultResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	for _, name := range names {
		prov, _ := json.Marshal(Provenance{Categories: categories[name]})
		if err := qtx.Upsert(ctx, &PayrollInputValue{
			ID:             uuid.New(),
			PeriodID:       pid,
			PayrollName:    name,
			ComponentKey:   KeyExpenseReimbursement,
			Amount:         totals[name],
			SourceMethod:   SourceWorkbook,
			IsOverride:     false,
			ProvenanceJSON: prov,
		}); err != nil {
			return ImportResultResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return ImportResultResponse{}, err
	}

	return ImportResultResponse{PeriodID: periodID, RowCount: len(names)}, nil
}

// SetOverride records a human-entered value. Override rows win over revision
// defaults and over engine-derived values on every subsequent recompute.
func (s *service) SetOverride(ctx context.Context, periodID string, req OverrideRequest) (InputValueResponse, error) {
	pid, err := uuid.Parse(periodID)
	if err != nil {
		return InputValueResponse{}, payinputerrors.ErrInvalidPeriodID
	}

	if err := s.gate.CanMutateInputs(ctx, pid); err != nil {
		return InputValueResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return InputValueResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	row := &PayrollInputValue{
		ID:           uuid.New(),
		PeriodID:     pid,
		PayrollName:  req.PayrollName,
		ComponentKey: req.ComponentKey,
		Amount:       decimal.NewFromFloat(req.Amount),
		SourceMethod: SourceManual,
		IsOverride:   true,
	}
	if err := qtx.Upsert(ctx, row); err != nil {
		return InputValueResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return InputValueResponse{}, err
	}

	return mapToResponse(*row), nil
}

func (s *service) ListByPeriod(ctx context.Context, periodID string) ([]InputValueResponse, error) {
	pid, err := uuid.Parse(periodID)
	if err != nil {
		return nil, payinputerrors.ErrInvalidPeriodID
	}

	rows, err := s.repo.ListByPeriod(ctx, pid)
	if err != nil {
		return nil, err
	}

	resp := make([]InputValueResponse, len(rows))
	for i, row := range rows {
		resp[i] = mapToResponse(row)
	}
	return resp, nil
}

func mapToResponse(row PayrollInputValue) InputValueResponse {
	resp := InputValueResponse{
		ID:           row.ID.String(),
		PeriodID:     row.PeriodID.String(),
		PayrollName:  row.PayrollName,
		ComponentKey: row.ComponentKey,
		Amount:       row.Amount.StringFixed(2),
		SourceMethod: row.SourceMethod,
		IsOverride:   row.IsOverride,
	}
	if len(row.ProvenanceJSON) > 0 {
		v := string(row.ProvenanceJSON)
		resp.Provenance = &v
	}
	return resp
}
