package period

import (
	"context"
	"database/sql"
	"time"

	"go-payops/internal/payinput"
	perioderrors "go-payops/internal/period/errors"

	"github.com/google/uuid"
)

//go:generate mockgen -source=period_service.go -destination=mock/period_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreatePeriodRequest) (PeriodResponse, error)
	CreateCarryForward(ctx context.Context, req CarryForwardRequest) (PeriodResponse, error)
	GetByID(ctx context.Context, id string) (PeriodResponse, error)
	GetAll(ctx context.Context) ([]PeriodResponse, error)
	Approve(ctx context.Context, actorID, id string, req ApprovePeriodRequest) (PeriodResponse, error)
	Lock(ctx context.Context, id string) (PeriodResponse, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	inputRepo payinput.Repository
}

func NewService(db *sql.DB, repo Repository, inputRepo payinput.Repository) Service {
	return &service{db: db, repo: repo, inputRepo: inputRepo}
}

// monthBounds derives the calendar-month boundary from a "YYYY-MM" key.
func monthBounds(periodKey string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", periodKey)
	if err != nil {
		return time.Time{}, time.Time{}, perioderrors.ErrInvalidPeriodKey
	}
	end := start.AddDate(0, 1, -1)
	return start, end, nil
}

func (s *service) Create(ctx context.Context, req CreatePeriodRequest) (PeriodResponse, error) {
	start, end, err := monthBounds(req.PeriodKey)
	if err != nil {
		return PeriodResponse{}, err
	}

	sourceType := req.SourceType
	if sourceType == "" {
		sourceType = SourceManual
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PeriodResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	existing, err := qtx.FindByStart(ctx, start)
	if err != nil {
		return PeriodResponse{}, err
	}
	if existing != nil {
		return PeriodResponse{}, perioderrors.ErrPeriodExists
	}

	p := &PayrollPeriod{
		ID:          uuid.New(),
		PeriodStart: start,
		PeriodEnd:   end,
		Status:      StatusDraft,
		SourceType:  sourceType,
	}
	if err := qtx.Create(ctx, p); err != nil {
		return PeriodResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PeriodResponse{}, err
	}

	return mapToResponse(*p), nil
}

// CreateCarryForward opens a new period pre-seeded with the source period's
// input rows. Rows are reproduced verbatim, override flags included, so
// precedence carries over unchanged.
func (s *service) CreateCarryForward(ctx context.Context, req CarryForwardRequest) (PeriodResponse, error) {
	start, end, err := monthBounds(req.PeriodKey)
	if err != nil {
		return PeriodResponse{}, err
	}

	sourceID, err := uuid.Parse(req.SourcePeriodID)
	if err != nil {
		return PeriodResponse{}, perioderrors.ErrInvalidPeriodID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PeriodResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	inputTx := s.inputRepo.WithTx(tx)

	if _, err := qtx.FindByID(ctx, sourceID.String()); err != nil {
		return PeriodResponse{}, perioderrors.ErrPeriodNotFound
	}

	existing, err := qtx.FindByStart(ctx, start)
	if err != nil {
		return PeriodResponse{}, err
	}
	if existing != nil {
		return PeriodResponse{}, perioderrors.ErrPeriodExists
	}

	rows, err := inputTx.ListByPeriod(ctx, sourceID)
	if err != nil {
		return PeriodResponse{}, err
	}
	if len(rows) == 0 {
		return PeriodResponse{}, perioderrors.ErrCarryForwardSourceEmpty
	}

	p := &PayrollPeriod{
		ID:          uuid.New(),
		PeriodStart: start,
		PeriodEnd:   end,
		Status:      StatusDraft,
		SourceType:  SourceCarryForward,
	}
	if err := qtx.Create(ctx, p); err != nil {
		return PeriodResponse{}, err
	}

	for _, row := range rows {
		copied := row
		copied.ID = uuid.New()
		copied.PeriodID = p.ID
		copied.SourceMethod = payinput.SourceCarryForward
		if err := inputTx.Upsert(ctx, &copied); err != nil {
			return PeriodResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return PeriodResponse{}, err
	}

	return mapToResponse(*p), nil
}

func (s *service) GetByID(ctx context.Context, id string) (PeriodResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return PeriodResponse{}, perioderrors.ErrPeriodNotFound
	}
	return mapToResponse(*p), nil
}

func (s *service) GetAll(ctx context.Context) ([]PeriodResponse, error) {
	periods, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]PeriodResponse, len(periods))
	for i, p := range periods {
		resp[i] = mapToResponse(p)
	}
	return resp, nil
}

func (s *service) Approve(ctx context.Context, actorID, id string, req ApprovePeriodRequest) (PeriodResponse, error) {
	approver, err := uuid.Parse(actorID)
	if err != nil {
		return PeriodResponse{}, perioderrors.ErrInvalidActorID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PeriodResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	p, err := qtx.FindByID(ctx, id)
	if err != nil {
		return PeriodResponse{}, perioderrors.ErrPeriodNotFound
	}

	if p.Status != StatusCalculated {
		return PeriodResponse{}, perioderrors.ErrApproveOnlyCalculated
	}

	now := time.Now().UTC()
	p.Status = StatusApproved
	p.ApprovedBy = &approver
	p.ApprovalComment = req.Comment
	p.ApprovedAt = &now

	if err := qtx.Update(ctx, p); err != nil {
		return PeriodResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PeriodResponse{}, err
	}

	return mapToResponse(*p), nil
}

func (s *service) Lock(ctx context.Context, id string) (PeriodResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PeriodResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	p, err := qtx.FindByID(ctx, id)
	if err != nil {
		return PeriodResponse{}, perioderrors.ErrPeriodNotFound
	}

	if !CanTransition(p.Status, StatusLocked) {
		return PeriodResponse{}, perioderrors.ErrInvalidStatusTransition
	}

	now := time.Now().UTC()
	p.Status = StatusLocked
	p.LockedAt = &now

	if err := qtx.Update(ctx, p); err != nil {
		return PeriodResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PeriodResponse{}, err
	}

	return mapToResponse(*p), nil
}

func mapToResponse(p PayrollPeriod) PeriodResponse {
	resp := PeriodResponse{
		ID:          p.ID.String(),
		PeriodKey:   p.PeriodKey(),
		PeriodStart: p.PeriodStart.Format("2006-01-02"),
		PeriodEnd:   p.PeriodEnd.Format("2006-01-02"),
		Status:      p.Status,
		SourceType:  p.SourceType,
	}
	if len(p.SummaryJSON) > 0 {
		v := string(p.SummaryJSON)
		resp.Summary = &v
	}
	if p.ApprovedBy != nil {
		v := p.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	resp.ApprovalComment = p.ApprovalComment
	return resp
}
