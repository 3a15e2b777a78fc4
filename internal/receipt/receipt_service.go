package receipt

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-payops/internal/events"
	"go-payops/internal/messaging/kafka"
	"go-payops/internal/period"
	receipterrors "go-payops/internal/receipt/errors"
	"go-payops/internal/shared/apperror"
	"go-payops/internal/shared/contextutil"
)

//go:generate mockgen -source=receipt_service.go -destination=mock/receipt_service_mock.go -package=mock

type Service interface {
	// Send dispatches the period's receipts to the e-signature collaborator
	// through the transactional outbox and moves the period to SENDING.
	Send(ctx context.Context, actorID, periodID string, req SendRequest) (*SendResult, error)
	ListByPeriod(ctx context.Context, periodID string) ([]ReceiptResponse, error)
	// ApplySignResult records one dispatch outcome and, once every receipt
	// has reached a terminal state, resolves the period to SENT, PARTIAL
	// or FAILED.
	ApplySignResult(ctx context.Context, event events.ReceiptSignResultEvent) error
}

type service struct {
	db         *sql.DB
	repo       Repository
	periodRepo period.Repository
	outbox     kafka.OutboxRepository
	logger     *zap.Logger
}

func NewService(db *sql.DB, repo Repository, periodRepo period.Repository, outbox kafka.OutboxRepository) Service {
	return &service{
		db:         db,
		repo:       repo,
		periodRepo: periodRepo,
		outbox:     outbox,
		logger:     zap.L().Named("receipt_service"),
	}
}

func (s *service) Send(ctx context.Context, actorID, periodID string, req SendRequest) (*SendResult, error) {
	if _, err := uuid.Parse(periodID); err != nil {
		return nil, receipterrors.ErrInvalidPeriodID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to begin transaction", 500)
	}
	defer tx.Rollback()

	periodRepo := s.periodRepo.WithTx(tx)
	receiptRepo := s.repo.WithTx(tx)
	outbox := s.outbox.WithTx(tx)

	p, err := periodRepo.FindByID(ctx, periodID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, receipterrors.ErrPeriodNotFound
	}
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to load period", 500)
	}
	if !period.AllowsSend(p.Status) {
		return nil, receipterrors.ErrSendNotAllowed
	}

	statuses := []string{StatusReady, StatusFailed}
	if req.FailedOnly {
		statuses = []string{StatusFailed}
	}
	receipts, err := receiptRepo.ListByPeriodAndStatus(ctx, p.ID, statuses)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to load receipts", 500)
	}
	if len(receipts) == 0 {
		return nil, receipterrors.ErrNothingToSend
	}

	requestID := contextutil.GetRequestID(ctx)
	now := time.Now().UTC()
	for _, rec := range receipts {
		event := events.ReceiptSignRequestedEvent{
			EventType:   "receipt_sign_requested",
			ReceiptID:   rec.ID.String(),
			PeriodID:    p.ID.String(),
			PayrollName: rec.PayrollName,
			Receipt:     json.RawMessage(rec.ReceiptJSON),
			RequestedBy: actorID,
			OccurredAt:  now,
		}
		payload, err := json.Marshal(event)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to encode sign request", 500)
		}

		if err := outbox.Create(ctx, kafka.OutboxEvent{
			ID:            uuid.New().String(),
			RequestID:     requestID,
			AggregateType: "payroll_receipt",
			AggregateID:   rec.ID.String(),
			EventType:     event.EventType,
			Topic:         events.ReceiptSignRequestedTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to enqueue sign request", 500)
		}

		if err := receiptRepo.UpdateStatus(ctx, rec.ID.String(), StatusEnvelopeCreated, nil, nil); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to update receipt status", 500)
		}
	}

	p.Status = period.StatusSending
	if err := periodRepo.Update(ctx, p); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to update period status", 500)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to commit receipt dispatch", 500)
	}

	s.logger.Info("receipts dispatched",
		zap.String("period", p.PeriodKey()),
		zap.Int("count", len(receipts)),
		zap.Bool("failed_only", req.FailedOnly))

	return &SendResult{
		PeriodID:        p.ID.String(),
		PeriodStatus:    p.Status,
		DispatchedCount: len(receipts),
	}, nil
}

func (s *service) ListByPeriod(ctx context.Context, periodID string) ([]ReceiptResponse, error) {
	parsed, err := uuid.Parse(periodID)
	if err != nil {
		return nil, receipterrors.ErrInvalidPeriodID
	}

	receipts, err := s.repo.ListByPeriod(ctx, parsed)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to load receipts", 500)
	}

	out := make([]ReceiptResponse, 0, len(receipts))
	for _, rec := range receipts {
		var userID *string
		if rec.UserID != nil {
			id := rec.UserID.String()
			userID = &id
		}
		out = append(out, ReceiptResponse{
			ID:            rec.ID.String(),
			PayrollName:   rec.PayrollName,
			UserID:        userID,
			Status:        rec.Status,
			EnvelopeID:    rec.EnvelopeID,
			FailureReason: rec.FailureReason,
			Body:          string(rec.ReceiptJSON),
		})
	}
	return out, nil
}

func (s *service) ApplySignResult(ctx context.Context, event events.ReceiptSignResultEvent) error {
	rec, err := s.repo.FindByID(ctx, event.ReceiptID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return receipterrors.ErrReceiptNotFound
	}
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to load receipt", 500)
	}

	var envelopeID, reason *string
	if event.EnvelopeID != "" {
		envelopeID = &event.EnvelopeID
	}
	if event.Reason != "" {
		reason = &event.Reason
	}

	switch event.Status {
	case StatusSent, StatusCompleted:
		err = s.repo.UpdateStatus(ctx, rec.ID.String(), event.Status, envelopeID, nil)
	case StatusFailed:
		err = s.repo.UpdateStatus(ctx, rec.ID.String(), StatusFailed, envelopeID, reason)
	default:
		s.logger.Warn("ignoring sign result with unknown status",
			zap.String("receipt_id", event.ReceiptID),
			zap.String("status", event.Status))
		return nil
	}
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to update receipt status", 500)
	}

	return s.resolvePeriodOutcome(ctx, rec.PeriodID)
}

// resolvePeriodOutcome moves a SENDING period to its terminal dispatch state
// once no receipt remains in flight. Exactly one of SENT, PARTIAL or FAILED
// applies.
func (s *service) resolvePeriodOutcome(ctx context.Context, periodID uuid.UUID) error {
	p, err := s.periodRepo.FindByID(ctx, periodID.String())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to load period", 500)
	}
	if p.Status != period.StatusSending {
		return nil
	}

	receipts, err := s.repo.ListByPeriod(ctx, periodID)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to load receipts", 500)
	}

	var completed, failed int
	for _, rec := range receipts {
		switch rec.Status {
		case StatusCompleted:
			completed++
		case StatusFailed:
			failed++
		default:
			// Something is still in flight.
			return nil
		}
	}

	next := period.StatusSent
	switch {
	case failed > 0 && completed > 0:
		next = period.StatusPartial
	case failed > 0:
		next = period.StatusFailed
	}
	if !period.CanTransition(p.Status, next) {
		return nil
	}

	p.Status = next
	if err := s.periodRepo.Update(ctx, p); err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to update period status", 500)
	}

	s.logger.Info("period dispatch resolved",
		zap.String("period", p.PeriodKey()),
		zap.String("status", next),
		zap.Int("completed", completed),
		zap.Int("failed", failed))
	return nil
}
