package revision

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	revisionerrors "go-payops/internal/revision/errors"
	"go-payops/internal/shared/apperror"
)

//go:generate mockgen -source=revision_service.go -destination=mock/revision_service_mock.go -package=mock

type Service interface {
	Create(ctx context.Context, req CreateRevisionRequest) (RevisionResponse, error)
	ListByUser(ctx context.Context, userID string) ([]RevisionResponse, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateRevisionRequest) (RevisionResponse, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return RevisionResponse{}, revisionerrors.ErrInvalidUserID
	}
	effectiveFrom, err := time.Parse("2006-01-02", req.EffectiveFrom)
	if err != nil {
		return RevisionResponse{}, revisionerrors.ErrInvalidEffectiveFrom
	}

	rev := SalaryRevision{
		UserID:        userID,
		EffectiveFrom: effectiveFrom,
		Note:          req.Note,
	}
	for _, line := range req.Lines {
		amount := decimal.NewFromFloat(line.Amount)
		if amount.IsNegative() {
			return RevisionResponse{}, revisionerrors.ErrNegativeLineAmount
		}
		rev.Lines = append(rev.Lines, SalaryRevisionLine{
			HeadCode: line.HeadCode,
			Amount:   amount,
		})
	}

	if err := s.repo.Create(ctx, &rev); err != nil {
		return RevisionResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to create salary revision", 500)
	}
	return toRevisionResponse(rev), nil
}

func (s *service) ListByUser(ctx context.Context, userID string) ([]RevisionResponse, error) {
	parsed, err := uuid.Parse(userID)
	if err != nil {
		return nil, revisionerrors.ErrInvalidUserID
	}

	revs, err := s.repo.ListByUser(ctx, parsed)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to list salary revisions", 500)
	}
	out := make([]RevisionResponse, 0, len(revs))
	for _, rev := range revs {
		out = append(out, toRevisionResponse(rev))
	}
	return out, nil
}

func toRevisionResponse(rev SalaryRevision) RevisionResponse {
	lines := make([]RevisionLineResponse, 0, len(rev.Lines))
	for _, line := range rev.Lines {
		lines = append(lines, RevisionLineResponse{
			HeadCode: line.HeadCode,
			Amount:   line.Amount.StringFixed(2),
		})
	}
	return RevisionResponse{
		ID:            rev.ID.String(),
		UserID:        rev.UserID.String(),
		EffectiveFrom: rev.EffectiveFrom.Format("2006-01-02"),
		Note:          rev.Note,
		Lines:         lines,
	}
}
