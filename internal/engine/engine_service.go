package engine

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	engineerrors "go-payops/internal/engine/errors"
	"go-payops/internal/formula"
	"go-payops/internal/identity"
	"go-payops/internal/payinput"
	"go-payops/internal/period"
	"go-payops/internal/receipt"
	"go-payops/internal/salaryhead"
	"go-payops/internal/shared/apperror"
	"go-payops/internal/travel"
)

const recalcLockTTL = 5 * time.Minute

//go:generate mockgen -source=engine_service.go -destination=mock/engine_service_mock.go -package=mock

type Service interface {
	// Recalculate rebuilds the full derived state of a period in one
	// transaction. Re-running it over unchanged inputs yields an identical
	// snapshot.
	Recalculate(ctx context.Context, periodID string, req RecalculateRequest) (*RecalculateResult, error)
	GetSummary(ctx context.Context, periodID string) (*Summary, error)
	ListComputed(ctx context.Context, periodID string) ([]ComputedValueResponse, error)
	ListMismatches(ctx context.Context, periodID string) ([]Mismatch, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	travel   travel.Calculator
	resolver identity.Resolver
	registry formula.Registry
	locks    *redis.Client
	flight   singleflight.Group
	holidays []time.Time
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, calc travel.Calculator, resolver identity.Resolver, registry formula.Registry, locks *redis.Client, holidays []time.Time) Service {
	return &service{
		db:       db,
		repo:     repo,
		travel:   calc,
		resolver: resolver,
		registry: registry,
		locks:    locks,
		holidays: holidays,
		logger:   zap.L().Named("engine_service"),
	}
}

func (s *service) Recalculate(ctx context.Context, periodID string, req RecalculateRequest) (*RecalculateResult, error) {
	if _, err := uuid.Parse(periodID); err != nil {
		return nil, engineerrors.ErrInvalidPeriodID
	}

	result, err, _ := s.flight.Do(periodID, func() (any, error) {
		return s.recalculate(ctx, periodID, req)
	})
	if err != nil {
		return nil, err
	}
	return result.(*RecalculateResult), nil
}

func (s *service) recalculate(ctx context.Context, periodID string, req RecalculateRequest) (*RecalculateResult, error) {
	lockKey := "payops:recalc:" + periodID
	acquired, err := s.locks.SetNX(ctx, lockKey, "1", recalcLockTTL).Result()
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeServiceUnavailable, "failed to acquire recalculation lock", 503)
	}
	if !acquired {
		return nil, engineerrors.ErrRecalculateInProgress
	}
	defer s.locks.Del(context.WithoutCancel(ctx), lockKey)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to begin transaction", 500)
	}
	defer tx.Rollback()
	repo := s.repo.WithTx(tx)

	p, err := repo.FindPeriod(ctx, periodID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to load period", 500)
	}
	if p == nil {
		return nil, engineerrors.ErrPeriodNotFound
	}
	if !period.AllowsRecompute(p.Status) {
		return nil, engineerrors.ErrRecalculateNotAllowed
	}

	tolerance := DefaultTolerance
	if req.Tolerance != nil {
		tolerance = decimal.NewFromFloat(*req.Tolerance)
	}

	inputs, err := repo.ListInputs(ctx, p.ID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to load inputs", 500)
	}
	names := bucketInputs(inputs)

	fy, err := repo.ActiveFinancialYear(ctx, p.PeriodStart)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to load financial year", 500)
	}

	heads, err := repo.ActiveSalaryHeads(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to load salary heads", 500)
	}
	env := computeEnv{
		PeriodKey:     p.PeriodKey(),
		WorkingDays:   travel.WorkingDays(p.PeriodStart, p.PeriodEnd, s.holidays),
		FinancialYear: fy,
		Heads:         indexHeads(heads),
		KnownKeys:     payinput.KnownKeys(),
		Registry:      s.registry,
	}

	prev, err := repo.FindPreviousPeriod(ctx, p.PeriodStart)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to load previous period", 500)
	}

	lineage := formula.Lineage{
		FormulaVersion: s.registry.Version,
		WorkingDays:    env.WorkingDays,
		AppliedFixes:   s.registry.Fixes,
	}
	if fy != nil {
		id := fy.ID
		lineage.FinancialYearID = &id
	}
	lineageJSON, err := json.Marshal(lineage)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to encode lineage", 500)
	}

	var (
		computations []Computation
		values       []PayrollComputedValue
		receipts     []receipt.PayrollReceipt
		notes        []Note
	)
	if fy == nil {
		notes = append(notes, Note{
			Code:    apperror.CodeConfigurationGap,
			Message: "no financial year covers " + p.PeriodKey() + "; slab tax fallback unavailable",
		})
	}
	for _, in := range names {
		res, err := s.resolver.Resolve(ctx, in.Name)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to resolve payroll name", 500)
		}
		if res.Resolved() {
			in.UserID = res.UserID
			if err := s.applyRevisionDefaults(ctx, repo, p, in); err != nil {
				return nil, err
			}
			if err := s.deriveTravel(ctx, repo, p, in); err != nil {
				return nil, err
			}
		} else {
			notes = append(notes, Note{
				Code:    apperror.CodeDataQuality,
				Message: "payroll name " + strconv.Quote(in.Name) + " is " + strings.ToLower(res.Status) + "; revision defaults and travel derivation skipped",
			})
		}

		prevBalance := decimal.Zero
		if prev != nil {
			bal, found, err := repo.BalanceForName(ctx, prev.ID, in.Name)
			if err != nil {
				return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to load prior balance", 500)
			}
			if found {
				prevBalance = bal
			}
		}

		c := computeName(*in, env, prevBalance)
		if len(c.Unclassified) > 0 {
			s.logger.Warn("unclassified input keys skipped",
				zap.String("period", p.PeriodKey()),
				zap.String("payroll_name", in.Name),
				zap.Strings("keys", c.Unclassified))
			notes = append(notes, Note{
				Code:    apperror.CodeDataQuality,
				Message: "unclassified keys for " + strconv.Quote(in.Name) + ": " + strings.Join(c.Unclassified, ", "),
			})
		}
		computations = append(computations, c)

		for _, metric := range MetricKeys() {
			values = append(values, PayrollComputedValue{
				PeriodID:       p.ID,
				PayrollName:    c.Name,
				MetricKey:      metric,
				UserID:         c.UserID,
				Amount:         metricAmount(c, metric),
				FormulaVersion: s.registry.Version,
				LineageJSON:    lineageJSON,
			})
		}

		body, err := json.Marshal(receiptBody(c))
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to encode receipt", 500)
		}
		receipts = append(receipts, receipt.PayrollReceipt{
			PeriodID:    p.ID,
			PayrollName: c.Name,
			UserID:      c.UserID,
			ReceiptJSON: body,
			Status:      receipt.StatusReady,
		})
	}

	mismatches := reconcile(p.PeriodKey(), computations, func(name string) bool {
		for _, in := range names {
			if in.Name == name {
				_, ok := in.Bucket[payinput.KeyPaid]
				return ok
			}
		}
		return false
	}, tolerance)

	summary := Summary{
		PeriodKey:     p.PeriodKey(),
		Tolerance:     tolerance,
		MismatchCount: len(mismatches),
		Mismatches:    mismatches,
		Notes:         notes,
		AppliedFixes:  s.registry.Fixes,
		ComputedAt:    time.Now().UTC(),
	}
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to encode summary", 500)
	}

	if err := repo.ReplaceSnapshot(ctx, p.ID, values, receipts); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to store computed snapshot", 500)
	}

	p.Status = period.StatusCalculated
	p.SummaryJSON = summaryJSON
	if err := repo.UpdatePeriod(ctx, p); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to update period", 500)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to commit recalculation", 500)
	}

	s.logger.Info("period recalculated",
		zap.String("period", p.PeriodKey()),
		zap.Int("payrolls", len(names)),
		zap.Int("mismatches", len(mismatches)))

	return &RecalculateResult{
		PeriodID:      p.ID.String(),
		PeriodKey:     p.PeriodKey(),
		PayrollCount:  len(names),
		ComputedCount: len(values),
		MismatchCount: len(mismatches),
		Mismatches:    mismatches,
		AppliedFixes:  s.registry.Fixes,
	}, nil
}

// applyRevisionDefaults fills bucket keys the sheet never supplied from the
// user's latest effective salary revision. Anything present in the bucket,
// override or not, wins over the revision default.
func (s *service) applyRevisionDefaults(ctx context.Context, repo Repository, p *period.PayrollPeriod, in *nameInput) error {
	rev, err := repo.LatestRevision(ctx, *in.UserID, p.PeriodStart)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to load salary revision", 500)
	}
	if rev == nil {
		return nil
	}
	for _, line := range rev.Lines {
		if _, present := in.Bucket[line.HeadCode]; present {
			continue
		}
		in.Bucket[line.HeadCode] = line.Amount
	}
	return nil
}

// deriveTravel computes the prorated travel allowance and records it as a
// DERIVED input row. A manual override on the travel slot suppresses the
// derivation entirely.
func (s *service) deriveTravel(ctx context.Context, repo Repository, p *period.PayrollPeriod, in *nameInput) error {
	if _, overridden := in.Overrides[payinput.KeyTravelReimbursement]; overridden {
		return nil
	}
	allowance, err := s.travel.ProratedAllowance(ctx, *in.UserID, p.PeriodStart, p.PeriodEnd)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to derive travel allowance", 500)
	}
	if allowance == nil {
		return nil
	}

	provenance, err := json.Marshal(payinput.Provenance{
		TierID:      allowance.TierID.String(),
		PresentDays: allowance.PresentDays,
		WorkingDays: allowance.WorkingDays,
	})
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to encode provenance", 500)
	}
	row := &payinput.PayrollInputValue{
		PeriodID:       p.ID,
		PayrollName:    in.Name,
		ComponentKey:   payinput.KeyTravelReimbursement,
		Amount:         allowance.Amount,
		SourceMethod:   payinput.SourceDerived,
		ProvenanceJSON: provenance,
	}
	if err := repo.UpsertDerivedInput(ctx, row); err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to store derived travel input", 500)
	}
	in.Bucket[payinput.KeyTravelReimbursement] = allowance.Amount
	return nil
}

func (s *service) GetSummary(ctx context.Context, periodID string) (*Summary, error) {
	p, err := s.findPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if len(p.SummaryJSON) == 0 {
		return nil, engineerrors.ErrNoComputedValues
	}
	var summary Summary
	if err := json.Unmarshal(p.SummaryJSON, &summary); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to decode summary", 500)
	}
	return &summary, nil
}

func (s *service) ListComputed(ctx context.Context, periodID string) ([]ComputedValueResponse, error) {
	p, err := s.findPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListComputed(ctx, p.ID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to load computed values", 500)
	}
	if len(rows) == 0 {
		return nil, engineerrors.ErrNoComputedValues
	}
	out := make([]ComputedValueResponse, 0, len(rows))
	for _, row := range rows {
		var userID *string
		if row.UserID != nil {
			id := row.UserID.String()
			userID = &id
		}
		out = append(out, ComputedValueResponse{
			PayrollName:    row.PayrollName,
			UserID:         userID,
			MetricKey:      row.MetricKey,
			Amount:         row.Amount.StringFixed(2),
			FormulaVersion: row.FormulaVersion,
			Lineage:        string(row.LineageJSON),
		})
	}
	return out, nil
}

func (s *service) ListMismatches(ctx context.Context, periodID string) ([]Mismatch, error) {
	summary, err := s.GetSummary(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if summary.Mismatches == nil {
		return []Mismatch{}, nil
	}
	return summary.Mismatches, nil
}

func (s *service) findPeriod(ctx context.Context, periodID string) (*period.PayrollPeriod, error) {
	if _, err := uuid.Parse(periodID); err != nil {
		return nil, engineerrors.ErrInvalidPeriodID
	}
	p, err := s.repo.FindPeriod(ctx, periodID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to load period", 500)
	}
	if p == nil {
		return nil, engineerrors.ErrPeriodNotFound
	}
	return p, nil
}

// bucketInputs folds raw input rows into per-name buckets, summing
// duplicate keys and recording which slots carry a manual override.
func bucketInputs(rows []payinput.PayrollInputValue) []*nameInput {
	byName := make(map[string]*nameInput)
	var order []string
	for _, row := range rows {
		in, ok := byName[row.PayrollName]
		if !ok {
			in = &nameInput{
				Name:      row.PayrollName,
				Bucket:    make(map[string]decimal.Decimal),
				Overrides: make(map[string]struct{}),
			}
			byName[row.PayrollName] = in
			order = append(order, row.PayrollName)
		}
		in.Bucket[row.ComponentKey] = in.Bucket[row.ComponentKey].Add(row.Amount)
		if row.IsOverride {
			in.Overrides[row.ComponentKey] = struct{}{}
		}
	}
	sort.Strings(order)
	out := make([]*nameInput, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out
}

func indexHeads(heads []salaryhead.SalaryHead) map[string]salaryhead.SalaryHead {
	m := make(map[string]salaryhead.SalaryHead, len(heads))
	for _, h := range heads {
		m[h.Code] = h
	}
	return m
}

func metricAmount(c Computation, metric string) decimal.Decimal {
	switch metric {
	case MetricTotalTaxableSalary:
		return c.TaxableBase
	case MetricTotalEarnings:
		return c.TotalEarnings
	case MetricTotalDeductions:
		return c.TotalDeductions
	case MetricNetSalary:
		return c.NetSalary
	default:
		return c.Balance
	}
}

func receiptBody(c Computation) receipt.ReceiptBody {
	earnings := make(map[string]string, len(c.Earnings))
	for key, v := range c.Earnings {
		earnings[key] = v.StringFixed(2)
	}
	deductions := make(map[string]string, len(c.Deductions))
	for key, v := range c.Deductions {
		deductions[key] = v.StringFixed(2)
	}
	return receipt.ReceiptBody{
		Earnings:   earnings,
		Deductions: deductions,
		Net: receipt.ReceiptNet{
			NetSalary: c.NetSalary.StringFixed(2),
			Paid:      c.Paid.StringFixed(2),
			Balance:   c.Balance.StringFixed(2),
		},
	}
}
