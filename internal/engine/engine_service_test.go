package engine_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"go-payops/internal/engine"
	engineerrors "go-payops/internal/engine/errors"
	"go-payops/internal/shared/apperror"
	"go-payops/internal/formula"
	"go-payops/internal/identity"
	"go-payops/internal/payinput"
	"go-payops/internal/period"
	"go-payops/internal/receipt"
	"go-payops/internal/revision"
	"go-payops/internal/salaryhead"
	"go-payops/internal/taxyear"
	"go-payops/internal/travel"
)

type fakeEngineRepository struct {
	withTxFn              func(tx *sql.Tx) engine.Repository
	findPeriodFn          func(ctx context.Context, id string) (*period.PayrollPeriod, error)
	findPreviousPeriodFn  func(ctx context.Context, before time.Time) (*period.PayrollPeriod, error)
	updatePeriodFn        func(ctx context.Context, p *period.PayrollPeriod) error
	listInputsFn          func(ctx context.Context, periodID uuid.UUID) ([]payinput.PayrollInputValue, error)
	upsertDerivedInputFn  func(ctx context.Context, row *payinput.PayrollInputValue) error
	activeFinancialYearFn func(ctx context.Context, on time.Time) (*taxyear.FinancialYear, error)
	latestRevisionFn      func(ctx context.Context, userID uuid.UUID, onOrBefore time.Time) (*revision.SalaryRevision, error)
	activeSalaryHeadsFn   func(ctx context.Context) ([]salaryhead.SalaryHead, error)
	balanceForNameFn      func(ctx context.Context, periodID uuid.UUID, payrollName string) (decimal.Decimal, bool, error)
	listComputedFn        func(ctx context.Context, periodID uuid.UUID) ([]engine.PayrollComputedValue, error)
	replaceSnapshotFn     func(ctx context.Context, periodID uuid.UUID, values []engine.PayrollComputedValue, receipts []receipt.PayrollReceipt) error
}

func (f *fakeEngineRepository) WithTx(tx *sql.Tx) engine.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeEngineRepository) FindPeriod(ctx context.Context, id string) (*period.PayrollPeriod, error) {
	if f.findPeriodFn != nil {
		return f.findPeriodFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeEngineRepository) FindPreviousPeriod(ctx context.Context, before time.Time) (*period.PayrollPeriod, error) {
	if f.findPreviousPeriodFn != nil {
		return f.findPreviousPeriodFn(ctx, before)
	}
	return nil, nil
}

func (f *fakeEngineRepository) UpdatePeriod(ctx context.Context, p *period.PayrollPeriod) error {
	if f.updatePeriodFn != nil {
		return f.updatePeriodFn(ctx, p)
	}
	return nil
}

func (f *fakeEngineRepository) ListInputs(ctx context.Context, periodID uuid.UUID) ([]payinput.PayrollInputValue, error) {
	if f.listInputsFn != nil {
		return f.listInputsFn(ctx, periodID)
	}
	return nil, nil
}

func (f *fakeEngineRepository) UpsertDerivedInput(ctx context.Context, row *payinput.PayrollInputValue) error {
	if f.upsertDerivedInputFn != nil {
		return f.upsertDerivedInputFn(ctx, row)
	}
	return nil
}

func (f *fakeEngineRepository) ActiveFinancialYear(ctx context.Context, on time.Time) (*taxyear.FinancialYear, error) {
	if f.activeFinancialYearFn != nil {
		return f.activeFinancialYearFn(ctx, on)
	}
	return nil, nil
}

func (f *fakeEngineRepository) LatestRevision(ctx context.Context, userID uuid.UUID, onOrBefore time.Time) (*revision.SalaryRevision, error) {
	if f.latestRevisionFn != nil {
		return f.latestRevisionFn(ctx, userID, onOrBefore)
	}
	return nil, nil
}

func (f *fakeEngineRepository) ActiveSalaryHeads(ctx context.Context) ([]salaryhead.SalaryHead, error) {
	if f.activeSalaryHeadsFn != nil {
		return f.activeSalaryHeadsFn(ctx)
	}
	return nil, nil
}

func (f *fakeEngineRepository) BalanceForName(ctx context.Context, periodID uuid.UUID, payrollName string) (decimal.Decimal, bool, error) {
	if f.balanceForNameFn != nil {
		return f.balanceForNameFn(ctx, periodID, payrollName)
	}
	return decimal.Zero, false, nil
}

func (f *fakeEngineRepository) ListComputed(ctx context.Context, periodID uuid.UUID) ([]engine.PayrollComputedValue, error) {
	if f.listComputedFn != nil {
		return f.listComputedFn(ctx, periodID)
	}
	return nil, nil
}

func (f *fakeEngineRepository) ReplaceSnapshot(ctx context.Context, periodID uuid.UUID, values []engine.PayrollComputedValue, receipts []receipt.PayrollReceipt) error {
	if f.replaceSnapshotFn != nil {
		return f.replaceSnapshotFn(ctx, periodID, values, receipts)
	}
	return nil
}

type fakeResolver struct {
	resolveFn func(ctx context.Context, rawName string) (identity.Resolution, error)
}

func (f *fakeResolver) Resolve(ctx context.Context, rawName string) (identity.Resolution, error) {
	if f.resolveFn != nil {
		return f.resolveFn(ctx, rawName)
	}
	return identity.Resolution{Status: identity.StatusUnresolved}, nil
}

type fakeCalculator struct {
	proratedAllowanceFn func(ctx context.Context, userID uuid.UUID, periodStart, periodEnd time.Time) (*travel.Allowance, error)
}

func (f *fakeCalculator) ProratedAllowance(ctx context.Context, userID uuid.UUID, periodStart, periodEnd time.Time) (*travel.Allowance, error) {
	if f.proratedAllowanceFn != nil {
		return f.proratedAllowanceFn(ctx, userID, periodStart, periodEnd)
	}
	return nil, nil
}

type engineServiceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	redisMock redismock.ClientMock
	repo      *fakeEngineRepository
	resolver  *fakeResolver
	travel    *fakeCalculator
	service   engine.Service
}

func setupEngineServiceTest(t *testing.T, registry formula.Registry) *engineServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	rdb, redisMock := redismock.NewClientMock()
	repo := &fakeEngineRepository{}
	resolver := &fakeResolver{}
	calc := &fakeCalculator{}

	svc := engine.NewService(db, repo, calc, resolver, registry, rdb, nil)

	return &engineServiceDeps{
		db:        db,
		sqlMock:   sqlMock,
		redisMock: redisMock,
		repo:      repo,
		resolver:  resolver,
		travel:    calc,
		service:   svc,
	}
}

func (d *engineServiceDeps) expectRun(periodID string, commit bool) {
	d.redisMock.ExpectSetNX("payops:recalc:"+periodID, "1", 5*time.Minute).SetVal(true)
	d.sqlMock.ExpectBegin()
	if commit {
		d.sqlMock.ExpectCommit()
	} else {
		d.sqlMock.ExpectRollback()
	}
	d.redisMock.ExpectDel("payops:recalc:" + periodID).SetVal(1)
}

func julyPeriod(id uuid.UUID) *period.PayrollPeriod {
	return &period.PayrollPeriod{
		ID:          id,
		PeriodStart: time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, time.July, 31, 0, 0, 0, 0, time.UTC),
		Status:      period.StatusDraft,
	}
}

func inputRow(periodID uuid.UUID, name, key, amount string) payinput.PayrollInputValue {
	return payinput.PayrollInputValue{
		ID:           uuid.New(),
		PeriodID:     periodID,
		PayrollName:  name,
		ComponentKey: key,
		Amount:       decimal.RequireFromString(amount),
		SourceMethod: payinput.SourceWorkbook,
	}
}

func metricValue(t *testing.T, values []engine.PayrollComputedValue, name, metric string) decimal.Decimal {
	t.Helper()
	for _, v := range values {
		if v.PayrollName == name && v.MetricKey == metric {
			return v.Amount
		}
	}
	t.Fatalf("metric %s for %s not found", metric, name)
	return decimal.Zero
}

// stubbedRegistry fixes the slab estimate so scenario arithmetic is exact.
func stubbedRegistry(estimate string) formula.Registry {
	reg := formula.DefaultRegistry()
	fixed := decimal.RequireFromString(estimate)
	reg.SlabEstimate = func(periodKey string, base decimal.Decimal) decimal.Decimal {
		return fixed
	}
	return reg
}

func TestEngineService_Recalculate_Scenario(t *testing.T) {
	ctx := context.Background()
	periodID := uuid.New()
	p := julyPeriod(periodID)

	deps := setupEngineServiceTest(t, stubbedRegistry("9000"))
	defer deps.db.Close()
	deps.expectRun(periodID.String(), true)

	deps.repo.findPeriodFn = func(ctx context.Context, id string) (*period.PayrollPeriod, error) {
		return p, nil
	}
	deps.repo.listInputsFn = func(ctx context.Context, pid uuid.UUID) ([]payinput.PayrollInputValue, error) {
		return []payinput.PayrollInputValue{
			inputRow(periodID, "J. Doe", payinput.KeyBasicSalary, "100000"),
			inputRow(periodID, "J. Doe", payinput.KeyMedicalAllowance, "10000"),
			inputRow(periodID, "J. Doe", payinput.KeyPaid, "91000"),
		}, nil
	}

	var snapshot []engine.PayrollComputedValue
	var receipts []receipt.PayrollReceipt
	deps.repo.replaceSnapshotFn = func(ctx context.Context, pid uuid.UUID, values []engine.PayrollComputedValue, recs []receipt.PayrollReceipt) error {
		snapshot = values
		receipts = recs
		return nil
	}
	var updated *period.PayrollPeriod
	deps.repo.updatePeriodFn = func(ctx context.Context, p *period.PayrollPeriod) error {
		updated = p
		return nil
	}

	result, err := deps.service.Recalculate(ctx, periodID.String(), engine.RecalculateRequest{})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.PayrollCount)
	assert.Equal(t, 5, result.ComputedCount)
	assert.Equal(t, 0, result.MismatchCount)

	// Medical exemption offsets the allowance in the taxable base only.
	assert.True(t, metricValue(t, snapshot, "J. Doe", engine.MetricTotalTaxableSalary).Equal(decimal.RequireFromString("90000")))
	assert.True(t, metricValue(t, snapshot, "J. Doe", engine.MetricTotalEarnings).Equal(decimal.RequireFromString("100000")))
	assert.True(t, metricValue(t, snapshot, "J. Doe", engine.MetricTotalDeductions).Equal(decimal.RequireFromString("9000")))
	assert.True(t, metricValue(t, snapshot, "J. Doe", engine.MetricNetSalary).Equal(decimal.RequireFromString("91000")))
	// First period starts from a zero balance: 0 + 91000 - 91000.
	assert.True(t, metricValue(t, snapshot, "J. Doe", engine.MetricBalance).Equal(decimal.Zero))

	assert.Len(t, receipts, 1)
	assert.Equal(t, receipt.StatusReady, receipts[0].Status)
	assert.Equal(t, period.StatusCalculated, updated.Status)
	assert.NotEmpty(t, updated.SummaryJSON)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	assert.NoError(t, deps.redisMock.ExpectationsWereMet())
}

func TestEngineService_Recalculate_TaxChain(t *testing.T) {
	ctx := context.Background()
	periodID := uuid.New()

	runWith := func(t *testing.T, rows []payinput.PayrollInputValue, fy *taxyear.FinancialYear) []engine.PayrollComputedValue {
		t.Helper()
		deps := setupEngineServiceTest(t, stubbedRegistry("9000"))
		defer deps.db.Close()
		deps.expectRun(periodID.String(), true)

		deps.repo.findPeriodFn = func(ctx context.Context, id string) (*period.PayrollPeriod, error) {
			return julyPeriod(periodID), nil
		}
		deps.repo.listInputsFn = func(ctx context.Context, pid uuid.UUID) ([]payinput.PayrollInputValue, error) {
			return rows, nil
		}
		deps.repo.activeFinancialYearFn = func(ctx context.Context, on time.Time) (*taxyear.FinancialYear, error) {
			return fy, nil
		}

		var snapshot []engine.PayrollComputedValue
		deps.repo.replaceSnapshotFn = func(ctx context.Context, pid uuid.UUID, values []engine.PayrollComputedValue, recs []receipt.PayrollReceipt) error {
			snapshot = values
			return nil
		}

		_, err := deps.service.Recalculate(ctx, periodID.String(), engine.RecalculateRequest{})
		assert.NoError(t, err)
		return snapshot
	}

	t.Run("explicit tax input wins", func(t *testing.T) {
		capTop := decimal.RequireFromString("10000000")
		fy := &taxyear.FinancialYear{
			ID: uuid.New(),
			Brackets: []taxyear.TaxBracket{
				{Floor: decimal.Zero, Cap: &capTop, Rate: decimal.NewFromFloat(0.10)},
			},
		}
		snapshot := runWith(t, []payinput.PayrollInputValue{
			inputRow(periodID, "J. Doe", payinput.KeyBasicSalary, "100000"),
			inputRow(periodID, "J. Doe", payinput.KeyIncomeTax, "7777"),
		}, fy)

		assert.True(t, metricValue(t, snapshot, "J. Doe", engine.MetricTotalDeductions).Equal(decimal.RequireFromString("7777")))
	})

	t.Run("progressive tax when a year is configured", func(t *testing.T) {
		// Flat 10% with no threshold: 100000*12*0.10/12 = 10000 monthly.
		capTop := decimal.RequireFromString("100000000")
		fy := &taxyear.FinancialYear{
			ID: uuid.New(),
			Brackets: []taxyear.TaxBracket{
				{Floor: decimal.Zero, Cap: &capTop, Rate: decimal.NewFromFloat(0.10)},
			},
		}
		snapshot := runWith(t, []payinput.PayrollInputValue{
			inputRow(periodID, "J. Doe", payinput.KeyBasicSalary, "100000"),
		}, fy)

		assert.True(t, metricValue(t, snapshot, "J. Doe", engine.MetricTotalDeductions).Equal(decimal.RequireFromString("10000")))
	})

	t.Run("slab fallback when no year covers the period", func(t *testing.T) {
		snapshot := runWith(t, []payinput.PayrollInputValue{
			inputRow(periodID, "J. Doe", payinput.KeyBasicSalary, "100000"),
		}, nil)

		assert.True(t, metricValue(t, snapshot, "J. Doe", engine.MetricTotalDeductions).Equal(decimal.RequireFromString("9000")))
	})
}

func TestEngineService_Recalculate_BalanceRollForward(t *testing.T) {
	ctx := context.Background()
	periodID := uuid.New()
	prevID := uuid.New()

	deps := setupEngineServiceTest(t, stubbedRegistry("0"))
	defer deps.db.Close()
	deps.expectRun(periodID.String(), true)

	deps.repo.findPeriodFn = func(ctx context.Context, id string) (*period.PayrollPeriod, error) {
		return julyPeriod(periodID), nil
	}
	deps.repo.findPreviousPeriodFn = func(ctx context.Context, before time.Time) (*period.PayrollPeriod, error) {
		return &period.PayrollPeriod{ID: prevID, Status: period.StatusLocked}, nil
	}
	deps.repo.balanceForNameFn = func(ctx context.Context, pid uuid.UUID, name string) (decimal.Decimal, bool, error) {
		assert.Equal(t, prevID, pid)
		return decimal.RequireFromString("2500"), true, nil
	}
	deps.repo.listInputsFn = func(ctx context.Context, pid uuid.UUID) ([]payinput.PayrollInputValue, error) {
		return []payinput.PayrollInputValue{
			inputRow(periodID, "J. Doe", payinput.KeyBasicSalary, "50000"),
			inputRow(periodID, "J. Doe", payinput.KeyPaid, "51000"),
		}, nil
	}

	var snapshot []engine.PayrollComputedValue
	deps.repo.replaceSnapshotFn = func(ctx context.Context, pid uuid.UUID, values []engine.PayrollComputedValue, recs []receipt.PayrollReceipt) error {
		snapshot = values
		return nil
	}

	_, err := deps.service.Recalculate(ctx, periodID.String(), engine.RecalculateRequest{})

	assert.NoError(t, err)
	// 2500 carried in + 50000 net - 51000 paid.
	assert.True(t, metricValue(t, snapshot, "J. Doe", engine.MetricBalance).Equal(decimal.RequireFromString("1500")))
}

func TestEngineService_Recalculate_BalanceAccumulatesAcrossPeriods(t *testing.T) {
	ctx := context.Background()

	deps := setupEngineServiceTest(t, stubbedRegistry("0"))
	defer deps.db.Close()

	type monthRun struct {
		id    uuid.UUID
		start time.Time
	}
	months := []monthRun{
		{uuid.New(), time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)},
		{uuid.New(), time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC)},
		{uuid.New(), time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC)},
	}

	var (
		current      monthRun
		prev         *monthRun
		prevBalances map[string]decimal.Decimal
	)

	deps.repo.findPeriodFn = func(ctx context.Context, id string) (*period.PayrollPeriod, error) {
		return &period.PayrollPeriod{
			ID:          current.id,
			PeriodStart: current.start,
			PeriodEnd:   current.start.AddDate(0, 1, -1),
			Status:      period.StatusDraft,
		}, nil
	}
	deps.repo.findPreviousPeriodFn = func(ctx context.Context, before time.Time) (*period.PayrollPeriod, error) {
		if prev == nil {
			return nil, nil
		}
		return &period.PayrollPeriod{ID: prev.id, Status: period.StatusLocked}, nil
	}
	deps.repo.balanceForNameFn = func(ctx context.Context, pid uuid.UUID, name string) (decimal.Decimal, bool, error) {
		assert.Equal(t, prev.id, pid)
		bal, ok := prevBalances[name]
		return bal, ok, nil
	}
	deps.repo.listInputsFn = func(ctx context.Context, pid uuid.UUID) ([]payinput.PayrollInputValue, error) {
		// 50000 net each month, never marked paid.
		return []payinput.PayrollInputValue{
			inputRow(current.id, "J. Doe", payinput.KeyBasicSalary, "50000"),
		}, nil
	}

	var snapshot []engine.PayrollComputedValue
	deps.repo.replaceSnapshotFn = func(ctx context.Context, pid uuid.UUID, values []engine.PayrollComputedValue, recs []receipt.PayrollReceipt) error {
		snapshot = values
		return nil
	}

	expected := []string{"50000", "100000", "150000"}
	for i, month := range months {
		current = month
		deps.expectRun(month.id.String(), true)

		_, err := deps.service.Recalculate(ctx, month.id.String(), engine.RecalculateRequest{})
		assert.NoError(t, err)

		bal := metricValue(t, snapshot, "J. Doe", engine.MetricBalance)
		assert.True(t, bal.Equal(decimal.RequireFromString(expected[i])), "month %d balance %s", i, bal)

		prev = &months[i]
		prevBalances = map[string]decimal.Decimal{"J. Doe": bal}
	}

	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	assert.NoError(t, deps.redisMock.ExpectationsWereMet())
}

func TestEngineService_Recalculate_Reconciliation(t *testing.T) {
	ctx := context.Background()

	run := func(t *testing.T, paid string) *engine.RecalculateResult {
		t.Helper()
		periodID := uuid.New()
		deps := setupEngineServiceTest(t, stubbedRegistry("0"))
		defer deps.db.Close()
		deps.expectRun(periodID.String(), true)

		deps.repo.findPeriodFn = func(ctx context.Context, id string) (*period.PayrollPeriod, error) {
			return julyPeriod(periodID), nil
		}
		deps.repo.listInputsFn = func(ctx context.Context, pid uuid.UUID) ([]payinput.PayrollInputValue, error) {
			return []payinput.PayrollInputValue{
				inputRow(periodID, "J. Doe", payinput.KeyBasicSalary, "50000"),
				inputRow(periodID, "J. Doe", payinput.KeyPaid, paid),
			}, nil
		}

		result, err := deps.service.Recalculate(ctx, periodID.String(), engine.RecalculateRequest{})
		assert.NoError(t, err)
		return result
	}

	t.Run("delta at tolerance passes", func(t *testing.T) {
		result := run(t, "49999")
		assert.Equal(t, 0, result.MismatchCount)
	})

	t.Run("delta just beyond tolerance warns", func(t *testing.T) {
		result := run(t, "49998.99")
		assert.Equal(t, 1, result.MismatchCount)
		assert.Equal(t, engine.SeverityWarning, result.Mismatches[0].Severity)
		assert.Equal(t, apperror.CodeReconciliation, result.Mismatches[0].Code)
		assert.True(t, result.Mismatches[0].Delta.Equal(decimal.RequireFromString("1.01")))
	})

	t.Run("delta beyond ten times tolerance is critical", func(t *testing.T) {
		result := run(t, "49989")
		assert.Equal(t, 1, result.MismatchCount)
		assert.Equal(t, engine.SeverityCritical, result.Mismatches[0].Severity)
	})

	t.Run("name without paid figure is never flagged", func(t *testing.T) {
		periodID := uuid.New()
		deps := setupEngineServiceTest(t, stubbedRegistry("0"))
		defer deps.db.Close()
		deps.expectRun(periodID.String(), true)

		deps.repo.findPeriodFn = func(ctx context.Context, id string) (*period.PayrollPeriod, error) {
			return julyPeriod(periodID), nil
		}
		deps.repo.listInputsFn = func(ctx context.Context, pid uuid.UUID) ([]payinput.PayrollInputValue, error) {
			return []payinput.PayrollInputValue{
				inputRow(periodID, "J. Doe", payinput.KeyBasicSalary, "50000"),
			}, nil
		}

		result, err := deps.service.Recalculate(ctx, periodID.String(), engine.RecalculateRequest{})
		assert.NoError(t, err)
		assert.Equal(t, 0, result.MismatchCount)
	})
}

func TestEngineService_Recalculate_SummaryNotes(t *testing.T) {
	ctx := context.Background()
	periodID := uuid.New()

	deps := setupEngineServiceTest(t, stubbedRegistry("0"))
	defer deps.db.Close()
	deps.expectRun(periodID.String(), true)

	deps.repo.findPeriodFn = func(ctx context.Context, id string) (*period.PayrollPeriod, error) {
		return julyPeriod(periodID), nil
	}
	deps.repo.listInputsFn = func(ctx context.Context, pid uuid.UUID) ([]payinput.PayrollInputValue, error) {
		return []payinput.PayrollInputValue{
			inputRow(periodID, "J. Doe", payinput.KeyBasicSalary, "50000"),
			inputRow(periodID, "J. Doe", "MYSTERY_KEY", "123"),
		}, nil
	}
	var updated *period.PayrollPeriod
	deps.repo.updatePeriodFn = func(ctx context.Context, p *period.PayrollPeriod) error {
		updated = p
		return nil
	}

	_, err := deps.service.Recalculate(ctx, periodID.String(), engine.RecalculateRequest{})
	assert.NoError(t, err)

	var summary engine.Summary
	assert.NoError(t, json.Unmarshal(updated.SummaryJSON, &summary))

	codes := make(map[string]int)
	for _, note := range summary.Notes {
		codes[note.Code]++
	}
	// No financial year covers the period, the name never resolves, and one
	// input key is unclassified.
	assert.Equal(t, 1, codes[apperror.CodeConfigurationGap])
	assert.Equal(t, 2, codes[apperror.CodeDataQuality])
}

func TestEngineService_Recalculate_TravelDerivation(t *testing.T) {
	ctx := context.Background()
	periodID := uuid.New()
	userID := uuid.New()

	resolveDoe := func(ctx context.Context, raw string) (identity.Resolution, error) {
		return identity.Resolution{Status: identity.StatusResolved, UserID: &userID}, nil
	}

	t.Run("derives and records travel for resolved names", func(t *testing.T) {
		deps := setupEngineServiceTest(t, stubbedRegistry("0"))
		defer deps.db.Close()
		deps.expectRun(periodID.String(), true)

		deps.resolver.resolveFn = resolveDoe
		deps.repo.findPeriodFn = func(ctx context.Context, id string) (*period.PayrollPeriod, error) {
			return julyPeriod(periodID), nil
		}
		deps.repo.listInputsFn = func(ctx context.Context, pid uuid.UUID) ([]payinput.PayrollInputValue, error) {
			return []payinput.PayrollInputValue{
				inputRow(periodID, "J. Doe", payinput.KeyBasicSalary, "50000"),
			}, nil
		}
		deps.travel.proratedAllowanceFn = func(ctx context.Context, uid uuid.UUID, start, end time.Time) (*travel.Allowance, error) {
			assert.Equal(t, userID, uid)
			return &travel.Allowance{
				Amount:      decimal.RequireFromString("4000"),
				TierID:      uuid.New(),
				WorkingDays: 23,
				PresentDays: 20,
			}, nil
		}

		var derived *payinput.PayrollInputValue
		deps.repo.upsertDerivedInputFn = func(ctx context.Context, row *payinput.PayrollInputValue) error {
			derived = row
			return nil
		}
		var snapshot []engine.PayrollComputedValue
		deps.repo.replaceSnapshotFn = func(ctx context.Context, pid uuid.UUID, values []engine.PayrollComputedValue, recs []receipt.PayrollReceipt) error {
			snapshot = values
			return nil
		}

		_, err := deps.service.Recalculate(ctx, periodID.String(), engine.RecalculateRequest{})

		assert.NoError(t, err)
		assert.NotNil(t, derived)
		assert.Equal(t, payinput.SourceDerived, derived.SourceMethod)
		assert.Equal(t, payinput.KeyTravelReimbursement, derived.ComponentKey)
		// 50000 + 4000 travel.
		assert.True(t, metricValue(t, snapshot, "J. Doe", engine.MetricTotalEarnings).Equal(decimal.RequireFromString("54000")))
	})

	t.Run("manual override suppresses derivation", func(t *testing.T) {
		deps := setupEngineServiceTest(t, stubbedRegistry("0"))
		defer deps.db.Close()
		deps.expectRun(periodID.String(), true)

		deps.resolver.resolveFn = resolveDoe
		deps.repo.findPeriodFn = func(ctx context.Context, id string) (*period.PayrollPeriod, error) {
			return julyPeriod(periodID), nil
		}
		override := inputRow(periodID, "J. Doe", payinput.KeyTravelReimbursement, "1500")
		override.IsOverride = true
		override.SourceMethod = payinput.SourceManual
		deps.repo.listInputsFn = func(ctx context.Context, pid uuid.UUID) ([]payinput.PayrollInputValue, error) {
			return []payinput.PayrollInputValue{
				inputRow(periodID, "J. Doe", payinput.KeyBasicSalary, "50000"),
				override,
			}, nil
		}
		deps.travel.proratedAllowanceFn = func(ctx context.Context, uid uuid.UUID, start, end time.Time) (*travel.Allowance, error) {
			t.Fatal("derivation must be skipped under a manual override")
			return nil, nil
		}

		var snapshot []engine.PayrollComputedValue
		deps.repo.replaceSnapshotFn = func(ctx context.Context, pid uuid.UUID, values []engine.PayrollComputedValue, recs []receipt.PayrollReceipt) error {
			snapshot = values
			return nil
		}

		_, err := deps.service.Recalculate(ctx, periodID.String(), engine.RecalculateRequest{})

		assert.NoError(t, err)
		assert.True(t, metricValue(t, snapshot, "J. Doe", engine.MetricTotalEarnings).Equal(decimal.RequireFromString("51500")))
	})

	t.Run("unresolved names skip derivation and defaults", func(t *testing.T) {
		deps := setupEngineServiceTest(t, stubbedRegistry("0"))
		defer deps.db.Close()
		deps.expectRun(periodID.String(), true)

		deps.repo.findPeriodFn = func(ctx context.Context, id string) (*period.PayrollPeriod, error) {
			return julyPeriod(periodID), nil
		}
		deps.repo.listInputsFn = func(ctx context.Context, pid uuid.UUID) ([]payinput.PayrollInputValue, error) {
			return []payinput.PayrollInputValue{
				inputRow(periodID, "Mystery Name", payinput.KeyBasicSalary, "50000"),
			}, nil
		}
		deps.travel.proratedAllowanceFn = func(ctx context.Context, uid uuid.UUID, start, end time.Time) (*travel.Allowance, error) {
			t.Fatal("derivation must be skipped for unresolved names")
			return nil, nil
		}
		deps.repo.latestRevisionFn = func(ctx context.Context, uid uuid.UUID, on time.Time) (*revision.SalaryRevision, error) {
			t.Fatal("revision lookup must be skipped for unresolved names")
			return nil, nil
		}

		var snapshot []engine.PayrollComputedValue
		deps.repo.replaceSnapshotFn = func(ctx context.Context, pid uuid.UUID, values []engine.PayrollComputedValue, recs []receipt.PayrollReceipt) error {
			snapshot = values
			return nil
		}

		_, err := deps.service.Recalculate(ctx, periodID.String(), engine.RecalculateRequest{})

		assert.NoError(t, err)
		for _, v := range snapshot {
			assert.Nil(t, v.UserID)
		}
	})
}

func TestEngineService_Recalculate_RevisionDefaults(t *testing.T) {
	ctx := context.Background()
	periodID := uuid.New()
	userID := uuid.New()

	deps := setupEngineServiceTest(t, stubbedRegistry("0"))
	defer deps.db.Close()
	deps.expectRun(periodID.String(), true)

	deps.resolver.resolveFn = func(ctx context.Context, raw string) (identity.Resolution, error) {
		return identity.Resolution{Status: identity.StatusResolved, UserID: &userID}, nil
	}
	deps.repo.findPeriodFn = func(ctx context.Context, id string) (*period.PayrollPeriod, error) {
		return julyPeriod(periodID), nil
	}
	deps.repo.listInputsFn = func(ctx context.Context, pid uuid.UUID) ([]payinput.PayrollInputValue, error) {
		return []payinput.PayrollInputValue{
			// The sheet supplies a basic salary that differs from the
			// revision default; the sheet wins.
			inputRow(periodID, "J. Doe", payinput.KeyBasicSalary, "48000"),
		}, nil
	}
	deps.repo.latestRevisionFn = func(ctx context.Context, uid uuid.UUID, on time.Time) (*revision.SalaryRevision, error) {
		return &revision.SalaryRevision{
			ID:     uuid.New(),
			UserID: uid,
			Lines: []revision.SalaryRevisionLine{
				{HeadCode: payinput.KeyBasicSalary, Amount: decimal.RequireFromString("50000")},
				{HeadCode: payinput.KeyUtilityAllowance, Amount: decimal.RequireFromString("2000")},
			},
		}, nil
	}

	var snapshot []engine.PayrollComputedValue
	deps.repo.replaceSnapshotFn = func(ctx context.Context, pid uuid.UUID, values []engine.PayrollComputedValue, recs []receipt.PayrollReceipt) error {
		snapshot = values
		return nil
	}

	_, err := deps.service.Recalculate(ctx, periodID.String(), engine.RecalculateRequest{})

	assert.NoError(t, err)
	// 48000 from the sheet, utility 2000 filled from the revision.
	assert.True(t, metricValue(t, snapshot, "J. Doe", engine.MetricTotalEarnings).Equal(decimal.RequireFromString("50000")))
	assert.True(t, metricValue(t, snapshot, "J. Doe", engine.MetricTotalTaxableSalary).Equal(decimal.RequireFromString("48000")))
}

func TestEngineService_Recalculate_ExtraKeyClassification(t *testing.T) {
	ctx := context.Background()
	periodID := uuid.New()

	deps := setupEngineServiceTest(t, stubbedRegistry("0"))
	defer deps.db.Close()
	deps.expectRun(periodID.String(), true)

	deps.repo.findPeriodFn = func(ctx context.Context, id string) (*period.PayrollPeriod, error) {
		return julyPeriod(periodID), nil
	}
	deps.repo.activeSalaryHeadsFn = func(ctx context.Context) ([]salaryhead.SalaryHead, error) {
		return []salaryhead.SalaryHead{
			{Code: "OVERTIME", Name: "Overtime", Type: salaryhead.TypeEarning, IsTaxable: true},
			{Code: "INTERNET_ALLOWANCE", Name: "Internet Allowance", Type: salaryhead.TypeEarning, IsTaxable: false},
			{Code: "PROVIDENT_FUND", Name: "Provident Fund", Type: salaryhead.TypeDeduction},
		}, nil
	}
	deps.repo.listInputsFn = func(ctx context.Context, pid uuid.UUID) ([]payinput.PayrollInputValue, error) {
		return []payinput.PayrollInputValue{
			inputRow(periodID, "J. Doe", payinput.KeyBasicSalary, "50000"),
			inputRow(periodID, "J. Doe", "OVERTIME", "3000"),
			inputRow(periodID, "J. Doe", "INTERNET_ALLOWANCE", "1200"),
			inputRow(periodID, "J. Doe", "PROVIDENT_FUND", "2000"),
			inputRow(periodID, "J. Doe", "MYSTERY_KEY", "999"),
		}, nil
	}

	var snapshot []engine.PayrollComputedValue
	deps.repo.replaceSnapshotFn = func(ctx context.Context, pid uuid.UUID, values []engine.PayrollComputedValue, recs []receipt.PayrollReceipt) error {
		snapshot = values
		return nil
	}

	_, err := deps.service.Recalculate(ctx, periodID.String(), engine.RecalculateRequest{})

	assert.NoError(t, err)
	// Taxable: 50000 basic + 3000 overtime. The unclassified key is skipped.
	assert.True(t, metricValue(t, snapshot, "J. Doe", engine.MetricTotalTaxableSalary).Equal(decimal.RequireFromString("53000")))
	// Earnings add the non-taxable internet allowance: 53000 + 1200.
	assert.True(t, metricValue(t, snapshot, "J. Doe", engine.MetricTotalEarnings).Equal(decimal.RequireFromString("54200")))
	assert.True(t, metricValue(t, snapshot, "J. Doe", engine.MetricTotalDeductions).Equal(decimal.RequireFromString("2000")))
	assert.True(t, metricValue(t, snapshot, "J. Doe", engine.MetricNetSalary).Equal(decimal.RequireFromString("52200")))
}

func TestEngineService_Recalculate_Idempotent(t *testing.T) {
	ctx := context.Background()
	periodID := uuid.New()

	var snapshots [][]engine.PayrollComputedValue

	runOnce := func(status string) {
		deps := setupEngineServiceTest(t, stubbedRegistry("9000"))
		defer deps.db.Close()
		deps.expectRun(periodID.String(), true)

		p := julyPeriod(periodID)
		p.Status = status
		deps.repo.findPeriodFn = func(ctx context.Context, id string) (*period.PayrollPeriod, error) {
			return p, nil
		}
		deps.repo.listInputsFn = func(ctx context.Context, pid uuid.UUID) ([]payinput.PayrollInputValue, error) {
			return []payinput.PayrollInputValue{
				inputRow(periodID, "J. Doe", payinput.KeyBasicSalary, "100000"),
				inputRow(periodID, "J. Doe", payinput.KeyMedicalAllowance, "10000"),
			}, nil
		}
		deps.repo.replaceSnapshotFn = func(ctx context.Context, pid uuid.UUID, values []engine.PayrollComputedValue, recs []receipt.PayrollReceipt) error {
			snapshots = append(snapshots, values)
			return nil
		}

		_, err := deps.service.Recalculate(ctx, periodID.String(), engine.RecalculateRequest{})
		assert.NoError(t, err)
	}

	runOnce(period.StatusDraft)
	runOnce(period.StatusCalculated)

	assert.Len(t, snapshots, 2)
	assert.Equal(t, len(snapshots[0]), len(snapshots[1]))
	for i := range snapshots[0] {
		a, b := snapshots[0][i], snapshots[1][i]
		assert.Equal(t, a.PayrollName, b.PayrollName)
		assert.Equal(t, a.MetricKey, b.MetricKey)
		assert.True(t, a.Amount.Equal(b.Amount), "%s/%s: %s vs %s", a.PayrollName, a.MetricKey, a.Amount, b.Amount)
		assert.Equal(t, a.FormulaVersion, b.FormulaVersion)
		assert.Equal(t, string(a.LineageJSON), string(b.LineageJSON))
	}
}

func TestEngineService_Recalculate_Guards(t *testing.T) {
	ctx := context.Background()
	periodID := uuid.New()

	t.Run("invalid period id", func(t *testing.T) {
		deps := setupEngineServiceTest(t, formula.DefaultRegistry())
		defer deps.db.Close()

		_, err := deps.service.Recalculate(ctx, "not-a-uuid", engine.RecalculateRequest{})

		assert.ErrorIs(t, err, engineerrors.ErrInvalidPeriodID)
	})

	t.Run("approved period rejects recompute", func(t *testing.T) {
		deps := setupEngineServiceTest(t, formula.DefaultRegistry())
		defer deps.db.Close()
		deps.expectRun(periodID.String(), false)

		p := julyPeriod(periodID)
		p.Status = period.StatusApproved
		deps.repo.findPeriodFn = func(ctx context.Context, id string) (*period.PayrollPeriod, error) {
			return p, nil
		}

		_, err := deps.service.Recalculate(ctx, periodID.String(), engine.RecalculateRequest{})

		assert.ErrorIs(t, err, engineerrors.ErrRecalculateNotAllowed)
	})

	t.Run("unknown period", func(t *testing.T) {
		deps := setupEngineServiceTest(t, formula.DefaultRegistry())
		defer deps.db.Close()
		deps.expectRun(periodID.String(), false)

		_, err := deps.service.Recalculate(ctx, periodID.String(), engine.RecalculateRequest{})

		assert.ErrorIs(t, err, engineerrors.ErrPeriodNotFound)
	})

	t.Run("concurrent recompute is refused", func(t *testing.T) {
		deps := setupEngineServiceTest(t, formula.DefaultRegistry())
		defer deps.db.Close()

		deps.redisMock.ExpectSetNX("payops:recalc:"+periodID.String(), "1", 5*time.Minute).SetVal(false)

		_, err := deps.service.Recalculate(ctx, periodID.String(), engine.RecalculateRequest{})

		assert.ErrorIs(t, err, engineerrors.ErrRecalculateInProgress)
		assert.NoError(t, deps.redisMock.ExpectationsWereMet())
	})
}
