package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/bwmarrin/snowflake"
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/pcsengine/internal/clock"
	"github.com/smallbiznis/pcsengine/internal/config"
	"github.com/smallbiznis/pcsengine/internal/entitlement/confidence"
	entdomain "github.com/smallbiznis/pcsengine/internal/entitlement/domain"
	"github.com/smallbiznis/pcsengine/internal/grade"
	ratedomain "github.com/smallbiznis/pcsengine/internal/rate/domain"
	"github.com/smallbiznis/pcsengine/internal/rate/fallback"
	rateservice "github.com/smallbiznis/pcsengine/internal/rate/service"
	snapshotdomain "github.com/smallbiznis/pcsengine/internal/snapshot/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	orderDate = civil.Date{Year: 2025, Month: 1, Day: 1}
	now       = time.Date(2025, 3, 1, 15, 4, 5, 0, time.UTC)
)

type liveStore struct {
	records map[string]ratedomain.RateRecord
}

func (s *liveStore) Query(_ context.Context, rateType ratedomain.RateType, key string, asOf civil.Date) (*ratedomain.RateRecord, error) {
	rec, ok := s.records[string(rateType)+"|"+key]
	if !ok || rec.Effective().After(asOf) {
		return nil, nil
	}
	return &rec, nil
}

func liveRecord(rateType ratedomain.RateType, key, value string) ratedomain.RateRecord {
	return ratedomain.RateRecord{
		ID:                 snowflake.ID(1),
		RateType:           rateType,
		LookupKey:          key,
		EffectiveDate:      ratedomain.DateTime(orderDate),
		Value:              decimal.RequireFromString(value),
		Unit:               ratedomain.UnitFor(rateType),
		Citation:           "JTR 050501",
		SourceLabel:        "dtmo",
		VerificationStatus: ratedomain.VerificationVerified,
	}
}

type recorderStub struct {
	mu      sync.Mutex
	entries []snapshotdomain.Entry
}

func (r *recorderStub) Append(_ context.Context, entry snapshotdomain.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

// panicResolver delegates to next except for one rate type.
type panicResolver struct {
	next     ratedomain.Resolver
	rateType ratedomain.RateType
	block    bool
}

func (p panicResolver) Resolve(ctx context.Context, rateType ratedomain.RateType, key string, asOf civil.Date) (ratedomain.Resolution, error) {
	if rateType == p.rateType {
		if p.block {
			<-ctx.Done()
			return ratedomain.Resolution{}, ctx.Err()
		}
		panic("rate table corrupted")
	}
	return p.next.Resolve(ctx, rateType, key, asOf)
}

type fixture struct {
	svc      *Service
	recorder *recorderStub
	resolver ratedomain.Resolver
}

func newFixture(t *testing.T, store ratedomain.Store, engine config.EngineConfig) *fixture {
	t.Helper()
	clk := clock.NewFakeClock(now)
	holder := config.NewStaticEngineConfigHolder(engine)
	table := fallback.Default()
	require.NoError(t, table.Validate())

	resolver := rateservice.New(rateservice.Params{
		Log:      zap.NewNop(),
		Clock:    clk,
		Store:    store,
		Fallback: table,
		Engine:   holder,
	})
	recorder := &recorderStub{}
	svc := New(Params{
		Log:      zap.NewNop(),
		Clock:    clk,
		Resolver: resolver,
		Fallback: table,
		Engine:   holder,
		Recorder: recorder,
	})
	return &fixture{svc: svc, recorder: recorder, resolver: resolver}
}

func baseClaim(payGrade string, dependents bool) entdomain.ClaimInput {
	od := orderDate
	return entdomain.ClaimInput{
		PayGrade:      payGrade,
		HasDependents: dependents,
		OrderDate:     &od,
	}
}

func sumLines(lines []entdomain.EntitlementLine) int64 {
	var total int64
	for _, line := range lines {
		total += line.AmountCents
	}
	return total
}

func TestCalculate_RelocationAllowanceByDependencyBand(t *testing.T) {
	f := newFixture(t, nil, config.DefaultEngineConfig())
	ctx := context.Background()

	with, err := f.svc.Calculate(ctx, baseClaim("E-5", true))
	require.NoError(t, err)
	line, ok := with.Line(entdomain.TypeRelocationAllowance)
	require.True(t, ok)
	assert.Equal(t, int64(306200), line.AmountCents)
	assert.Equal(t, ratedomain.OutcomeFallback, line.Outcome)
	assert.Equal(t, entdomain.ReasonComputed, line.Reason)

	without, err := f.svc.Calculate(ctx, baseClaim("E-5", false))
	require.NoError(t, err)
	line, ok = without.Line(entdomain.TypeRelocationAllowance)
	require.True(t, ok)
	assert.Equal(t, int64(224300), line.AmountCents)
}

func TestCalculate_AssemblesResult(t *testing.T) {
	f := newFixture(t, nil, config.DefaultEngineConfig())
	in := baseClaim("E-5", true)
	in.ClaimID = "claim-42"

	result, err := f.svc.Calculate(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "claim-42", result.ClaimID)
	assert.Equal(t, "pcs-2025.1", result.RuleVersion)
	assert.Equal(t, now, result.CalculatedAt)
	assert.Equal(t, grade.Grade("E-5"), result.Grade.Grade)
	require.Len(t, result.Lines, len(entdomain.Types()))
	for i, typ := range entdomain.Types() {
		assert.Equal(t, typ, result.Lines[i].Type)
	}
	assert.Equal(t, sumLines(result.Lines), result.TotalCents)

	require.Len(t, f.recorder.entries, 1)
	entry := f.recorder.entries[0]
	assert.Equal(t, "claim-42", entry.ClaimID)
	assert.Equal(t, result.TotalCents, entry.TotalCents)
	assert.Same(t, result, entry.Result)
}

func TestCalculate_GeneratesClaimID(t *testing.T) {
	f := newFixture(t, nil, config.DefaultEngineConfig())

	result, err := f.svc.Calculate(context.Background(), baseClaim("E-5", true))
	require.NoError(t, err)
	assert.Len(t, result.ClaimID, 36)
}

func TestCalculate_RuleVersionFollowsOrderDate(t *testing.T) {
	f := newFixture(t, nil, config.DefaultEngineConfig())
	in := baseClaim("E-5", true)
	od := civil.Date{Year: 2024, Month: 6, Day: 1}
	in.OrderDate = &od

	result, err := f.svc.Calculate(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "pcs-2024.1", result.RuleVersion)
}

func TestCalculate_CompactGradeMatchesCanonical(t *testing.T) {
	f := newFixture(t, nil, config.DefaultEngineConfig())
	ctx := context.Background()

	compact, err := f.svc.Calculate(ctx, baseClaim("E9", true))
	require.NoError(t, err)
	canonical, err := f.svc.Calculate(ctx, baseClaim("E-9", true))
	require.NoError(t, err)

	assert.Equal(t, canonical.Grade.Grade, compact.Grade.Grade)
	assert.Equal(t, canonical.TotalCents, compact.TotalCents)
	for i := range canonical.Lines {
		assert.Equal(t, canonical.Lines[i].AmountCents, compact.Lines[i].AmountCents)
		assert.True(t, canonical.Lines[i].RateUsed.Equal(compact.Lines[i].RateUsed))
		assert.Equal(t, canonical.Lines[i].Outcome, compact.Lines[i].Outcome)
	}
}

func TestCalculate_SelfMoveZeroLeavesOtherLinesIntact(t *testing.T) {
	store := &liveStore{records: map[string]ratedomain.RateRecord{
		"relocation_allowance|E-5:with": liveRecord(ratedomain.RateTypeRelocationAllowance, "E-5:with", "3062"),
	}}
	f := newFixture(t, store, config.DefaultEngineConfig())

	for _, move := range []entdomain.SelfMoveInput{
		{WeightLbs: decimal.Zero, DistanceMiles: decimal.NewFromInt(900)},
		{WeightLbs: decimal.NewFromInt(6000), DistanceMiles: decimal.Zero},
	} {
		in := baseClaim("E-5", true)
		in.SelfMove = move

		result, err := f.svc.Calculate(context.Background(), in)
		require.NoError(t, err)

		selfMove, ok := result.Line(entdomain.TypeSelfMove)
		require.True(t, ok)
		assert.Zero(t, selfMove.AmountCents)
		assert.Zero(t, selfMove.Confidence)
		assert.Equal(t, entdomain.ReasonNotClaimed, selfMove.Reason)

		relocation, ok := result.Line(entdomain.TypeRelocationAllowance)
		require.True(t, ok)
		assert.Equal(t, int64(306200), relocation.AmountCents)
		assert.Equal(t, 100, relocation.Confidence)
		assert.Equal(t, ratedomain.OutcomeLive, relocation.Outcome)
	}
}

func TestCalculate_FullClaim(t *testing.T) {
	f := newFixture(t, nil, config.EngineConfig{MaxNightsPerLeg: 5, CalculatorTimeout: time.Second, StoreTimeout: time.Second})
	in := baseClaim("Staff Sergeant", true)
	start := civil.Date{Year: 2025, Month: 1, Day: 10}
	in.TravelStart = &start
	in.MileageDistance = decimal.RequireFromString("1000.5")
	in.OriginLodging = entdomain.LodgingLeg{Nights: 7, NightlyRateCents: 15000}
	in.DestinationLodging = entdomain.LodgingLeg{Nights: 2, NightlyRateCents: 40000, Locality: "CONUS"}
	in.PerDiemDays = 4
	in.DestinationLocality = "CA:SAN DIEGO"
	in.SelfMove = entdomain.SelfMoveInput{WeightLbs: decimal.NewFromInt(12000), DistanceMiles: decimal.NewFromInt(1000)}

	result, err := f.svc.Calculate(context.Background(), in)
	require.NoError(t, err)

	lodging, _ := result.Line(entdomain.TypeLodging)
	// origin: 5 nights capped x 150.00, destination: 2 nights at the 290.00 ceiling
	assert.Equal(t, int64(5*15000+2*29000), lodging.AmountCents)

	mileage, _ := result.Line(entdomain.TypeMileage)
	// 1000.5 x 0.21 = 210.105
	assert.Equal(t, int64(21011), mileage.AmountCents)

	perDiem, _ := result.Line(entdomain.TypePerDiem)
	assert.Equal(t, int64(4*7900), perDiem.AmountCents)

	selfMove, _ := result.Line(entdomain.TypeSelfMove)
	require.NotNil(t, selfMove.SelfMove)
	assert.True(t, selfMove.SelfMove.Capped)
	// E-6 with dependents caps at 11000 lbs: 11000 x 1000 x 0.00047
	assert.Equal(t, int64(517000), selfMove.AmountCents)

	assert.Equal(t, sumLines(result.Lines), result.TotalCents)
	assert.Equal(t, grade.Grade("E-6"), result.Grade.Grade)
}

func TestCalculate_NegativeDistanceDegradesOnlyMileage(t *testing.T) {
	f := newFixture(t, nil, config.DefaultEngineConfig())
	in := baseClaim("E-5", true)
	in.MileageDistance = decimal.NewFromInt(-10)

	result, err := f.svc.Calculate(context.Background(), in)
	require.NoError(t, err)

	mileage, _ := result.Line(entdomain.TypeMileage)
	assert.Equal(t, entdomain.ReasonCalculatorFailure, mileage.Reason)
	assert.Zero(t, mileage.AmountCents)
	assert.Zero(t, mileage.Confidence)
	assert.Equal(t, ratedomain.CitationUnavailable, mileage.Citation)

	relocation, _ := result.Line(entdomain.TypeRelocationAllowance)
	assert.Equal(t, int64(306200), relocation.AmountCents)
	assert.Equal(t, sumLines(result.Lines), result.TotalCents)
}

func TestCalculate_PanicIsContained(t *testing.T) {
	f := newFixture(t, nil, config.DefaultEngineConfig())
	f.svc.resolver = panicResolver{next: f.resolver, rateType: ratedomain.RateTypePerDiem}

	result, err := f.svc.Calculate(context.Background(), baseClaim("E-5", true))
	require.NoError(t, err)

	perDiem, _ := result.Line(entdomain.TypePerDiem)
	assert.Equal(t, entdomain.ReasonCalculatorFailure, perDiem.Reason)
	assert.Contains(t, perDiem.Detail, "rate table corrupted")

	relocation, _ := result.Line(entdomain.TypeRelocationAllowance)
	assert.Equal(t, entdomain.ReasonComputed, relocation.Reason)
}

func TestCalculate_CalculatorTimeoutDegradesSlowLine(t *testing.T) {
	engine := config.DefaultEngineConfig()
	engine.CalculatorTimeout = 20 * time.Millisecond
	f := newFixture(t, nil, engine)
	f.svc.resolver = panicResolver{next: f.resolver, rateType: ratedomain.RateTypeMileage, block: true}

	result, err := f.svc.Calculate(context.Background(), baseClaim("E-5", true))
	require.NoError(t, err)

	mileage, _ := result.Line(entdomain.TypeMileage)
	assert.Equal(t, entdomain.ReasonCalculatorFailure, mileage.Reason)
	relocation, _ := result.Line(entdomain.TypeRelocationAllowance)
	assert.Equal(t, int64(306200), relocation.AmountCents)
}

func TestCalculate_CancelledContextRecordsNothing(t *testing.T) {
	f := newFixture(t, nil, config.DefaultEngineConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.svc.Calculate(ctx, baseClaim("E-5", true))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
	assert.Empty(t, f.recorder.entries)
}

func TestCalculate_UnknownGradeIsDefaultedAndSurfaced(t *testing.T) {
	f := newFixture(t, nil, config.DefaultEngineConfig())

	result, err := f.svc.Calculate(context.Background(), baseClaim("Grand Admiral", true))
	require.NoError(t, err)

	assert.Equal(t, grade.OutcomeDefaultSubstituted, result.Grade.Outcome)
	relocation, _ := result.Line(entdomain.TypeRelocationAllowance)
	assert.Equal(t, int64(306200), relocation.AmountCents)
	assert.Equal(t, ratedomain.OutcomeDefault, relocation.Outcome)
	assert.LessOrEqual(t, relocation.Confidence, ratedomain.ConfidenceDefault)

	var gradeFactor entdomain.ConfidenceFactor
	for _, factor := range result.Confidence.Factors {
		if factor.Name == confidence.FactorGradeRecognized {
			gradeFactor = factor
		}
	}
	assert.False(t, gradeFactor.Present)
	assert.Equal(t, 10, gradeFactor.Deduction)
}

func TestCalculate_ReversedTravelDatesStillCalculated(t *testing.T) {
	f := newFixture(t, nil, config.DefaultEngineConfig())
	in := baseClaim("E-5", true)
	start := civil.Date{Year: 2025, Month: 2, Day: 1}
	end := civil.Date{Year: 2025, Month: 1, Day: 1}
	in.TravelStart, in.TravelEnd = &start, &end
	in.Documents.DatesVerified = true

	result, err := f.svc.Calculate(context.Background(), in)
	require.NoError(t, err)

	relocation, ok := result.Line(entdomain.TypeRelocationAllowance)
	require.True(t, ok)
	assert.Equal(t, int64(306200), relocation.AmountCents)
	assert.Equal(t, "3062.00", relocation.Amount)
	require.Len(t, result.Notes, 1)
	assert.Contains(t, result.Notes[0], "travel_end precedes travel_start")

	for _, factor := range result.Confidence.Factors {
		if factor.Name == confidence.FactorDatesVerified {
			assert.False(t, factor.Present)
		}
	}
	require.Len(t, f.recorder.entries, 1)
}

func TestCalculate_MajorUnitAmounts(t *testing.T) {
	f := newFixture(t, nil, config.DefaultEngineConfig())
	in := baseClaim("E-5", true)
	in.MileageDistance = decimal.RequireFromString("321.7")

	result, err := f.svc.Calculate(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, result.Notes)
	for _, line := range result.Lines {
		assert.Equal(t, decimal.New(line.AmountCents, -2).StringFixed(2), line.Amount, line.Type)
	}
	assert.Equal(t, decimal.New(result.TotalCents, -2).StringFixed(2), result.Total)

	raw, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"amount":"3062.00"`)
}

func TestCalculationResult_JSONRoundTrip(t *testing.T) {
	f := newFixture(t, nil, config.DefaultEngineConfig())
	in := baseClaim("O-3", false)
	in.MileageDistance = decimal.RequireFromString("321.7")
	in.SelfMove = entdomain.SelfMoveInput{WeightLbs: decimal.NewFromInt(5000), DistanceMiles: decimal.NewFromInt(700)}

	result, err := f.svc.Calculate(context.Background(), in)
	require.NoError(t, err)

	first, err := json.Marshal(result)
	require.NoError(t, err)
	var decoded entdomain.CalculationResult
	require.NoError(t, json.Unmarshal(first, &decoded))
	second, err := json.Marshal(&decoded)
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
	assert.Equal(t, result.TotalCents, decoded.TotalCents)
	require.Len(t, decoded.Lines, len(result.Lines))
	for i := range result.Lines {
		assert.Equal(t, result.Lines[i].AmountCents, decoded.Lines[i].AmountCents)
		assert.True(t, result.Lines[i].RateUsed.Equal(decoded.Lines[i].RateUsed))
		assert.Equal(t, result.Lines[i].EffectiveDate, decoded.Lines[i].EffectiveDate)
	}
	assert.True(t, result.CalculatedAt.Equal(decoded.CalculatedAt))
}
