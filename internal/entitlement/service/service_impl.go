package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/smallbiznis/pcsengine/internal/clock"
	"github.com/smallbiznis/pcsengine/internal/config"
	"github.com/smallbiznis/pcsengine/internal/entitlement/calculator"
	"github.com/smallbiznis/pcsengine/internal/entitlement/confidence"
	entdomain "github.com/smallbiznis/pcsengine/internal/entitlement/domain"
	"github.com/smallbiznis/pcsengine/internal/grade"
	obscontext "github.com/smallbiznis/pcsengine/internal/observability/context"
	"github.com/smallbiznis/pcsengine/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/pcsengine/internal/observability/metrics"
	"github.com/smallbiznis/pcsengine/internal/observability/tracing"
	ratedomain "github.com/smallbiznis/pcsengine/internal/rate/domain"
	"github.com/smallbiznis/pcsengine/internal/rate/fallback"
	snapshotdomain "github.com/smallbiznis/pcsengine/internal/snapshot/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Clock    clock.Clock
	Resolver ratedomain.Resolver
	Fallback *fallback.Table
	Engine   *config.EngineConfigHolder
	Recorder snapshotdomain.Recorder `optional:"true"`
	Metrics  *obsmetrics.Metrics     `optional:"true"`
}

type Service struct {
	log      *zap.Logger
	clock    clock.Clock
	resolver ratedomain.Resolver
	fallback *fallback.Table
	engine   *config.EngineConfigHolder
	recorder snapshotdomain.Recorder
	metrics  *obsmetrics.Metrics
}

func New(p Params) *Service {
	return &Service{
		log:      p.Log.Named("entitlement.service"),
		clock:    p.Clock,
		resolver: p.Resolver,
		fallback: p.Fallback,
		engine:   p.Engine,
		recorder: p.Recorder,
		metrics:  p.Metrics,
	}
}

// claim is the per-request view every calculator job reads from.
type claim struct {
	input      entdomain.ClaimInput
	gradeKey   string
	orderDate  civil.Date
	travelDate civil.Date
	engine     config.EngineConfig
}

type job struct {
	kind entdomain.EntitlementType
	run  func(ctx context.Context, c claim) (entdomain.EntitlementLine, error)
}

// Calculate runs every calculator concurrently and assembles the result.
// A failing calculator yields a degraded line and contradictory travel dates
// only cost the dates_verified factor; cancellation of ctx is the one abort,
// in which case nothing is recorded.
func (s *Service) Calculate(ctx context.Context, in entdomain.ClaimInput) (*entdomain.CalculationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	started := time.Now()

	claimID := strings.TrimSpace(in.ClaimID)
	if claimID == "" {
		claimID = uuid.NewString()
	}
	ctx = obscontext.WithClaimID(ctx, claimID)
	ctx, span := tracing.StartSpan(ctx, "entitlement.Calculate")
	defer span.End()

	engine := s.engine.Get()
	gradeResult := grade.Normalize(in.PayGrade)
	today := clock.Today(s.clock)
	orderDate := dateOr(in.OrderDate, today)
	c := claim{
		input:      in,
		gradeKey:   gradeSegment(in.PayGrade) + ":" + ratedomain.DependentsSegment(in.HasDependents),
		orderDate:  orderDate,
		travelDate: dateOr(in.TravelStart, orderDate),
		engine:     engine,
	}

	calcCtx := ctx
	if engine.CalculatorTimeout > 0 {
		var cancel context.CancelFunc
		calcCtx, cancel = context.WithTimeout(ctx, engine.CalculatorTimeout)
		defer cancel()
	}

	jobs := s.jobs()
	lines := make([]entdomain.EntitlementLine, len(jobs))
	var g errgroup.Group
	for i, j := range jobs {
		g.Go(func() error {
			lines[i] = s.runJob(calcCtx, j, c)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		span.RecordError(tracing.SafeError(err))
		return nil, err
	}

	var total int64
	for i := range lines {
		lines[i].Amount = calculator.FormatCents(lines[i].AmountCents)
		total += lines[i].AmountCents
	}
	var notes []string
	if !in.DatesConsistent() {
		notes = append(notes, "travel_end precedes travel_start; travel dates treated as unverified")
	}

	report := confidence.Score(confidence.FactorsFor(in, lines, !gradeResult.Defaulted()))
	result := &entdomain.CalculationResult{
		ClaimID: claimID,
		Grade: entdomain.GradeSummary{
			Input:   gradeResult.Input,
			Grade:   gradeResult.Grade,
			Outcome: gradeResult.Outcome,
		},
		HasDependents: in.HasDependents,
		Lines:         lines,
		TotalCents:    total,
		Total:         calculator.FormatCents(total),
		Notes:         notes,
		Confidence:    report,
		RuleVersion:   s.fallback.VersionAt(orderDate).Name,
		CalculatedAt:  s.clock.Now().UTC(),
	}

	span.SetAttributes(tracing.SafeAttributes(attribute.String("rule_version", result.RuleVersion))...)
	s.metrics.RecordCalculation(ctx, result.RuleVersion, string(report.Level), time.Since(started))
	logger.WithContext(ctx, s.log).Debug("calculation completed",
		zap.Int64("total_cents", total),
		zap.Int("confidence", report.Overall),
		zap.String("rule_version", result.RuleVersion),
	)

	if s.recorder != nil {
		s.recorder.Append(context.WithoutCancel(ctx), snapshotdomain.Entry{
			ClaimID:     claimID,
			RequestID:   obscontext.RequestIDFromContext(ctx),
			RuleVersion: result.RuleVersion,
			TotalCents:  result.TotalCents,
			Confidence:  report.Overall,
			Result:      result,
		})
	}
	return result, nil
}

func (s *Service) runJob(ctx context.Context, j job, c claim) (line entdomain.EntitlementLine) {
	defer func() {
		if r := recover(); r != nil {
			line = s.degrade(ctx, j.kind, fmt.Errorf("calculator panic: %v", r))
		}
	}()

	computed, err := j.run(ctx, c)
	if err != nil {
		return s.degrade(ctx, j.kind, err)
	}
	return computed
}

func (s *Service) degrade(ctx context.Context, kind entdomain.EntitlementType, err error) entdomain.EntitlementLine {
	logger.WithContext(ctx, s.log).Warn("calculator failed, line degraded",
		zap.String("entitlement_type", string(kind)),
		zap.Error(err),
	)
	s.metrics.RecordCalculatorFailure(ctx, string(kind))
	return calculator.Degraded(kind, err)
}

func (s *Service) resolve(ctx context.Context, rateType ratedomain.RateType, key string, asOf civil.Date) (ratedomain.Resolution, error) {
	res, err := s.resolver.Resolve(ctx, rateType, key, asOf)
	if err != nil {
		return ratedomain.Resolution{}, fmt.Errorf("resolve %s: %w", rateType, err)
	}
	return res, nil
}

func (s *Service) jobs() []job {
	return []job{
		{kind: entdomain.TypeRelocationAllowance, run: s.relocation},
		{kind: entdomain.TypeLodging, run: s.lodging},
		{kind: entdomain.TypeMileage, run: s.mileage},
		{kind: entdomain.TypePerDiem, run: s.perDiem},
		{kind: entdomain.TypeSelfMove, run: s.selfMove},
	}
}

func (s *Service) relocation(ctx context.Context, c claim) (entdomain.EntitlementLine, error) {
	res, err := s.resolve(ctx, ratedomain.RateTypeRelocationAllowance, c.gradeKey, c.orderDate)
	if err != nil {
		return entdomain.EntitlementLine{}, err
	}
	return calculator.Relocation(res), nil
}

func (s *Service) lodging(ctx context.Context, c claim) (entdomain.EntitlementLine, error) {
	origin, err := s.resolve(ctx, ratedomain.RateTypeLodgingCeiling, localityOr(c.input.OriginLodging.Locality), c.travelDate)
	if err != nil {
		return entdomain.EntitlementLine{}, err
	}
	destination, err := s.resolve(ctx, ratedomain.RateTypeLodgingCeiling, localityOr(c.input.DestinationLodging.Locality), c.travelDate)
	if err != nil {
		return entdomain.EntitlementLine{}, err
	}
	return calculator.Lodging(
		calculator.LegInput{Leg: c.input.OriginLodging, Ceiling: origin},
		calculator.LegInput{Leg: c.input.DestinationLodging, Ceiling: destination},
		c.engine.MaxNightsPerLeg,
	)
}

func (s *Service) mileage(ctx context.Context, c claim) (entdomain.EntitlementLine, error) {
	res, err := s.resolve(ctx, ratedomain.RateTypeMileage, ratedomain.DefaultMileageKey, c.travelDate)
	if err != nil {
		return entdomain.EntitlementLine{}, err
	}
	return calculator.Mileage(c.input.MileageDistance, res)
}

func (s *Service) perDiem(ctx context.Context, c claim) (entdomain.EntitlementLine, error) {
	res, err := s.resolve(ctx, ratedomain.RateTypePerDiem, localityOr(c.input.DestinationLocality), c.travelDate)
	if err != nil {
		return entdomain.EntitlementLine{}, err
	}
	return calculator.PerDiem(c.input.PerDiemDays, res)
}

func (s *Service) selfMove(ctx context.Context, c claim) (entdomain.EntitlementLine, error) {
	weightCap, err := s.resolve(ctx, ratedomain.RateTypeWeightAllowance, c.gradeKey, c.orderDate)
	if err != nil {
		return entdomain.EntitlementLine{}, err
	}
	rate, err := s.resolve(ctx, ratedomain.RateTypeSelfMove, ratedomain.DefaultSelfMove, c.orderDate)
	if err != nil {
		return entdomain.EntitlementLine{}, err
	}
	return calculator.SelfMove(c.input.SelfMove, weightCap, rate)
}

func dateOr(d *civil.Date, fallback civil.Date) civil.Date {
	if d == nil || !d.IsValid() {
		return fallback
	}
	return *d
}

func localityOr(locality string) string {
	if strings.TrimSpace(locality) == "" {
		return ratedomain.DefaultLocality
	}
	return locality
}

// gradeSegment keeps the raw grade for the resolver to normalize; a colon
// would otherwise split it into extra key segments.
func gradeSegment(payGrade string) string {
	return strings.ReplaceAll(strings.TrimSpace(payGrade), ":", " ")
}

var _ entdomain.Service = (*Service)(nil)
