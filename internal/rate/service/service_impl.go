package service

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pcsengine/internal/clock"
	"github.com/smallbiznis/pcsengine/internal/config"
	obsmetrics "github.com/smallbiznis/pcsengine/internal/observability/metrics"
	"github.com/smallbiznis/pcsengine/internal/observability/tracing"
	ratecache "github.com/smallbiznis/pcsengine/internal/rate/cache"
	ratedomain "github.com/smallbiznis/pcsengine/internal/rate/domain"
	"github.com/smallbiznis/pcsengine/internal/rate/fallback"
	"github.com/smallbiznis/pcsengine/pkg/db"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     ratedomain.Repository
	Store    ratedomain.Store
	Cache    ratecache.Cache
	Fallback *fallback.Table
	Engine   *config.EngineConfigHolder
	Metrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     ratedomain.Repository
	store    ratedomain.Store
	cache    ratecache.Cache
	fallback *fallback.Table
	engine   *config.EngineConfigHolder
	metrics  *obsmetrics.Metrics
}

func New(p Params) *Service {
	cache := p.Cache
	if cache == nil {
		cache = ratecache.NewNoop()
	}
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("rate.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		store:    p.Store,
		cache:    cache,
		fallback: p.Fallback,
		engine:   p.Engine,
		metrics:  p.Metrics,
	}
}

// Resolve returns the rate applicable on asOf. Store failures and missing
// rows are absorbed by the fallback table; the only error is ctx's.
func (s *Service) Resolve(ctx context.Context, rateType ratedomain.RateType, lookupKey string, asOf civil.Date) (ratedomain.Resolution, error) {
	if err := ctx.Err(); err != nil {
		return ratedomain.Resolution{}, err
	}
	ctx, span := tracing.StartSpan(ctx, "rate.Resolve", attribute.String("rate_type", string(rateType)))
	defer span.End()

	nk := ratedomain.NormalizeKey(rateType, lookupKey)
	res := ratedomain.Resolution{
		RateType:     rateType,
		RequestedKey: lookupKey,
		LookupKey:    nk.Key,
		AsOf:         asOf,
		Unit:         ratedomain.UnitFor(rateType),
	}
	if nk.GradeDefaulted() {
		res.Notes = append(res.Notes, fmt.Sprintf("pay grade %q not recognized, %s substituted", nk.Grade.Input, nk.Grade.Grade))
	}

	candidates := resolutionCandidates(rateType, nk.Key)
	if !s.applyLive(ctx, &res, rateType, candidates, asOf) {
		if err := ctx.Err(); err != nil {
			return ratedomain.Resolution{}, err
		}
		s.applyFallback(&res, rateType, candidates, asOf)
	}

	if nk.GradeDefaulted() {
		if res.Outcome == ratedomain.OutcomeLive || res.Outcome == ratedomain.OutcomeFallback {
			res.Outcome = ratedomain.OutcomeDefault
		}
		res.Confidence = min(res.Confidence, ratedomain.ConfidenceDefault)
	}

	span.SetAttributes(attribute.String("rate.outcome", string(res.Outcome)))
	s.metrics.RecordResolution(ctx, string(rateType), string(res.Outcome))
	return res, nil
}

type candidate struct {
	key     string
	outcome ratedomain.Outcome
}

// resolutionCandidates lists the exact key, its enclosing keys nearest first,
// then the documented default key. outcome is what a non-live answer for the
// candidate is reported as.
func resolutionCandidates(rateType ratedomain.RateType, key string) []candidate {
	candidates := []candidate{{key: key, outcome: ratedomain.OutcomeFallback}}
	for _, enclosing := range ratedomain.EnclosingKeys(rateType, key) {
		candidates = append(candidates, candidate{key: enclosing, outcome: ratedomain.OutcomeFallback})
	}
	if def, ok := ratedomain.SubstituteDefault(rateType, key); ok {
		candidates = append(candidates, candidate{key: def, outcome: ratedomain.OutcomeDefault})
	}
	return candidates
}

// applyLive walks candidates against the cache and the live store. A live
// rate found under a substitute key keeps its source but is reported with the
// substitute's outcome and capped confidence. The store is not queried again
// once it has failed.
func (s *Service) applyLive(ctx context.Context, res *ratedomain.Resolution, rateType ratedomain.RateType, candidates []candidate, asOf civil.Date) bool {
	storeDown := false
	for i, c := range candidates {
		if ctx.Err() != nil {
			return false
		}
		record, ok, failed := s.lookupLive(ctx, rateType, c.key, asOf, !storeDown)
		storeDown = storeDown || failed
		if !ok {
			continue
		}
		applyRecord(res, record)
		if i > 0 {
			res.Notes = append(res.Notes, fmt.Sprintf("no rate for %q, used %q", res.LookupKey, c.key))
			res.LookupKey = c.key
			res.Outcome = c.outcome
			res.Confidence = min(res.Confidence, confidenceFor(c.outcome))
		}
		return true
	}
	return false
}

// lookupLive consults the cache, then the store when queryStore is set.
// failed reports a store error other than ctx's own cancellation.
func (s *Service) lookupLive(ctx context.Context, rateType ratedomain.RateType, key string, asOf civil.Date, queryStore bool) (record ratedomain.RateRecord, ok bool, failed bool) {
	cacheKey := ratecache.Key{RateType: rateType, LookupKey: key, AsOf: asOf}
	if cached, hit := s.cache.Get(ctx, cacheKey); hit && cached.Value.IsPositive() {
		return cached, true, false
	}
	if s.store == nil || !queryStore {
		return ratedomain.RateRecord{}, false, false
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.engine.Get().StoreTimeout)
	found, err := s.store.Query(queryCtx, rateType, key, asOf)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return ratedomain.RateRecord{}, false, false
		}
		s.log.Warn("rate store query failed, using fallback table",
			zap.String("rate_type", string(rateType)),
			zap.String("lookup_key", key),
			zap.Error(err),
		)
		s.metrics.RecordStoreError(ctx, string(rateType))
		return ratedomain.RateRecord{}, false, true
	}
	if found == nil {
		return ratedomain.RateRecord{}, false, false
	}
	if !found.Value.IsPositive() {
		s.log.Warn("ignoring non-positive live rate",
			zap.String("rate_type", string(rateType)),
			zap.String("lookup_key", key),
			zap.String("value", found.Value.String()),
		)
		return ratedomain.RateRecord{}, false, false
	}

	s.cache.Set(ctx, cacheKey, *found)
	return *found, true, false
}

func confidenceFor(outcome ratedomain.Outcome) int {
	if outcome == ratedomain.OutcomeDefault {
		return ratedomain.ConfidenceDefault
	}
	return ratedomain.ConfidenceFallback
}

func applyRecord(res *ratedomain.Resolution, record ratedomain.RateRecord) {
	effective := record.Effective()
	res.Value = record.Value
	res.EffectiveDate = &effective
	res.Citation = record.Citation
	res.SourceLabel = strings.TrimSpace(record.SourceLabel)
	if res.SourceLabel == "" {
		res.SourceLabel = ratedomain.SourceLabelLive
	}
	res.Outcome = ratedomain.OutcomeLive
	res.Verified = record.VerificationStatus == ratedomain.VerificationVerified
	if res.Verified {
		res.Confidence = ratedomain.ConfidenceLiveVerified
	} else {
		res.Confidence = ratedomain.ConfidenceLiveUnverified
	}
	if record.Unit != "" {
		res.Unit = record.Unit
	}
}

// applyFallback walks the candidates through the fallback table. Only entries
// effective on or before asOf answer.
func (s *Service) applyFallback(res *ratedomain.Resolution, rateType ratedomain.RateType, candidates []candidate, asOf civil.Date) {
	key := candidates[0].key
	if s.fallback != nil {
		for _, c := range candidates {
			entry, ok := s.fallback.Lookup(rateType, c.key, asOf)
			if !ok {
				continue
			}
			if c.key != key {
				res.Notes = append(res.Notes, fmt.Sprintf("no rate for %q, used %q", key, c.key))
			}
			effective := entry.EffectiveDate
			res.LookupKey = c.key
			res.Value = entry.Value
			res.EffectiveDate = &effective
			res.Citation = entry.Citation
			res.SourceLabel = ratedomain.SourceLabelFallback
			res.Outcome = c.outcome
			res.Verified = entry.Verified
			res.Confidence = confidenceFor(c.outcome)
			return
		}
	}

	s.log.Warn("rate unresolved",
		zap.String("rate_type", string(rateType)),
		zap.String("lookup_key", key),
		zap.String("as_of", asOf.String()),
	)
	res.Citation = ratedomain.CitationUnavailable
	res.SourceLabel = ratedomain.SourceLabelUnavailable
	res.Outcome = ratedomain.OutcomeUnresolved
	res.Confidence = ratedomain.ConfidenceUnresolved
}

// Publish appends a new record. Existing rows are never modified; a record
// with the same (rate_type, lookup_key, effective_date) is rejected.
func (s *Service) Publish(ctx context.Context, req ratedomain.PublishRequest) (*ratedomain.RateRecord, error) {
	if _, ok := ratedomain.ParseRateType(string(req.RateType)); !ok {
		return nil, ratedomain.ErrInvalidRateType
	}
	if strings.TrimSpace(req.LookupKey) == "" {
		return nil, ratedomain.ErrInvalidLookupKey
	}
	nk := ratedomain.NormalizeKey(req.RateType, req.LookupKey)
	if nk.GradeDefaulted() {
		return nil, ratedomain.ErrInvalidLookupKey
	}
	if !req.EffectiveDate.IsValid() {
		return nil, ratedomain.ErrInvalidEffectiveDate
	}
	if !req.Value.IsPositive() {
		return nil, ratedomain.ErrInvalidValue
	}
	citation := strings.TrimSpace(req.Citation)
	if citation == "" {
		return nil, ratedomain.ErrInvalidCitation
	}
	status := req.VerificationStatus
	switch status {
	case "":
		status = ratedomain.VerificationUnverified
	case ratedomain.VerificationVerified, ratedomain.VerificationUnverified:
	default:
		return nil, ratedomain.ErrInvalidVerification
	}
	sourceLabel := strings.TrimSpace(req.SourceLabel)
	if sourceLabel == "" {
		sourceLabel = ratedomain.SourceLabelLive
	}

	record := &ratedomain.RateRecord{
		ID:                 s.genID.Generate(),
		RateType:           req.RateType,
		LookupKey:          nk.Key,
		EffectiveDate:      ratedomain.DateTime(req.EffectiveDate),
		Value:              req.Value,
		Unit:               ratedomain.UnitFor(req.RateType),
		Citation:           citation,
		SourceLabel:        sourceLabel,
		VerificationStatus: status,
		CreatedAt:          s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, s.db, record); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, ratedomain.ErrAlreadyPublished
		}
		return nil, err
	}

	s.log.Info("rate published",
		zap.String("rate_type", string(record.RateType)),
		zap.String("lookup_key", record.LookupKey),
		zap.String("effective_date", req.EffectiveDate.String()),
	)
	return record, nil
}

// History lists every record published for a key, oldest first.
func (s *Service) History(ctx context.Context, rateType ratedomain.RateType, lookupKey string) ([]ratedomain.RateRecord, error) {
	if _, ok := ratedomain.ParseRateType(string(rateType)); !ok {
		return nil, ratedomain.ErrInvalidRateType
	}
	nk := ratedomain.NormalizeKey(rateType, lookupKey)
	return s.repo.ListByKey(ctx, s.db, rateType, nk.Key)
}

var _ ratedomain.Service = (*Service)(nil)
