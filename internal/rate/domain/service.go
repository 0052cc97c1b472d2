package domain

import (
	"context"
	"errors"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Resolver resolves a rate through cache, store and fallback table. The only
// error it returns is the context's.
type Resolver interface {
	Resolve(ctx context.Context, rateType RateType, lookupKey string, asOf civil.Date) (Resolution, error)
}

type Service interface {
	Resolver
	Publish(ctx context.Context, req PublishRequest) (*RateRecord, error)
	History(ctx context.Context, rateType RateType, lookupKey string) ([]RateRecord, error)
}

type PublishRequest struct {
	RateType           RateType           `json:"rate_type"`
	LookupKey          string             `json:"lookup_key"`
	EffectiveDate      civil.Date         `json:"effective_date"`
	Value              decimal.Decimal    `json:"value"`
	Citation           string             `json:"citation"`
	SourceLabel        string             `json:"source_label"`
	VerificationStatus VerificationStatus `json:"verification_status"`
}

var (
	ErrInvalidRateType      = errors.New("invalid_rate_type")
	ErrInvalidLookupKey     = errors.New("invalid_lookup_key")
	ErrInvalidEffectiveDate = errors.New("invalid_effective_date")
	ErrInvalidValue         = errors.New("invalid_value")
	ErrInvalidCitation      = errors.New("invalid_citation")
	ErrInvalidVerification  = errors.New("invalid_verification_status")
	ErrAlreadyPublished     = errors.New("rate_already_published")
)
