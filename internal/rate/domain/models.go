package domain

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type RateType string

const (
	RateTypeRelocationAllowance RateType = "relocation_allowance"
	RateTypeMileage             RateType = "mileage_rate"
	RateTypePerDiem             RateType = "per_diem"
	RateTypeWeightAllowance     RateType = "weight_allowance"
	RateTypeBasePay             RateType = "base_pay"
	RateTypeHousingAllowance    RateType = "housing_allowance"
	RateTypeLodgingCeiling      RateType = "lodging_ceiling"
	RateTypeSelfMove            RateType = "self_move_rate"
)

var rateTypes = []RateType{
	RateTypeRelocationAllowance,
	RateTypeMileage,
	RateTypePerDiem,
	RateTypeWeightAllowance,
	RateTypeBasePay,
	RateTypeHousingAllowance,
	RateTypeLodgingCeiling,
	RateTypeSelfMove,
}

func RateTypes() []RateType {
	out := make([]RateType, len(rateTypes))
	copy(out, rateTypes)
	return out
}

func ParseRateType(raw string) (RateType, bool) {
	for _, t := range rateTypes {
		if string(t) == raw {
			return t, true
		}
	}
	return "", false
}

type Unit string

const (
	UnitUSD             Unit = "USD"
	UnitUSDPerMile      Unit = "USD_PER_MILE"
	UnitUSDPerDay       Unit = "USD_PER_DAY"
	UnitUSDPerNight     Unit = "USD_PER_NIGHT"
	UnitPounds          Unit = "LBS"
	UnitUSDPerPoundMile Unit = "USD_PER_LB_MILE"
)

// UnitFor returns the unit every record of rateType is expressed in.
func UnitFor(rateType RateType) Unit {
	switch rateType {
	case RateTypeMileage:
		return UnitUSDPerMile
	case RateTypePerDiem:
		return UnitUSDPerDay
	case RateTypeLodgingCeiling:
		return UnitUSDPerNight
	case RateTypeWeightAllowance:
		return UnitPounds
	case RateTypeSelfMove:
		return UnitUSDPerPoundMile
	default:
		return UnitUSD
	}
}

type VerificationStatus string

const (
	VerificationVerified   VerificationStatus = "verified"
	VerificationUnverified VerificationStatus = "unverified"
)

// RateRecord is one point in the time series of a (rate_type, lookup_key).
// Rows are never updated; a newer effective date supersedes them.
type RateRecord struct {
	ID                 snowflake.ID       `json:"id" gorm:"primaryKey"`
	RateType           RateType           `json:"rate_type" gorm:"type:text;not null;uniqueIndex:ux_rate_records_key,priority:1"`
	LookupKey          string             `json:"lookup_key" gorm:"type:text;not null;uniqueIndex:ux_rate_records_key,priority:2"`
	EffectiveDate      time.Time          `json:"effective_date" gorm:"type:date;not null;uniqueIndex:ux_rate_records_key,priority:3"`
	Value              decimal.Decimal    `json:"value" gorm:"type:numeric(14,6);not null"`
	Unit               Unit               `json:"unit" gorm:"type:text;not null"`
	Citation           string             `json:"citation" gorm:"type:text;not null"`
	SourceLabel        string             `json:"source_label" gorm:"type:text;not null"`
	VerificationStatus VerificationStatus `json:"verification_status" gorm:"type:text;not null"`
	CreatedAt          time.Time          `json:"created_at" gorm:"not null"`
}

func (RateRecord) TableName() string { return "rate_records" }

func (r RateRecord) Effective() civil.Date {
	return civil.DateOf(r.EffectiveDate.UTC())
}

// DateTime converts a calendar date to the UTC midnight stored in
// effective_date columns.
func DateTime(d civil.Date) time.Time {
	return d.In(time.UTC)
}

type Outcome string

const (
	OutcomeLive       Outcome = "live"
	OutcomeFallback   Outcome = "fallback"
	OutcomeDefault    Outcome = "default"
	OutcomeUnresolved Outcome = "unresolved"
)

const (
	ConfidenceLiveVerified   = 100
	ConfidenceLiveUnverified = 85
	ConfidenceFallback       = 70
	ConfidenceDefault        = 40
	ConfidenceUnresolved     = 0

	SourceLabelLive        = "live"
	SourceLabelFallback    = "fallback"
	SourceLabelUnavailable = "unavailable"
	CitationUnavailable    = "fallback/unavailable"
)

// Resolution is the answer to one rate lookup together with its provenance.
// Value is zero only when Outcome is OutcomeUnresolved.
type Resolution struct {
	RateType      RateType        `json:"rate_type"`
	RequestedKey  string          `json:"requested_key"`
	LookupKey     string          `json:"lookup_key"`
	AsOf          civil.Date      `json:"as_of"`
	Value         decimal.Decimal `json:"value"`
	Unit          Unit            `json:"unit"`
	EffectiveDate *civil.Date     `json:"effective_date,omitempty"`
	Citation      string          `json:"citation"`
	SourceLabel   string          `json:"source_label"`
	Outcome       Outcome         `json:"outcome"`
	Confidence    int             `json:"confidence"`
	Verified      bool            `json:"verified"`
	Notes         []string        `json:"notes,omitempty"`
}

func (r Resolution) Resolved() bool {
	return r.Outcome != OutcomeUnresolved && r.Value.IsPositive()
}

func (r Resolution) Live() bool {
	return r.Outcome == OutcomeLive
}
