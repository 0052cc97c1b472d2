package domain

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/pcsengine/internal/grade"
	ratedomain "github.com/smallbiznis/pcsengine/internal/rate/domain"
)

// ClaimInput is the caller's relocation claim. The engine never mutates it.
type ClaimInput struct {
	ClaimID             string          `json:"claim_id,omitempty"`
	PayGrade            string          `json:"pay_grade"`
	HasDependents       bool            `json:"has_dependents"`
	OrderDate           *civil.Date     `json:"order_date,omitempty"`
	TravelStart         *civil.Date     `json:"travel_start,omitempty"`
	TravelEnd           *civil.Date     `json:"travel_end,omitempty"`
	Origin              string          `json:"origin,omitempty"`
	Destination         string          `json:"destination,omitempty"`
	MileageDistance     decimal.Decimal `json:"mileage_distance_miles"`
	OriginLodging       LodgingLeg      `json:"origin_lodging"`
	DestinationLodging  LodgingLeg      `json:"destination_lodging"`
	PerDiemDays         int             `json:"per_diem_days"`
	DestinationLocality string          `json:"destination_locality,omitempty"`
	SelfMove            SelfMoveInput   `json:"self_move"`
	Documents           Documents       `json:"documents"`
}

type LodgingLeg struct {
	Nights           int    `json:"nights"`
	NightlyRateCents int64  `json:"nightly_rate_cents"`
	Locality         string `json:"locality,omitempty"`
}

func (l LodgingLeg) Claimed() bool {
	return l.Nights > 0 && l.NightlyRateCents > 0
}

type SelfMoveInput struct {
	WeightLbs     decimal.Decimal `json:"weight_lbs"`
	DistanceMiles decimal.Decimal `json:"distance_miles"`
}

// Claimed reports whether both weight and distance were supplied.
func (s SelfMoveInput) Claimed() bool {
	return s.WeightLbs.IsPositive() && s.DistanceMiles.IsPositive()
}

// Documents records which supporting evidence the member has on hand.
type Documents struct {
	WeighTickets     bool `json:"weigh_tickets"`
	DatesVerified    bool `json:"dates_verified"`
	DistanceVerified bool `json:"distance_verified"`
	ReceiptsComplete bool `json:"receipts_complete"`
}

type EntitlementType string

const (
	TypeRelocationAllowance EntitlementType = "relocation_allowance"
	TypeLodging             EntitlementType = "temporary_lodging"
	TypeMileage             EntitlementType = "mileage"
	TypePerDiem             EntitlementType = "per_diem"
	TypeSelfMove            EntitlementType = "self_move"
)

// Types lists entitlement types in result order.
func Types() []EntitlementType {
	return []EntitlementType{TypeRelocationAllowance, TypeLodging, TypeMileage, TypePerDiem, TypeSelfMove}
}

// Reason says why a line carries the amount it does. A zero amount is only
// meaningful together with its reason.
type Reason string

const (
	ReasonComputed          Reason = "computed"
	ReasonNotClaimed        Reason = "not_claimed"
	ReasonRateUnavailable   Reason = "rate_unavailable"
	ReasonCalculatorFailure Reason = "calculator_failure"
)

type EntitlementLine struct {
	Type          EntitlementType    `json:"type"`
	AmountCents   int64              `json:"amount_cents"`
	Amount        string             `json:"amount"`
	RateUsed      decimal.Decimal    `json:"rate_used"`
	RateUnit      ratedomain.Unit    `json:"rate_unit,omitempty"`
	EffectiveDate *civil.Date        `json:"effective_date,omitempty"`
	Citation      string             `json:"citation"`
	SourceLabel   string             `json:"source_label"`
	Outcome       ratedomain.Outcome `json:"outcome"`
	Confidence    int                `json:"confidence"`
	Reason        Reason             `json:"reason"`
	Detail        string             `json:"detail,omitempty"`
	Lodging       *LodgingBreakdown  `json:"lodging,omitempty"`
	SelfMove      *SelfMoveBreakdown `json:"self_move,omitempty"`
}

type LodgingBreakdown struct {
	Origin      LegBreakdown `json:"origin"`
	Destination LegBreakdown `json:"destination"`
}

type LegBreakdown struct {
	Locality            string             `json:"locality"`
	NightsClaimed       int                `json:"nights_claimed"`
	NightsAllowed       int                `json:"nights_allowed"`
	NightlyRateCents    int64              `json:"nightly_rate_cents"`
	NightlyCeilingCents int64              `json:"nightly_ceiling_cents"`
	NightlyAllowedCents int64              `json:"nightly_allowed_cents"`
	AmountCents         int64              `json:"amount_cents"`
	Citation            string             `json:"citation"`
	SourceLabel         string             `json:"source_label"`
	Outcome             ratedomain.Outcome `json:"outcome"`
	Reason              Reason             `json:"reason"`
}

type SelfMoveBreakdown struct {
	WeightLbs     decimal.Decimal `json:"weight_lbs"`
	WeightCapLbs  decimal.Decimal `json:"weight_cap_lbs"`
	WeightUsedLbs decimal.Decimal `json:"weight_used_lbs"`
	DistanceMiles decimal.Decimal `json:"distance_miles"`
	Capped        bool            `json:"capped"`
}

type GradeSummary struct {
	Input   string        `json:"input"`
	Grade   grade.Grade   `json:"grade"`
	Outcome grade.Outcome `json:"outcome"`
}

type ConfidenceLevel string

const (
	LevelExcellent ConfidenceLevel = "excellent"
	LevelGood      ConfidenceLevel = "good"
	LevelFair      ConfidenceLevel = "fair"
	LevelNeedsWork ConfidenceLevel = "needs_work"
)

type ConfidenceFactor struct {
	Name      string `json:"name"`
	Present   bool   `json:"present"`
	Deduction int    `json:"deduction"`
}

type ConfidenceReport struct {
	Overall         int                `json:"overall"`
	Level           ConfidenceLevel    `json:"level"`
	Factors         []ConfidenceFactor `json:"factors"`
	Recommendations []string           `json:"recommendations"`
}

// CalculationResult is built once per request and not modified afterwards.
type CalculationResult struct {
	ClaimID       string            `json:"claim_id"`
	Grade         GradeSummary      `json:"grade"`
	HasDependents bool              `json:"has_dependents"`
	Lines         []EntitlementLine `json:"lines"`
	TotalCents    int64             `json:"total_cents"`
	Total         string            `json:"total"`
	Notes         []string          `json:"notes,omitempty"`
	Confidence    ConfidenceReport  `json:"confidence"`
	RuleVersion   string            `json:"rule_version"`
	CalculatedAt  time.Time         `json:"calculated_at"`
}

// Line returns the line of type t.
func (r *CalculationResult) Line(t EntitlementType) (EntitlementLine, bool) {
	for _, line := range r.Lines {
		if line.Type == t {
			return line, true
		}
	}
	return EntitlementLine{}, false
}
