// Package calculator holds the pure per-entitlement transforms. Nothing here
// performs I/O; every rate arrives as an already resolved value.
package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	entdomain "github.com/smallbiznis/pcsengine/internal/entitlement/domain"
	ratedomain "github.com/smallbiznis/pcsengine/internal/rate/domain"
)

var ErrNegativeInput = errors.New("negative_input")

var hundred = decimal.NewFromInt(100)

// ToCents converts a major-unit amount to cents.
// Rounding happens only here, half away from zero.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FormatCents renders cents in major units with two decimals.
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func negative(field string, value decimal.Decimal) error {
	return fmt.Errorf("%w: %s=%s", ErrNegativeInput, field, value.String())
}

// lineFrom copies rate provenance into a line of type t.
func lineFrom(t entdomain.EntitlementType, res ratedomain.Resolution) entdomain.EntitlementLine {
	return entdomain.EntitlementLine{
		Type:          t,
		RateUsed:      res.Value,
		RateUnit:      res.Unit,
		EffectiveDate: res.EffectiveDate,
		Citation:      res.Citation,
		SourceLabel:   res.SourceLabel,
		Outcome:       res.Outcome,
		Confidence:    res.Confidence,
	}
}

func unavailable(line entdomain.EntitlementLine, detail string) entdomain.EntitlementLine {
	line.AmountCents = 0
	line.Confidence = 0
	line.Reason = entdomain.ReasonRateUnavailable
	line.Detail = detail
	if line.Citation == "" {
		line.Citation = ratedomain.CitationUnavailable
	}
	if line.SourceLabel == "" {
		line.SourceLabel = ratedomain.SourceLabelUnavailable
	}
	return line
}

// Degraded is the line substituted for a calculator that failed.
func Degraded(t entdomain.EntitlementType, err error) entdomain.EntitlementLine {
	line := entdomain.EntitlementLine{
		Type:        t,
		RateUsed:    decimal.Zero,
		Citation:    ratedomain.CitationUnavailable,
		SourceLabel: ratedomain.SourceLabelUnavailable,
		Outcome:     ratedomain.OutcomeUnresolved,
		Reason:      entdomain.ReasonCalculatorFailure,
	}
	if err != nil {
		line.Detail = err.Error()
	}
	return line
}

// Relocation is the flat allowance for the member's grade and dependency
// band. The resolution already encodes the band.
func Relocation(res ratedomain.Resolution) entdomain.EntitlementLine {
	line := lineFrom(entdomain.TypeRelocationAllowance, res)
	if !res.Resolved() {
		return unavailable(line, "no relocation allowance for "+res.LookupKey)
	}
	line.AmountCents = ToCents(res.Value)
	line.Reason = entdomain.ReasonComputed
	return line
}

// Mileage pays distance at the POV rate.
func Mileage(distance decimal.Decimal, res ratedomain.Resolution) (entdomain.EntitlementLine, error) {
	if distance.IsNegative() {
		return entdomain.EntitlementLine{}, negative("mileage_distance_miles", distance)
	}
	line := lineFrom(entdomain.TypeMileage, res)
	if distance.IsZero() {
		line.Reason = entdomain.ReasonNotClaimed
		return line, nil
	}
	if !res.Resolved() {
		return unavailable(line, "no mileage rate for "+res.LookupKey), nil
	}
	line.AmountCents = ToCents(distance.Mul(res.Value))
	line.Reason = entdomain.ReasonComputed
	return line, nil
}

// PerDiem pays days at the destination locality's daily rate.
func PerDiem(days int, res ratedomain.Resolution) (entdomain.EntitlementLine, error) {
	if days < 0 {
		return entdomain.EntitlementLine{}, fmt.Errorf("%w: per_diem_days=%d", ErrNegativeInput, days)
	}
	line := lineFrom(entdomain.TypePerDiem, res)
	if days == 0 {
		line.Reason = entdomain.ReasonNotClaimed
		return line, nil
	}
	if !res.Resolved() {
		return unavailable(line, "no per diem rate for "+res.LookupKey), nil
	}
	line.AmountCents = ToCents(res.Value.Mul(decimal.NewFromInt(int64(days))))
	line.Reason = entdomain.ReasonComputed
	return line, nil
}
