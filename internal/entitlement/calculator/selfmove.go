package calculator

import (
	"github.com/shopspring/decimal"
	entdomain "github.com/smallbiznis/pcsengine/internal/entitlement/domain"
	ratedomain "github.com/smallbiznis/pcsengine/internal/rate/domain"
)

// SelfMove reimburses a member-arranged move. Weight is capped at the grade's
// allowance before the rate applies. A move without weight or distance is an
// intentional zero with confidence 0, never a computed default.
func SelfMove(in entdomain.SelfMoveInput, weightCap, rate ratedomain.Resolution) (entdomain.EntitlementLine, error) {
	if in.WeightLbs.IsNegative() {
		return entdomain.EntitlementLine{}, negative("weight_lbs", in.WeightLbs)
	}
	if in.DistanceMiles.IsNegative() {
		return entdomain.EntitlementLine{}, negative("distance_miles", in.DistanceMiles)
	}

	line := lineFrom(entdomain.TypeSelfMove, rate)
	breakdown := &entdomain.SelfMoveBreakdown{
		WeightLbs:     in.WeightLbs,
		WeightCapLbs:  weightCap.Value,
		WeightUsedLbs: decimal.Zero,
		DistanceMiles: in.DistanceMiles,
	}
	line.SelfMove = breakdown

	if !in.Claimed() {
		line.Confidence = 0
		line.Reason = entdomain.ReasonNotClaimed
		return line, nil
	}
	if !weightCap.Resolved() {
		return unavailable(line, "no weight allowance for "+weightCap.LookupKey), nil
	}
	if !rate.Resolved() {
		return unavailable(line, "no self-move rate for "+rate.LookupKey), nil
	}

	breakdown.WeightUsedLbs = decimal.Min(in.WeightLbs, weightCap.Value)
	breakdown.Capped = in.WeightLbs.GreaterThan(weightCap.Value)

	line.AmountCents = ToCents(breakdown.WeightUsedLbs.Mul(in.DistanceMiles).Mul(rate.Value))
	line.Confidence = min(rate.Confidence, weightCap.Confidence)
	line.Reason = entdomain.ReasonComputed
	return line, nil
}
