package calculator

import (
	"fmt"

	entdomain "github.com/smallbiznis/pcsengine/internal/entitlement/domain"
	ratedomain "github.com/smallbiznis/pcsengine/internal/rate/domain"
)

// LegInput pairs a claimed lodging leg with the ceiling resolved for its
// locality.
type LegInput struct {
	Leg     entdomain.LodgingLeg
	Ceiling ratedomain.Resolution
}

// Lodging computes temporary lodging for both legs. Each leg is capped
// independently; a leg that is not claimed or has no ceiling contributes 0
// without affecting the other.
func Lodging(origin, destination LegInput, maxNights int) (entdomain.EntitlementLine, error) {
	originLeg, err := lodgingLeg("origin", origin, maxNights)
	if err != nil {
		return entdomain.EntitlementLine{}, err
	}
	destinationLeg, err := lodgingLeg("destination", destination, maxNights)
	if err != nil {
		return entdomain.EntitlementLine{}, err
	}

	// Provenance reflects the weakest ceiling that contributed.
	provenance := destination.Ceiling
	claimed := 0
	for _, in := range []LegInput{origin, destination} {
		if !in.Leg.Claimed() {
			continue
		}
		if claimed == 0 || in.Ceiling.Confidence < provenance.Confidence {
			provenance = in.Ceiling
		}
		claimed++
	}

	line := lineFrom(entdomain.TypeLodging, provenance)
	line.Lodging = &entdomain.LodgingBreakdown{Origin: originLeg, Destination: destinationLeg}
	line.AmountCents = originLeg.AmountCents + destinationLeg.AmountCents

	switch {
	case originLeg.Reason == entdomain.ReasonComputed || destinationLeg.Reason == entdomain.ReasonComputed:
		line.Reason = entdomain.ReasonComputed
	case originLeg.Reason == entdomain.ReasonRateUnavailable || destinationLeg.Reason == entdomain.ReasonRateUnavailable:
		line.Reason = entdomain.ReasonRateUnavailable
		line.Confidence = 0
	default:
		line.Reason = entdomain.ReasonNotClaimed
	}
	return line, nil
}

func lodgingLeg(name string, in LegInput, maxNights int) (entdomain.LegBreakdown, error) {
	if in.Leg.Nights < 0 || in.Leg.NightlyRateCents < 0 {
		return entdomain.LegBreakdown{}, fmt.Errorf("%w: %s lodging nights=%d nightly_rate_cents=%d",
			ErrNegativeInput, name, in.Leg.Nights, in.Leg.NightlyRateCents)
	}

	out := entdomain.LegBreakdown{
		Locality:         in.Ceiling.LookupKey,
		NightsClaimed:    in.Leg.Nights,
		NightlyRateCents: in.Leg.NightlyRateCents,
		Citation:         in.Ceiling.Citation,
		SourceLabel:      in.Ceiling.SourceLabel,
		Outcome:          in.Ceiling.Outcome,
	}
	if !in.Leg.Claimed() {
		out.Reason = entdomain.ReasonNotClaimed
		return out, nil
	}
	if !in.Ceiling.Resolved() {
		out.Reason = entdomain.ReasonRateUnavailable
		return out, nil
	}

	out.NightsAllowed = in.Leg.Nights
	if maxNights > 0 && out.NightsAllowed > maxNights {
		out.NightsAllowed = maxNights
	}
	out.NightlyCeilingCents = ToCents(in.Ceiling.Value)
	out.NightlyAllowedCents = min(in.Leg.NightlyRateCents, out.NightlyCeilingCents)
	out.AmountCents = int64(out.NightsAllowed) * out.NightlyAllowedCents
	out.Reason = entdomain.ReasonComputed
	return out, nil
}
