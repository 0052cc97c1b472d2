package domain

import (
	"context"
)

type Service interface {
	Calculate(ctx context.Context, in ClaimInput) (*CalculationResult, error)
}

// DatesConsistent is false only when both travel dates are present and the
// end precedes the start. Such a claim is still calculated; its dates simply
// do not count as verified.
func (in ClaimInput) DatesConsistent() bool {
	return in.TravelStart == nil || in.TravelEnd == nil || !in.TravelEnd.Before(*in.TravelStart)
}
