// Package confidence scores how complete and verifiable a claim's inputs are.
// The score is advisory and never blocks a calculation.
package confidence

import (
	entdomain "github.com/smallbiznis/pcsengine/internal/entitlement/domain"
	ratedomain "github.com/smallbiznis/pcsengine/internal/rate/domain"
)

const (
	FactorOrders          = "orders_present"
	FactorWeighTickets    = "weigh_tickets_present"
	FactorDatesVerified   = "dates_verified"
	FactorRatesLive       = "rates_live"
	FactorDistance        = "distance_verified"
	FactorReceipts        = "receipts_complete"
	FactorGradeRecognized = "pay_grade_recognized"
)

type rule struct {
	name           string
	deduction      int
	recommendation string
}

// rules are evaluated and reported in this order.
var rules = []rule{
	{FactorOrders, 20, "Add the date on your PCS orders so rates can be pinned to it."},
	{FactorWeighTickets, 15, "Upload empty and full weigh tickets for your self-move."},
	{FactorDatesVerified, 15, "Confirm your travel start and end dates against your orders."},
	{FactorRatesLive, 10, "Some figures use built-in fallback rates; verify them with your finance office."},
	{FactorDistance, 10, "Verify the official distance between your old and new duty stations."},
	{FactorReceipts, 10, "Keep lodging receipts for every night you claim."},
	{FactorGradeRecognized, 10, "Enter your pay grade as shown on your LES, for example E-5 or O-3."},
}

// Factors are the boolean signals the score is derived from.
type Factors struct {
	OrdersPresent       bool
	WeighTicketsPresent bool
	DatesVerified       bool
	RatesLive           bool
	DistanceVerified    bool
	ReceiptsComplete    bool
	GradeRecognized     bool
}

func (f Factors) present(name string) bool {
	switch name {
	case FactorOrders:
		return f.OrdersPresent
	case FactorWeighTickets:
		return f.WeighTicketsPresent
	case FactorDatesVerified:
		return f.DatesVerified
	case FactorRatesLive:
		return f.RatesLive
	case FactorDistance:
		return f.DistanceVerified
	case FactorReceipts:
		return f.ReceiptsComplete
	case FactorGradeRecognized:
		return f.GradeRecognized
	}
	return false
}

// FactorsFor derives the signals from a claim and its computed lines.
// Weigh tickets only matter when a self-move is claimed.
func FactorsFor(in entdomain.ClaimInput, lines []entdomain.EntitlementLine, gradeRecognized bool) Factors {
	ratesLive := true
	for _, line := range lines {
		if line.Reason == entdomain.ReasonComputed && line.Outcome != ratedomain.OutcomeLive {
			ratesLive = false
		}
	}
	return Factors{
		OrdersPresent:       in.OrderDate != nil,
		WeighTicketsPresent: in.Documents.WeighTickets || !in.SelfMove.Claimed(),
		DatesVerified:       in.Documents.DatesVerified && in.DatesConsistent(),
		RatesLive:           ratesLive,
		DistanceVerified:    in.Documents.DistanceVerified,
		ReceiptsComplete:    in.Documents.ReceiptsComplete,
		GradeRecognized:     gradeRecognized,
	}
}

// Score starts at 100 and deducts a fixed amount per missing factor.
func Score(f Factors) entdomain.ConfidenceReport {
	report := entdomain.ConfidenceReport{
		Overall:         100,
		Factors:         make([]entdomain.ConfidenceFactor, 0, len(rules)),
		Recommendations: []string{},
	}
	for _, r := range rules {
		factor := entdomain.ConfidenceFactor{Name: r.name, Present: f.present(r.name)}
		if !factor.Present {
			factor.Deduction = r.deduction
			report.Overall -= r.deduction
			report.Recommendations = append(report.Recommendations, r.recommendation)
		}
		report.Factors = append(report.Factors, factor)
	}
	report.Overall = max(0, min(100, report.Overall))
	report.Level = LevelFor(report.Overall)
	return report
}

func LevelFor(score int) entdomain.ConfidenceLevel {
	switch {
	case score >= 90:
		return entdomain.LevelExcellent
	case score >= 70:
		return entdomain.LevelGood
	case score >= 50:
		return entdomain.LevelFair
	default:
		return entdomain.LevelNeedsWork
	}
}
