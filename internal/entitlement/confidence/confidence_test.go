package confidence

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	entdomain "github.com/smallbiznis/pcsengine/internal/entitlement/domain"
	ratedomain "github.com/smallbiznis/pcsengine/internal/rate/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allPresent() Factors {
	return Factors{
		OrdersPresent:       true,
		WeighTicketsPresent: true,
		DatesVerified:       true,
		RatesLive:           true,
		DistanceVerified:    true,
		ReceiptsComplete:    true,
		GradeRecognized:     true,
	}
}

func TestScore_AllPresent(t *testing.T) {
	report := Score(allPresent())

	assert.Equal(t, 100, report.Overall)
	assert.Equal(t, entdomain.LevelExcellent, report.Level)
	assert.Empty(t, report.Recommendations)
	require.Len(t, report.Factors, 7)
	assert.Equal(t, FactorOrders, report.Factors[0].Name)
	assert.Equal(t, FactorGradeRecognized, report.Factors[6].Name)
}

func TestScore_DeductionsAndOrder(t *testing.T) {
	f := allPresent()
	f.OrdersPresent = false
	f.ReceiptsComplete = false

	report := Score(f)

	assert.Equal(t, 70, report.Overall)
	assert.Equal(t, entdomain.LevelGood, report.Level)
	require.Len(t, report.Recommendations, 2)
	assert.Contains(t, report.Recommendations[0], "orders")
	assert.Contains(t, report.Recommendations[1], "receipts")
	assert.Equal(t, 20, report.Factors[0].Deduction)
}

func TestScore_ClampsAtZero(t *testing.T) {
	report := Score(Factors{})

	assert.Equal(t, 0, report.Overall)
	assert.Equal(t, entdomain.LevelNeedsWork, report.Level)
	assert.Len(t, report.Recommendations, 7)
}

func TestScore_MonotonicInMissingFactors(t *testing.T) {
	f := allPresent()
	previous := Score(f).Overall
	steps := []func(*Factors){
		func(f *Factors) { f.DistanceVerified = false },
		func(f *Factors) { f.WeighTicketsPresent = false },
		func(f *Factors) { f.OrdersPresent = false },
		func(f *Factors) { f.RatesLive = false },
		func(f *Factors) { f.DatesVerified = false },
		func(f *Factors) { f.GradeRecognized = false },
		func(f *Factors) { f.ReceiptsComplete = false },
	}
	for _, step := range steps {
		step(&f)
		current := Score(f).Overall
		assert.LessOrEqual(t, current, previous)
		assert.Equal(t, current, Score(f).Overall)
		previous = current
	}
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, entdomain.LevelExcellent, LevelFor(90))
	assert.Equal(t, entdomain.LevelGood, LevelFor(89))
	assert.Equal(t, entdomain.LevelGood, LevelFor(70))
	assert.Equal(t, entdomain.LevelFair, LevelFor(50))
	assert.Equal(t, entdomain.LevelNeedsWork, LevelFor(49))
}

func TestFactorsFor(t *testing.T) {
	order := civil.Date{Year: 2025, Month: 1, Day: 1}
	in := entdomain.ClaimInput{
		PayGrade:  "E-5",
		OrderDate: &order,
		SelfMove: entdomain.SelfMoveInput{
			WeightLbs:     decimal.NewFromInt(4000),
			DistanceMiles: decimal.NewFromInt(800),
		},
		Documents: entdomain.Documents{DatesVerified: true},
	}
	lines := []entdomain.EntitlementLine{
		{Reason: entdomain.ReasonComputed, Outcome: ratedomain.OutcomeLive},
		{Reason: entdomain.ReasonComputed, Outcome: ratedomain.OutcomeFallback},
	}

	f := FactorsFor(in, lines, true)

	assert.True(t, f.OrdersPresent)
	assert.False(t, f.WeighTicketsPresent)
	assert.True(t, f.DatesVerified)
	assert.False(t, f.RatesLive)
	assert.True(t, f.GradeRecognized)
}

func TestFactorsFor_ReversedTravelDatesAreUnverified(t *testing.T) {
	start := civil.Date{Year: 2025, Month: 2, Day: 1}
	end := civil.Date{Year: 2025, Month: 1, Day: 1}
	in := entdomain.ClaimInput{
		PayGrade:    "E-5",
		TravelStart: &start,
		TravelEnd:   &end,
		Documents:   entdomain.Documents{DatesVerified: true},
	}

	assert.False(t, FactorsFor(in, nil, true).DatesVerified)

	in.TravelEnd = &start
	assert.True(t, FactorsFor(in, nil, true).DatesVerified)
}

func TestFactorsFor_NoSelfMoveNeedsNoTickets(t *testing.T) {
	lines := []entdomain.EntitlementLine{
		{Reason: entdomain.ReasonComputed, Outcome: ratedomain.OutcomeLive},
		{Reason: entdomain.ReasonNotClaimed, Outcome: ratedomain.OutcomeFallback},
	}

	f := FactorsFor(entdomain.ClaimInput{PayGrade: "E-5"}, lines, false)

	assert.True(t, f.WeighTicketsPresent)
	assert.True(t, f.RatesLive)
	assert.False(t, f.OrdersPresent)
	assert.False(t, f.GradeRecognized)
}
