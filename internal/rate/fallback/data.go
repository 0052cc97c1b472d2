package fallback

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/smallbiznis/pcsengine/internal/grade"
	ratedomain "github.com/smallbiznis/pcsengine/internal/rate/domain"
)

func date(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

var versions = []Version{
	{Name: "pcs-2023.1", EffectiveDate: date(2023, 1, 1)},
	{Name: "pcs-2024.1", EffectiveDate: date(2024, 1, 1)},
	{Name: "pcs-2025.1", EffectiveDate: date(2025, 1, 1)},
}

// band is a without/with dependents pair in whole dollars or pounds.
type band [2]int64

var enlistedJunior = []grade.Grade{"E-1", "E-2", "E-3", "E-4"}

var relocation2025 = map[grade.Grade]band{
	"E-5": {2243, 3062}, "E-6": {2466, 3342}, "E-7": {2677, 3605}, "E-8": {2891, 3839}, "E-9": {3152, 4111},
	"W-1": {2437, 3162}, "W-2": {2819, 3481}, "W-3": {3150, 3711}, "W-4": {3315, 4003}, "W-5": {3632, 4363},
	"O-1E": {2729, 3407}, "O-2E": {2968, 3658}, "O-3E": {3189, 3981},
	"O-1": {2285, 2996}, "O-2": {2653, 3228}, "O-3": {3094, 3698}, "O-4": {3610, 4158},
	"O-5": {3873, 4557}, "O-6": {3951, 4730},
}

var relocation2024 = map[grade.Grade]band{
	"E-5": {2165, 2955}, "E-6": {2380, 3225}, "E-7": {2583, 3479}, "E-8": {2790, 3705}, "E-9": {3042, 3967},
	"W-1": {2352, 3051}, "W-2": {2720, 3359}, "W-3": {3040, 3581}, "W-4": {3199, 3863}, "W-5": {3505, 4210},
	"O-1E": {2633, 3288}, "O-2E": {2864, 3530}, "O-3E": {3077, 3842},
	"O-1": {2205, 2891}, "O-2": {2560, 3115}, "O-3": {2986, 3569}, "O-4": {3484, 4012},
	"O-5": {3737, 4398}, "O-6": {3813, 4564},
}

var relocation2023 = map[grade.Grade]band{
	"E-5": {2057, 2808}, "E-6": {2261, 3065}, "E-7": {2455, 3306}, "E-8": {2652, 3521}, "E-9": {2891, 3770},
	"W-1": {2235, 2900}, "W-2": {2585, 3192}, "W-3": {2889, 3403}, "W-4": {3040, 3671}, "W-5": {3331, 4001},
	"O-1E": {2502, 3125}, "O-2E": {2722, 3355}, "O-3E": {2924, 3651},
	"O-1": {2096, 2747}, "O-2": {2433, 2960}, "O-3": {2838, 3392}, "O-4": {3311, 3813},
	"O-5": {3552, 4180}, "O-6": {3624, 4338},
}

var weightAllowance = map[grade.Grade]band{
	"E-5": {7000, 9000}, "E-6": {8000, 11000}, "E-7": {11000, 13000}, "E-8": {12000, 14000}, "E-9": {13000, 15000},
	"O-1": {10000, 12000}, "O-2": {12500, 13500}, "O-3": {13000, 14500}, "O-4": {14000, 17000}, "O-5": {16000, 17500},
	"W-1": {10000, 12000}, "W-2": {12500, 13500}, "W-3": {13000, 14500}, "W-4": {14000, 17000}, "W-5": {16000, 17500},
	"O-1E": {10000, 12000}, "O-2E": {12500, 13500}, "O-3E": {13000, 14500},
}

var basePay2025 = map[grade.Grade]int64{
	"E-1": 2017, "E-2": 2261, "E-3": 2378, "E-4": 2634, "E-5": 2873, "E-6": 3136, "E-7": 3626, "E-8": 5216, "E-9": 6371,
	"W-1": 3826, "W-2": 4358, "W-3": 4925, "W-4": 5393, "W-5": 9602,
	"O-1E": 5580, "O-2E": 6337, "O-3E": 7208,
	"O-1": 3826, "O-2": 4409, "O-3": 5102, "O-4": 5803, "O-5": 6725, "O-6": 8068,
	"O-7": 10640, "O-8": 12805, "O-9": 18096, "O-10": 18808,
}

var housingNational = map[grade.Grade]band{
	"E-5": {2000, 2400}, "E-6": {2150, 2600},
	"E-7": {2300, 2800}, "E-8": {2300, 2800}, "E-9": {2300, 2800},
	"W-1": {2300, 2750}, "W-2": {2300, 2750}, "W-3": {2300, 2750}, "W-4": {2300, 2750}, "W-5": {2300, 2750},
	"O-1": {2300, 2700}, "O-2": {2300, 2700}, "O-3": {2300, 2700},
	"O-1E": {2300, 2700}, "O-2E": {2300, 2700}, "O-3E": {2300, 2700},
	"O-4": {2700, 3100}, "O-5": {2700, 3100}, "O-6": {2700, 3100}, "O-7": {2700, 3100},
	"O-8": {2700, 3100}, "O-9": {2700, 3100}, "O-10": {2700, 3100},
}

// perDiem holds M&IE day rates for FY2023, FY2024 and FY2025.
var perDiem = map[string][3]string{
	"CONUS":               {"59", "59", "68"},
	"CA:SAN DIEGO":        {"74", "74", "79"},
	"DC:WASHINGTON":       {"79", "79", "92"},
	"VA:NORFOLK":          {"64", "69", "74"},
	"TX:SAN ANTONIO":      {"64", "69", "74"},
	"WA:SEATTLE":          {"79", "79", "92"},
	"CO:COLORADO SPRINGS": {"64", "64", "74"},
}

const (
	citeRelocation2025 = "JTR 050501 dislocation allowance table, CY2025"
	citeRelocation2024 = "JTR 050501 dislocation allowance table, CY2024"
	citeRelocation2023 = "JTR 050501 dislocation allowance table, CY2023"
	citeMileage        = "JTR 020303 PCS POV mileage rate"
	citePerDiemFY23    = "GSA M&IE rates FY2023"
	citePerDiemFY24    = "GSA M&IE rates FY2024"
	citePerDiemFY25    = "GSA M&IE rates FY2025"
	citeLodging        = "JTR 0544 TLE daily lodging ceiling, CONUS standard"
	citeWeight         = "JTR 050302 HHG weight allowance table"
	citeSelfMove       = "PPM incentive rate constant (unverified against cost-comparison method)"
	citeBasePay        = "DFAS military basic pay table, CY2025"
	citeHousing        = "national BAH placeholder (not locality-adjusted)"
)

func builtinEntries() []Entry {
	var entries []Entry
	add := func(rateType ratedomain.RateType, key string, eff civil.Date, value, citation string, verified bool) {
		entries = append(entries, newEntry(rateType, key, eff, value, citation, verified))
	}
	addBand := func(rateType ratedomain.RateType, g grade.Grade, eff civil.Date, b band, citation string) {
		add(rateType, ratedomain.GradeKey(g, false), eff, itoa(b[0]), citation, true)
		add(rateType, ratedomain.GradeKey(g, true), eff, itoa(b[1]), citation, true)
	}

	for _, g := range enlistedJunior {
		addBand(ratedomain.RateTypeRelocationAllowance, g, date(2025, 1, 1), band{1745, 2688}, citeRelocation2025)
		addBand(ratedomain.RateTypeRelocationAllowance, g, date(2024, 1, 1), band{1684, 2594}, citeRelocation2024)
		addBand(ratedomain.RateTypeRelocationAllowance, g, date(2023, 1, 1), band{1600, 2465}, citeRelocation2023)
		addBand(ratedomain.RateTypeWeightAllowance, g, date(2018, 1, 1), band{5000, 8000}, citeWeight)
		addBand(ratedomain.RateTypeHousingAllowance, g, date(2025, 1, 1), band{1800, 2100}, citeHousing)
	}
	for _, g := range []grade.Grade{"O-7", "O-8", "O-9", "O-10"} {
		addBand(ratedomain.RateTypeRelocationAllowance, g, date(2025, 1, 1), band{4120, 4956}, citeRelocation2025)
		addBand(ratedomain.RateTypeRelocationAllowance, g, date(2024, 1, 1), band{3976, 4783}, citeRelocation2024)
		addBand(ratedomain.RateTypeRelocationAllowance, g, date(2023, 1, 1), band{3777, 4544}, citeRelocation2023)
	}
	for _, g := range []grade.Grade{"O-6", "O-7", "O-8", "O-9", "O-10"} {
		addBand(ratedomain.RateTypeWeightAllowance, g, date(2018, 1, 1), band{18000, 18000}, citeWeight)
	}
	for g, b := range relocation2025 {
		addBand(ratedomain.RateTypeRelocationAllowance, g, date(2025, 1, 1), b, citeRelocation2025)
	}
	for g, b := range relocation2024 {
		addBand(ratedomain.RateTypeRelocationAllowance, g, date(2024, 1, 1), b, citeRelocation2024)
	}
	for g, b := range relocation2023 {
		addBand(ratedomain.RateTypeRelocationAllowance, g, date(2023, 1, 1), b, citeRelocation2023)
	}
	for g, b := range weightAllowance {
		addBand(ratedomain.RateTypeWeightAllowance, g, date(2018, 1, 1), b, citeWeight)
	}
	for g, b := range housingNational {
		addBand(ratedomain.RateTypeHousingAllowance, g, date(2025, 1, 1), b, citeHousing)
	}
	for g, pay := range basePay2025 {
		add(ratedomain.RateTypeBasePay, string(g), date(2025, 1, 1), itoa(pay), citeBasePay, true)
	}

	add(ratedomain.RateTypeMileage, ratedomain.DefaultMileageKey, date(2023, 1, 1), "0.22", citeMileage, true)
	add(ratedomain.RateTypeMileage, ratedomain.DefaultMileageKey, date(2024, 1, 1), "0.21", citeMileage, true)
	add(ratedomain.RateTypeMileage, ratedomain.DefaultMileageKey, date(2025, 1, 1), "0.21", citeMileage, true)

	for locality, rates := range perDiem {
		add(ratedomain.RateTypePerDiem, locality, date(2022, 10, 1), rates[0], citePerDiemFY23, true)
		add(ratedomain.RateTypePerDiem, locality, date(2023, 10, 1), rates[1], citePerDiemFY24, true)
		add(ratedomain.RateTypePerDiem, locality, date(2024, 10, 1), rates[2], citePerDiemFY25, true)
	}

	add(ratedomain.RateTypeLodgingCeiling, ratedomain.DefaultLocality, date(2020, 1, 1), "290", citeLodging, true)

	add(ratedomain.RateTypeSelfMove, ratedomain.DefaultSelfMove, date(2023, 1, 1), "0.00043", citeSelfMove, false)
	add(ratedomain.RateTypeSelfMove, ratedomain.DefaultSelfMove, date(2024, 1, 1), "0.00045", citeSelfMove, false)
	add(ratedomain.RateTypeSelfMove, ratedomain.DefaultSelfMove, date(2025, 1, 1), "0.00047", citeSelfMove, false)

	return entries
}
