// Package fallback holds the static, versioned rate table consulted when the
// rate store is unreachable or has no applicable row.
package fallback

import (
	"fmt"
	"sort"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/pcsengine/internal/grade"
	ratedomain "github.com/smallbiznis/pcsengine/internal/rate/domain"
)

// Version names a release of the table and the date it took effect.
type Version struct {
	Name          string     `json:"name"`
	EffectiveDate civil.Date `json:"effective_date"`
}

type Entry struct {
	RateType      ratedomain.RateType
	LookupKey     string
	EffectiveDate civil.Date
	Value         decimal.Decimal
	Citation      string
	Verified      bool
}

type seriesKey struct {
	rateType ratedomain.RateType
	key      string
}

// Table is immutable after construction and safe for concurrent use.
type Table struct {
	series   map[seriesKey][]Entry
	versions []Version
}

func newEntry(rateType ratedomain.RateType, key string, eff civil.Date, value, citation string, verified bool) Entry {
	return Entry{
		RateType:      rateType,
		LookupKey:     key,
		EffectiveDate: eff,
		Value:         decimal.RequireFromString(value),
		Citation:      citation,
		Verified:      verified,
	}
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }

// New builds a table from entries and versions. Each series is ordered by
// effective date; a duplicate date within a series is an error.
func New(entries []Entry, versions []Version) (*Table, error) {
	t := &Table{series: make(map[seriesKey][]Entry)}
	for _, e := range entries {
		k := seriesKey{rateType: e.RateType, key: e.LookupKey}
		t.series[k] = append(t.series[k], e)
	}
	for k, list := range t.series {
		sort.Slice(list, func(i, j int) bool { return list[i].EffectiveDate.Before(list[j].EffectiveDate) })
		for i := 1; i < len(list); i++ {
			if list[i].EffectiveDate == list[i-1].EffectiveDate {
				return nil, fmt.Errorf("fallback: duplicate %s %q effective %s", k.rateType, k.key, list[i].EffectiveDate)
			}
		}
	}
	t.versions = append([]Version(nil), versions...)
	sort.Slice(t.versions, func(i, j int) bool { return t.versions[i].EffectiveDate.Before(t.versions[j].EffectiveDate) })
	return t, nil
}

// Default returns the built-in table.
func Default() *Table {
	t, err := New(builtinEntries(), versions)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the latest entry effective on or before asOf for an exact
// key. A key whose entries all postdate asOf has no answer.
func (t *Table) Lookup(rateType ratedomain.RateType, key string, asOf civil.Date) (Entry, bool) {
	list := t.series[seriesKey{rateType: rateType, key: key}]
	idx := sort.Search(len(list), func(i int) bool { return list[i].EffectiveDate.After(asOf) })
	if idx == 0 {
		return Entry{}, false
	}
	return list[idx-1], true
}

// Floor is the first date the table answers for every required series: the
// effective date of its earliest version.
func (t *Table) Floor() civil.Date {
	if len(t.versions) == 0 {
		return civil.Date{}
	}
	return t.versions[0].EffectiveDate
}

// Entries returns every entry, ordered by rate type, key and date.
func (t *Table) Entries() []Entry {
	keys := make([]seriesKey, 0, len(t.series))
	for k := range t.series {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].rateType != keys[j].rateType {
			return keys[i].rateType < keys[j].rateType
		}
		return keys[i].key < keys[j].key
	})
	var out []Entry
	for _, k := range keys {
		out = append(out, t.series[k]...)
	}
	return out
}

// VersionAt returns the table version in effect on d, or the earliest
// version when d precedes all of them.
func (t *Table) VersionAt(d civil.Date) Version {
	if len(t.versions) == 0 {
		return Version{}
	}
	current := t.versions[0]
	for _, v := range t.versions {
		if v.EffectiveDate.After(d) {
			break
		}
		current = v
	}
	return current
}

// Validate checks that the table can answer every canonical grade in both
// dependency bands and every fixed key from Floor onwards, with strictly
// positive values. Reference rate types only need to be present.
func (t *Table) Validate() error {
	if len(t.versions) == 0 {
		return fmt.Errorf("fallback: no versions")
	}
	floor := t.Floor()
	for k, list := range t.series {
		for _, e := range list {
			if !e.Value.IsPositive() {
				return fmt.Errorf("fallback: %s %q effective %s has non-positive value %s", k.rateType, k.key, e.EffectiveDate, e.Value)
			}
			if e.Citation == "" {
				return fmt.Errorf("fallback: %s %q effective %s has no citation", k.rateType, k.key, e.EffectiveDate)
			}
		}
	}

	banded := []ratedomain.RateType{
		ratedomain.RateTypeRelocationAllowance,
		ratedomain.RateTypeWeightAllowance,
	}
	for _, g := range grade.All() {
		for _, dep := range []bool{false, true} {
			key := ratedomain.GradeKey(g, dep)
			for _, rt := range banded {
				if !t.coveredFrom(rt, key, floor) {
					return fmt.Errorf("fallback: %s %q not covered from %s", rt, key, floor)
				}
			}
			if !t.has(ratedomain.RateTypeHousingAllowance, key) {
				return fmt.Errorf("fallback: missing %s %q", ratedomain.RateTypeHousingAllowance, key)
			}
		}
		if !t.has(ratedomain.RateTypeBasePay, string(g)) {
			return fmt.Errorf("fallback: missing %s %q", ratedomain.RateTypeBasePay, g)
		}
	}

	fixed := map[ratedomain.RateType]string{
		ratedomain.RateTypeMileage:        ratedomain.DefaultMileageKey,
		ratedomain.RateTypePerDiem:        ratedomain.DefaultLocality,
		ratedomain.RateTypeLodgingCeiling: ratedomain.DefaultLocality,
		ratedomain.RateTypeSelfMove:       ratedomain.DefaultSelfMove,
	}
	for rt, key := range fixed {
		if !t.coveredFrom(rt, key, floor) {
			return fmt.Errorf("fallback: %s %q not covered from %s", rt, key, floor)
		}
	}
	return nil
}

func (t *Table) coveredFrom(rateType ratedomain.RateType, key string, floor civil.Date) bool {
	list := t.series[seriesKey{rateType: rateType, key: key}]
	return len(list) > 0 && !list[0].EffectiveDate.After(floor)
}

func (t *Table) has(rateType ratedomain.RateType, key string) bool {
	return len(t.series[seriesKey{rateType: rateType, key: key}]) > 0
}
