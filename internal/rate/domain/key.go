package domain

import (
	"strings"

	"github.com/smallbiznis/pcsengine/internal/grade"
)

const (
	DependentsWith    = "with"
	DependentsWithout = "without"

	DefaultLocality   = "CONUS"
	DefaultMileageKey = "POV"
	DefaultSelfMove   = "PPM"
)

// GradeKeyed reports whether lookup keys for rateType start with a pay grade.
func GradeKeyed(rateType RateType) bool {
	switch rateType {
	case RateTypeRelocationAllowance, RateTypeWeightAllowance, RateTypeBasePay, RateTypeHousingAllowance:
		return true
	}
	return false
}

// minSegments is the shortest key the enclosing search may shorten to.
func minSegments(rateType RateType) int {
	switch rateType {
	case RateTypeBasePay:
		return 1
	case RateTypeRelocationAllowance, RateTypeWeightAllowance, RateTypeHousingAllowance:
		return 2
	default:
		return 1
	}
}

// DependentsSegment renders the binary dependency band.
func DependentsSegment(hasDependents bool) string {
	if hasDependents {
		return DependentsWith
	}
	return DependentsWithout
}

// GradeKey builds a grade-keyed lookup key such as "E-5:with".
func GradeKey(g grade.Grade, hasDependents bool, locality ...string) string {
	parts := []string{string(g), DependentsSegment(hasDependents)}
	parts = append(parts, locality...)
	return strings.Join(parts, ":")
}

// NormalizedKey is a lookup key in canonical form plus the grade
// normalization outcome when the key is grade-keyed.
type NormalizedKey struct {
	Key   string
	Grade *grade.Result
}

// GradeDefaulted reports whether the grade segment was substituted.
func (k NormalizedKey) GradeDefaulted() bool {
	return k.Grade != nil && k.Grade.Defaulted()
}

// NormalizeKey canonicalizes raw for rateType. Grade segments go through the
// grade table, dependency bands are lower-cased, and locality segments are
// upper-cased with whitespace collapsed. Blank locality and fixed keys take
// their documented defaults.
func NormalizeKey(rateType RateType, raw string) NormalizedKey {
	if GradeKeyed(rateType) {
		// Grade and band are positional, so a blank grade keeps its slot.
		segments := strings.Split(strings.TrimSpace(raw), ":")
		res := grade.Normalize(segments[0])
		parts := []string{string(res.Grade)}
		if rateType != RateTypeBasePay {
			dep := DependentsWithout
			if len(segments) > 1 {
				dep = normalizeDependents(segments[1])
			}
			parts = append(parts, dep)
			if len(segments) > 2 {
				parts = append(parts, upperSegments(splitKey(strings.Join(segments[2:], ":")))...)
			}
		}
		return NormalizedKey{Key: strings.Join(parts, ":"), Grade: &res}
	}

	parts := upperSegments(splitKey(raw))
	if len(parts) == 0 {
		return NormalizedKey{Key: defaultKey(rateType)}
	}
	return NormalizedKey{Key: strings.Join(parts, ":")}
}

// EnclosingKeys lists the keys to try after key, nearest first, by dropping
// trailing segments. Grade-keyed types never drop the grade or band; a
// prior-enlisted officer grade is finally widened to its base grade.
func EnclosingKeys(rateType RateType, key string) []string {
	parts := strings.Split(key, ":")
	floor := minSegments(rateType)
	if floor > len(parts) {
		floor = len(parts)
	}
	var out []string
	for n := len(parts) - 1; n >= floor; n-- {
		out = append(out, strings.Join(parts[:n], ":"))
	}
	if GradeKeyed(rateType) {
		if base, ok := grade.Grade(parts[0]).Enclosing(); ok {
			widened := append([]string{string(base)}, parts[1:floor]...)
			out = append(out, strings.Join(widened, ":"))
		}
	}
	return out
}

// SubstituteDefault replaces the most specific part of key with the
// documented default: the default grade for grade-keyed types, CONUS for
// locality-keyed types. ok is false when key already is the default.
func SubstituteDefault(rateType RateType, key string) (string, bool) {
	parts := strings.Split(key, ":")
	if GradeKeyed(rateType) {
		floor := minSegments(rateType)
		if floor > len(parts) {
			floor = len(parts)
		}
		parts = parts[:floor]
		if parts[0] == string(grade.Default) {
			return "", false
		}
		parts[0] = string(grade.Default)
		return strings.Join(parts, ":"), true
	}
	def := defaultKey(rateType)
	if key == def {
		return "", false
	}
	return def, true
}

func defaultKey(rateType RateType) string {
	switch rateType {
	case RateTypeMileage:
		return DefaultMileageKey
	case RateTypeSelfMove:
		return DefaultSelfMove
	default:
		return DefaultLocality
	}
}

func splitKey(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ":")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func upperSegments(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, s := range segments {
		s = strings.Join(strings.Fields(strings.ToUpper(s)), " ")
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func normalizeDependents(seg string) string {
	switch strings.ToLower(strings.TrimSpace(seg)) {
	case "with", "w", "true", "yes", "dependents", "with_dependents":
		return DependentsWith
	default:
		return DependentsWithout
	}
}
