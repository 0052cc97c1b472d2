// Package grade normalizes free-text military pay grades to canonical codes.
//
// Canonical codes are E-1..E-9, W-1..W-5, O-1E..O-3E and O-1..O-10. Input is
// matched against a finite table of code spellings, titles and
// abbreviations; anything else is substituted with the default grade and
// reported as such so callers can lower their confidence.
package grade

import (
	"fmt"
	"strings"
)

// Grade is a canonical pay grade code such as "E-5" or "O-1E".
type Grade string

const Default Grade = "E-5"

type Outcome string

const (
	OutcomeExact              Outcome = "exact"
	OutcomeDefaultSubstituted Outcome = "default_substituted"
)

type Result struct {
	Input     string  `json:"input"`
	Grade     Grade   `json:"grade"`
	Outcome   Outcome `json:"outcome"`
	MatchedBy string  `json:"matched_by,omitempty"`
}

// Defaulted reports whether the default grade was substituted.
func (r Result) Defaulted() bool {
	return r.Outcome == OutcomeDefaultSubstituted
}

var canonical []Grade

func init() {
	for i := 1; i <= 9; i++ {
		canonical = append(canonical, Grade(fmt.Sprintf("E-%d", i)))
	}
	for i := 1; i <= 5; i++ {
		canonical = append(canonical, Grade(fmt.Sprintf("W-%d", i)))
	}
	for i := 1; i <= 3; i++ {
		canonical = append(canonical, Grade(fmt.Sprintf("O-%dE", i)))
	}
	for i := 1; i <= 10; i++ {
		canonical = append(canonical, Grade(fmt.Sprintf("O-%d", i)))
	}
	buildLookup()
}

// All returns every canonical grade in table order.
func All() []Grade {
	out := make([]Grade, len(canonical))
	copy(out, canonical)
	return out
}

func (g Grade) String() string { return string(g) }

// Valid reports whether g is a canonical code.
func (g Grade) Valid() bool {
	e, ok := lookup[string(g)]
	return ok && e.grade == g
}

// Enclosing returns the grade whose rates apply when g has no entry of its
// own. Prior-enlisted officer grades fall back to their base officer grade.
func (g Grade) Enclosing() (Grade, bool) {
	s := string(g)
	if strings.HasPrefix(s, "O-") && strings.HasSuffix(s, "E") {
		return Grade(strings.TrimSuffix(s, "E")), true
	}
	return "", false
}

// Normalize maps input to a canonical grade. It never fails; unknown input
// yields the default grade with OutcomeDefaultSubstituted.
func Normalize(input string) Result {
	res := Result{Input: input}
	key := normalizeKey(input)
	if entry, ok := lookup[key]; ok && key != "" {
		res.Grade = entry.grade
		res.Outcome = OutcomeExact
		res.MatchedBy = entry.matchedBy
		return res
	}
	res.Grade = Default
	res.Outcome = OutcomeDefaultSubstituted
	return res
}

// normalizeKey upper-cases, drops periods and collapses whitespace.
func normalizeKey(input string) string {
	s := strings.ToUpper(strings.ReplaceAll(input, ".", ""))
	return strings.Join(strings.Fields(s), " ")
}
