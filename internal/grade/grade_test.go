package grade

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		input string
		want  Grade
	}{
		{"E-6", "E-6"},
		{"e6", "E-6"},
		{"E06", "E-6"},
		{" e 6 ", "E-6"},
		{"Staff Sergeant", "E-6"},
		{"SSG", "E-6"},
		{"Sgt.", "E-5"},
		{"petty officer   second class", "E-5"},
		{"Lance Corporal", "E-3"},
		{"Captain", "O-3"},
		{"CAPT", "O-6"},
		{"Lt. Col.", "O-5"},
		{"o1e", "O-1E"},
		{"O-3E", "O-3E"},
		{"CW3", "W-3"},
		{"O10", "O-10"},
		{"General", "O-10"},
	}
	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			res := Normalize(tc.input)
			assert.Equal(t, tc.want, res.Grade)
			assert.Equal(t, OutcomeExact, res.Outcome)
			assert.False(t, res.Defaulted())
		})
	}
}

func TestNormalizeUnknownSubstitutesDefault(t *testing.T) {
	for _, input := range []string{"", "   ", "Grand Poobah", "E-10", "O-11"} {
		res := Normalize(input)
		assert.Equal(t, Default, res.Grade, input)
		assert.Equal(t, OutcomeDefaultSubstituted, res.Outcome, input)
		assert.True(t, res.Defaulted(), input)
	}
}

func TestCanonicalGradesAreValid(t *testing.T) {
	all := All()
	assert.Len(t, all, 27)
	for _, g := range all {
		assert.True(t, g.Valid(), g)
		assert.Equal(t, g, Normalize(string(g)).Grade)
	}
	assert.False(t, Grade("E5").Valid())
}

func TestEnclosing(t *testing.T) {
	base, ok := Grade("O-2E").Enclosing()
	assert.True(t, ok)
	assert.Equal(t, Grade("O-2"), base)

	_, ok = Grade("E-5").Enclosing()
	assert.False(t, ok)
}
