package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKey(t *testing.T) {
	k := NormalizeKey(RateTypeRelocationAllowance, "Staff Sergeant:WITH")
	assert.Equal(t, "E-6:with", k.Key)
	require.NotNil(t, k.Grade)
	assert.False(t, k.GradeDefaulted())

	assert.Equal(t, NormalizeKey(RateTypeRelocationAllowance, "E-9:with").Key,
		NormalizeKey(RateTypeRelocationAllowance, "E9:with").Key)

	k = NormalizeKey(RateTypeWeightAllowance, "nonsense")
	assert.Equal(t, "E-5:without", k.Key)
	assert.True(t, k.GradeDefaulted())

	k = NormalizeKey(RateTypeRelocationAllowance, ":with")
	assert.Equal(t, "E-5:with", k.Key)
	assert.True(t, k.GradeDefaulted())

	assert.Equal(t, "O-3", NormalizeKey(RateTypeBasePay, "captain:with").Key)
	assert.Equal(t, "CA:SAN DIEGO", NormalizeKey(RateTypePerDiem, " ca : san   diego ").Key)
	assert.Equal(t, "CONUS", NormalizeKey(RateTypeLodgingCeiling, "").Key)
	assert.Equal(t, "POV", NormalizeKey(RateTypeMileage, "").Key)
	assert.Equal(t, "PPM", NormalizeKey(RateTypeSelfMove, "ppm").Key)
}

func TestEnclosingKeys(t *testing.T) {
	assert.Equal(t, []string{"E-5:with:CA", "E-5:with"},
		EnclosingKeys(RateTypeHousingAllowance, "E-5:with:CA:SAN DIEGO"))
	assert.Equal(t, []string{"CA"}, EnclosingKeys(RateTypePerDiem, "CA:SAN DIEGO"))
	assert.Empty(t, EnclosingKeys(RateTypeRelocationAllowance, "E-5:with"))
	assert.Equal(t, []string{"O-1:with"}, EnclosingKeys(RateTypeWeightAllowance, "O-1E:with"))
	assert.Equal(t, []string{"O-2"}, EnclosingKeys(RateTypeBasePay, "O-2E"))
}

func TestSubstituteDefault(t *testing.T) {
	key, ok := SubstituteDefault(RateTypeRelocationAllowance, "O-4:with")
	assert.True(t, ok)
	assert.Equal(t, "E-5:with", key)

	_, ok = SubstituteDefault(RateTypeRelocationAllowance, "E-5:without")
	assert.False(t, ok)

	key, ok = SubstituteDefault(RateTypePerDiem, "HI:HONOLULU")
	assert.True(t, ok)
	assert.Equal(t, "CONUS", key)

	_, ok = SubstituteDefault(RateTypePerDiem, "CONUS")
	assert.False(t, ok)
}
