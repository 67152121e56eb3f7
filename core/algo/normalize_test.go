package algo

import (
	"testing"

	"github.com/mountjawa/peakfinder/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	scaler := fitMinMax([4]float64{500, 1, 1, 100}, [4]float64{2100, 4.5, 5.5, 850})
	encoder := newSortedEncoder("Moderate", "Easy", "Hard")

	t.Run("known difficulty", func(t *testing.T) {
		pref := schema.Preference{ElevationM: 2100, DurationHours: 1, DistanceKM: 3.25, ElevationGainM: 475, Difficulty: "Moderate"}
		v, err := Normalize(pref, scaler, encoder)
		require.NoError(t, err)

		assert.InDelta(t, 1.0, v[0], 1e-12)
		assert.InDelta(t, 0.0, v[1], 1e-12)
		assert.InDelta(t, 0.5, v[2], 1e-12)
		assert.InDelta(t, 0.5, v[3], 1e-12)
		assert.Equal(t, 2.0, v[4], "classes are sorted: Easy, Hard, Moderate")
	})

	t.Run("unknown difficulty", func(t *testing.T) {
		pref := schema.Preference{ElevationM: 2000, DurationHours: 4, DistanceKM: 5, ElevationGainM: 800, Difficulty: "Extreme"}
		v, err := Normalize(pref, scaler, encoder)
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrUnknownCategory)
		assert.Contains(t, err.Error(), "Extreme")
		assert.Equal(t, schema.Vector{}, v, "no partial vector on failure")
	})

	t.Run("label match is exact", func(t *testing.T) {
		_, err := Normalize(schema.Preference{Difficulty: "moderate"}, scaler, encoder)
		assert.ErrorIs(t, err, schema.ErrUnknownCategory)
	})

	t.Run("values outside the fitted range extrapolate", func(t *testing.T) {
		pref := schema.Preference{ElevationM: 2900, DurationHours: 4.5, DistanceKM: 5.5, ElevationGainM: 850, Difficulty: "Easy"}
		v, err := Normalize(pref, scaler, encoder)
		require.NoError(t, err)
		assert.InDelta(t, 1.5, v[0], 1e-12)
		assert.Equal(t, 0.0, v[4])
	})
}

func TestNormalizeIsPure(t *testing.T) {
	scaler := fitMinMax([4]float64{0, 0, 0, 0}, [4]float64{10, 10, 10, 10})
	encoder := newSortedEncoder("Easy", "Hard")
	pref := schema.Preference{ElevationM: 5, DurationHours: 5, DistanceKM: 5, ElevationGainM: 5, Difficulty: "Hard"}

	first, err := Normalize(pref, scaler, encoder)
	require.NoError(t, err)
	second, err := Normalize(pref, scaler, encoder)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
