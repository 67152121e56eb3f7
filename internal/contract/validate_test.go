package contract

import (
	"testing"

	"github.com/mountjawa/peakfinder/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPreference() schema.Preference {
	return schema.Preference{
		Province:       schema.AllProvinces,
		ElevationM:     2500,
		DurationHours:  6,
		DistanceKM:     8,
		ElevationGainM: 1200,
		Difficulty:     "Moderate",
	}
}

func TestValidatePreference(t *testing.T) {
	bounds := DefaultBounds()

	tests := []struct {
		name    string
		mutate  func(p *schema.Preference)
		wantErr string
	}{
		{"valid", func(*schema.Preference) {}, ""},
		{"lower edges inclusive", func(p *schema.Preference) {
			p.ElevationM, p.DurationHours, p.DistanceKM, p.ElevationGainM = 0, 0.5, 0.1, 0
		}, ""},
		{"upper edges inclusive", func(p *schema.Preference) {
			p.ElevationM, p.DurationHours, p.DistanceKM, p.ElevationGainM = 6000, 72, 200, 5000
		}, ""},
		{"elevation too high", func(p *schema.Preference) { p.ElevationM = 6001 }, "elevation must be between"},
		{"duration too short", func(p *schema.Preference) { p.DurationHours = 0.25 }, "duration must be between"},
		{"negative distance", func(p *schema.Preference) { p.DistanceKM = -1 }, "distance must be between"},
		{"gain too high", func(p *schema.Preference) { p.ElevationGainM = 9000 }, "gain must be between"},
		{"blank difficulty", func(p *schema.Preference) { p.Difficulty = "  " }, "difficulty is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPreference()
			tt.mutate(&p)
			err := ValidatePreference(p, bounds)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, schema.ErrInvalidPreference)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidatePreferenceCustomBounds(t *testing.T) {
	bounds := DefaultBounds()
	bounds.Elevation = Range{Min: 1000, Max: 3000}

	p := validPreference()
	p.ElevationM = 3500
	assert.ErrorIs(t, ValidatePreference(p, bounds), schema.ErrInvalidPreference)

	p.ElevationM = 1000
	assert.NoError(t, ValidatePreference(p, bounds))
}

func TestValidCoordinates(t *testing.T) {
	assert.True(t, ValidCoordinates(-8.108, 112.922))
	assert.True(t, ValidCoordinates(0, 0))
	assert.False(t, ValidCoordinates(95, 110))
	assert.False(t, ValidCoordinates(-7, 181))
}
