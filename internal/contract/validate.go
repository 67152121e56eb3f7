package contract

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/mountjawa/peakfinder/schema"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// GetValidator returns the singleton validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// rangeTag renders an inclusive range as a validator tag.
func rangeTag(r Range) string {
	return "gte=" + strconv.FormatFloat(r.Min, 'f', -1, 64) + ",lte=" + strconv.FormatFloat(r.Max, 'f', -1, 64)
}

// ValidatePreference checks the continuous fields against bounds and requires a
// difficulty label. Vocabulary membership is checked later by the encoder.
// Returned errors wrap schema.ErrInvalidPreference.
func ValidatePreference(pref schema.Preference, bounds Bounds) error {
	v := GetValidator()
	fields := []struct {
		name  string
		value float64
		r     Range
	}{
		{"elevation", pref.ElevationM, bounds.Elevation},
		{"duration", pref.DurationHours, bounds.Duration},
		{"distance", pref.DistanceKM, bounds.Distance},
		{"gain", pref.ElevationGainM, bounds.Gain},
	}
	for _, f := range fields {
		if err := v.Var(f.value, rangeTag(f.r)); err != nil {
			return fmt.Errorf("%w: %s must be between %g and %g (received %g)",
				schema.ErrInvalidPreference, f.name, f.r.Min, f.r.Max, f.value)
		}
	}
	if err := v.Var(strings.TrimSpace(pref.Difficulty), "required"); err != nil {
		return fmt.Errorf("%w: difficulty is required", schema.ErrInvalidPreference)
	}
	return nil
}

// ValidCoordinates reports whether lat/lon form a usable map position.
func ValidCoordinates(lat, lon float64) bool {
	v := GetValidator()
	return v.Var(lat, "latitude") == nil && v.Var(lon, "longitude") == nil
}
