package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mountjawa/peakfinder/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mountainsFixture() []schema.Mountain {
	return []schema.Mountain{
		{Row: 0, Name: "Gunung Semeru", Province: "Jawa Timur", ElevationM: 3676, DurationHours: 20, DistanceKM: 17.5, ElevationGainM: 2100},
		{Row: 1, Name: "Gunung Batur", Province: "Bali", ElevationM: 1717, DurationHours: 2, DistanceKM: 3, ElevationGainM: 500},
		{Row: 2, Name: "Gunung Bromo", Province: "Jawa Timur", ElevationM: 2329, DurationHours: 1.5, DistanceKM: 2.5, ElevationGainM: 150},
		{Row: 3, Name: "Gunung Agung", Province: "Bali", ElevationM: 3031, DurationHours: 7, DistanceKM: 6.5, ElevationGainM: 1900},
	}
}

func TestProvinces(t *testing.T) {
	assert.Equal(t, []string{"Bali", "Jawa Timur"}, Provinces(mountainsFixture()))
	assert.Empty(t, Provinces(nil))
}

func TestDifficulties(t *testing.T) {
	assert.Equal(t, []string{"Easy", "Hard", "Moderate"}, Difficulties(testBundle(t)))
}

func TestFilterProvince(t *testing.T) {
	catalog := mountainsFixture()

	tests := []struct {
		name     string
		province string
		expected []string
	}{
		{"all keeps everything", schema.AllProvinces, []string{"Gunung Semeru", "Gunung Batur", "Gunung Bromo", "Gunung Agung"}},
		{"blank keeps everything", "", []string{"Gunung Semeru", "Gunung Batur", "Gunung Bromo", "Gunung Agung"}},
		{"one province in catalog order", "Jawa Timur", []string{"Gunung Semeru", "Gunung Bromo"}},
		{"case insensitive", "bali", []string{"Gunung Batur", "Gunung Agung"}},
		{"no match", "Papua", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterProvince(catalog, tt.province)
			names := []string{}
			for _, m := range got {
				names = append(names, m.Name)
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestDefaultPreference(t *testing.T) {
	pref := DefaultPreference(mountainsFixture(), []string{"Easy", "Hard", "Moderate"})
	assert.Equal(t, schema.AllProvinces, pref.Province)
	assert.Equal(t, "Moderate", pref.Difficulty)
	assert.Equal(t, (2329.0+3031.0)/2, pref.ElevationM)
	assert.Equal(t, (2.0+7.0)/2, pref.DurationHours)
	assert.Equal(t, (3.0+6.5)/2, pref.DistanceKM)
	assert.Equal(t, (500.0+1900.0)/2, pref.ElevationGainM)

	odd := DefaultPreference(mountainsFixture()[:3], []string{"Easy", "Hard"})
	assert.Equal(t, "Easy", odd.Difficulty, "first class when the default is absent")
	assert.Equal(t, 2329.0, odd.ElevationM)

	empty := DefaultPreference(nil, nil)
	assert.Empty(t, empty.Difficulty)
	assert.Zero(t, empty.ElevationM)
}

func TestVerify(t *testing.T) {
	bundle := testBundle(t)
	good := schema.Mountain{Row: 0, Name: "Good", ElevationM: 2100, DurationHours: 5, DistanceKM: 9, ElevationGainM: 1100, Difficulty: "Moderate"}
	good.Features = schema.Vector{1, 1, 1, 1, 2}

	drifted := good
	drifted.Row, drifted.Name = 1, "Drifted"
	drifted.Features[2] = 0.75

	unknown := good
	unknown.Row, unknown.Name, unknown.Difficulty = 2, "Unknown", "Extreme"

	reports, err := Verify([]schema.Mountain{good, drifted, unknown}, bundle, DefaultTolerance)
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrUnknownCategory)

	require.Len(t, reports, 1)
	assert.Equal(t, "Drifted", reports[0].Name)
	assert.Equal(t, string(schema.FeatureDistance), reports[0].Feature)
	assert.InDelta(t, 0.25, reports[0].Delta, 1e-9)
}

func TestMapsLink(t *testing.T) {
	lat, lon := -8.1077, 112.9224
	withCoords := schema.Mountain{Name: "Gunung Semeru", Latitude: &lat, Longitude: &lon}
	assert.Equal(t, "https://www.google.com/maps/search/?api=1&query=-8.1077,112.9224", MapsLink(withCoords))

	byName := schema.Mountain{Name: "Gunung Agung"}
	assert.Equal(t, "https://www.google.com/maps/search/?api=1&query=Gunung+Agung", MapsLink(byName))
}

func TestImageOrPlaceholder(t *testing.T) {
	tests := []struct {
		ref      string
		expected string
	}{
		{"https://example.com/a.jpg", "https://example.com/a.jpg"},
		{"http://example.com/a.jpg", "http://example.com/a.jpg"},
		{"", PlaceholderImage},
		{"images/a.jpg", PlaceholderImage},
		{"ftp://example.com/a.jpg", PlaceholderImage},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ImageOrPlaceholder(schema.Mountain{ImageRef: tt.ref}), tt.ref)
	}
}

func TestLocalImage(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "images"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "images", "a.jpg"), []byte("jpg"), 0o644))

	path, ok := LocalImage(schema.Mountain{ImageRef: "images/a.jpg"}, dir)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "images", "a.jpg"), path)

	for _, ref := range []string{"", "images/missing.jpg", "images", "../a.jpg", "/etc/passwd", "https://example.com/a.jpg"} {
		_, ok := LocalImage(schema.Mountain{ImageRef: ref}, dir)
		assert.False(t, ok, ref)
	}

	_, ok = LocalImage(schema.Mountain{ImageRef: "images/a.jpg"}, "")
	assert.False(t, ok)
}
