package catalog

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/mountjawa/peakfinder/internal/contract"
	"github.com/mountjawa/peakfinder/schema"
)

// PlaceholderImage is shown for entries without a usable image reference.
const PlaceholderImage = "https://images.unsplash.com/photo-1500534623283-312aade485b7?auto=format&fit=crop&w=1200&q=80"

// DefaultDifficulty is preselected when the vocabulary contains it.
const DefaultDifficulty = "Moderate"

// DefaultTolerance is the largest feature delta Verify accepts as equal.
const DefaultTolerance = 1e-6

const mapsSearchURL = "https://www.google.com/maps/search/?api=1&query="

// Provinces returns the distinct non-blank provinces in sorted order.
func Provinces(catalog []schema.Mountain) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, m := range catalog {
		if m.Province == "" {
			continue
		}
		if _, ok := seen[m.Province]; ok {
			continue
		}
		seen[m.Province] = struct{}{}
		out = append(out, m.Province)
	}
	sort.Strings(out)
	return out
}

// Difficulties returns the encoder vocabulary offered to the user.
func Difficulties(artifacts contract.Artifacts) []string {
	return artifacts.Encoder().Classes()
}

// FilterProvince keeps the entries of one province, compared case-insensitively.
// An empty province or schema.AllProvinces keeps the whole catalog. Order is preserved.
func FilterProvince(catalog []schema.Mountain, province string) []schema.Mountain {
	province = strings.TrimSpace(province)
	if province == "" || strings.EqualFold(province, schema.AllProvinces) {
		return catalog
	}
	out := []schema.Mountain{}
	for _, m := range catalog {
		if strings.EqualFold(m.Province, province) {
			out = append(out, m)
		}
	}
	return out
}

// DefaultPreference returns the preselected form values: the catalog medians
// and the default difficulty, or the first class when it is absent.
func DefaultPreference(catalog []schema.Mountain, classes []string) schema.Preference {
	pref := schema.Preference{Province: schema.AllProvinces}
	if len(classes) > 0 {
		pref.Difficulty = classes[0]
		if slices.Contains(classes, DefaultDifficulty) {
			pref.Difficulty = DefaultDifficulty
		}
	}
	if len(catalog) == 0 {
		return pref
	}
	pref.ElevationM = median(catalog, func(m schema.Mountain) float64 { return m.ElevationM })
	pref.DurationHours = median(catalog, func(m schema.Mountain) float64 { return m.DurationHours })
	pref.DistanceKM = median(catalog, func(m schema.Mountain) float64 { return m.DistanceKM })
	pref.ElevationGainM = median(catalog, func(m schema.Mountain) float64 { return m.ElevationGainM })
	return pref
}

func median(catalog []schema.Mountain, field func(schema.Mountain) float64) float64 {
	values := make([]float64, len(catalog))
	for i, m := range catalog {
		values[i] = field(m)
	}
	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}
	return (values[mid-1] + values[mid]) / 2
}

// Verify recomputes every entry's features with the fitted transform and
// reports the entries whose largest feature delta exceeds tol. Entries that
// cannot be recomputed at all are returned as a joined error.
func Verify(catalog []schema.Mountain, artifacts contract.Artifacts, tol float64) ([]schema.DriftReport, error) {
	reports := []schema.DriftReport{}
	var errs []error
	for _, m := range catalog {
		expected, err := Expected(m, artifacts)
		if err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", m.Row+1, err))
			continue
		}
		worst := -1
		var worstDelta float64
		for i := range expected {
			if delta := math.Abs(m.Features[i] - expected[i]); delta > worstDelta {
				worst, worstDelta = i, delta
			}
		}
		if worst >= 0 && worstDelta > tol {
			reports = append(reports, schema.DriftReport{
				Row:      m.Row,
				Name:     m.Name,
				Feature:  string(schema.FeatureKeys[worst]),
				Stored:   m.Features[worst],
				Expected: expected[worst],
				Delta:    worstDelta,
			})
		}
	}
	return reports, errors.Join(errs...)
}

// MapsLink returns a map search link for the entry's coordinates, or for its
// name when coordinates are missing.
func MapsLink(m schema.Mountain) string {
	if m.HasCoordinates() {
		return mapsSearchURL + strconv.FormatFloat(*m.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(*m.Longitude, 'f', -1, 64)
	}
	return mapsSearchURL + url.QueryEscape(m.Name)
}

// ImageOrPlaceholder returns the entry's image URL when it is an absolute
// http(s) URL, and the placeholder otherwise.
func ImageOrPlaceholder(m schema.Mountain) string {
	u, err := url.Parse(m.ImageRef)
	if m.ImageRef == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return PlaceholderImage
	}
	return m.ImageRef
}

// LocalImage resolves the entry's image reference as a file relative to dir,
// usually the catalog's directory. It reports false for URLs, for paths that
// leave dir and for anything that is not a regular file.
func LocalImage(m schema.Mountain, dir string) (string, bool) {
	ref := strings.TrimSpace(m.ImageRef)
	if dir == "" || ref == "" || strings.Contains(ref, "://") || !filepath.IsLocal(ref) {
		return "", false
	}
	path := filepath.Join(dir, ref)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return path, true
}
