// Package catalog loads the mountain catalog and answers the questions the
// presentation layer asks about it.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mountjawa/peakfinder/core/algo"
	"github.com/mountjawa/peakfinder/internal/contract"
	"github.com/mountjawa/peakfinder/internal/parquet"
	"github.com/mountjawa/peakfinder/schema"
)

// column identifies a logical catalog column.
type column int

const (
	colName column = iota
	colProvince
	colElevation
	colDuration
	colDistance
	colGain
	colDifficulty
	colLatitude
	colLongitude
	colImage
	colRecommendedFor
	colElevationScaled
	colDurationScaled
	colDistanceScaled
	colGainScaled
	colDifficultyEncoded
)

// columnAliases maps lowercased header names onto logical columns.
var columnAliases = map[string]column{
	"name":                  colName,
	"nama_gunung":           colName,
	"nama gunung":           colName,
	"province":              colProvince,
	"provinsi":              colProvince,
	"elevation_m":           colElevation,
	"hiking_duration_hours": colDuration,
	"distance_km":           colDistance,
	"elevation_gain":        colGain,
	"difficulty_level":      colDifficulty,
	"latitude":              colLatitude,
	"lat":                   colLatitude,
	"longitude":             colLongitude,
	"lon":                   colLongitude,
	"lng":                   colLongitude,
	"image_file":            colImage,
	"image_url":             colImage,
	"image":                 colImage,
	"recommended_for":       colRecommendedFor,
	"elevation_scaled":      colElevationScaled,
	"duration_scaled":       colDurationScaled,
	"distance_scaled":       colDistanceScaled,
	"gain_scaled":           colGainScaled,
	"difficulty_encoded":    colDifficultyEncoded,
}

var requiredColumns = []struct {
	col  column
	name string
}{
	{colName, "Name"},
	{colProvince, "Province"},
	{colElevation, "elevation_m"},
	{colDuration, "hiking_duration_hours"},
	{colDistance, "distance_km"},
	{colGain, "Elevation_gain"},
	{colDifficulty, "difficulty_level"},
}

var featureColumns = [schema.FeatureCount]column{
	colElevationScaled, colDurationScaled, colDistanceScaled, colGainScaled, colDifficultyEncoded,
}

// Load reads a catalog from a .csv or .parquet file. Rows without stored
// features are projected through the artifacts' scaler and encoder.
// Every failure wraps schema.ErrArtifactLoad.
func Load(path string, artifacts contract.Artifacts) ([]schema.Mountain, error) {
	var (
		mountains []schema.Mountain
		err       error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", schema.ErrArtifactLoad, err)
		}
		defer func() { _ = f.Close() }()
		mountains, err = ReadCSV(f, artifacts)
	case ".parquet":
		mountains, err = readParquet(path, artifacts)
	default:
		return nil, fmt.Errorf("%w: unsupported catalog format %q", schema.ErrArtifactLoad, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", schema.ErrArtifactLoad, filepath.Base(path), err)
	}
	return mountains, nil
}

// ReadCSV reads a header-driven CSV catalog.
func ReadCSV(r io.Reader, artifacts contract.Artifacts) ([]schema.Mountain, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("catalog is empty")
		}
		return nil, err
	}
	index := make(map[column]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if col, ok := columnAliases[key]; ok {
			if _, seen := index[col]; !seen {
				index[col] = i
			}
		}
	}
	for _, rc := range requiredColumns {
		if _, ok := index[rc.col]; !ok {
			return nil, fmt.Errorf("missing required column %s", rc.name)
		}
	}
	storedFeatures := true
	for _, fc := range featureColumns {
		if _, ok := index[fc]; !ok {
			storedFeatures = false
		}
	}

	mountains := []schema.Mountain{}
	for row := 0; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		get := func(c column) string {
			i, ok := index[c]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		m := schema.Mountain{
			Row:            row,
			Name:           get(colName),
			Province:       get(colProvince),
			Difficulty:     get(colDifficulty),
			ImageRef:       get(colImage),
			RecommendedFor: get(colRecommendedFor),
		}
		if m.Name == "" {
			return nil, fmt.Errorf("row %d: name is blank", row+1)
		}
		numbers := []struct {
			col  column
			name string
			dst  *float64
		}{
			{colElevation, "elevation_m", &m.ElevationM},
			{colDuration, "hiking_duration_hours", &m.DurationHours},
			{colDistance, "distance_km", &m.DistanceKM},
			{colGain, "Elevation_gain", &m.ElevationGainM},
		}
		for _, n := range numbers {
			v, err := parseFinite(get(n.col))
			if err != nil {
				return nil, fmt.Errorf("row %d (%s): invalid %s %q", row+1, m.Name, n.name, get(n.col))
			}
			*n.dst = v
		}
		m.Latitude, m.Longitude = coordinates(get(colLatitude), get(colLongitude))

		if storedFeatures {
			for i, fc := range featureColumns {
				v, err := parseFinite(get(fc))
				if err != nil {
					return nil, fmt.Errorf("row %d (%s): invalid %s %q", row+1, m.Name, schema.FeatureKeys[i], get(fc))
				}
				m.Features[i] = v
			}
		} else if err := derive(&m, artifacts); err != nil {
			return nil, fmt.Errorf("row %d: %w", row+1, err)
		}
		mountains = append(mountains, m)
	}
	return mountains, nil
}

func readParquet(path string, artifacts contract.Artifacts) ([]schema.Mountain, error) {
	rows, err := parquet.ReadCatalogParquet(path)
	if err != nil {
		return nil, err
	}
	mountains := make([]schema.Mountain, 0, len(rows))
	for i, r := range rows {
		m := schema.Mountain{
			Row:            i,
			Name:           strings.TrimSpace(r.Name),
			Province:       strings.TrimSpace(r.Province),
			ElevationM:     r.ElevationM,
			DurationHours:  r.DurationHours,
			DistanceKM:     r.DistanceKM,
			ElevationGainM: r.ElevationGainM,
			Difficulty:     strings.TrimSpace(r.Difficulty),
			ImageRef:       deref(r.ImageURL),
			RecommendedFor: deref(r.RecommendedFor),
		}
		if m.Name == "" {
			return nil, fmt.Errorf("row %d: name is blank", i+1)
		}
		numbers := []struct {
			name string
			v    float64
		}{
			{"elevation_m", m.ElevationM},
			{"hiking_duration_hours", m.DurationHours},
			{"distance_km", m.DistanceKM},
			{"Elevation_gain", m.ElevationGainM},
		}
		for _, n := range numbers {
			if !isFinite(n.v) {
				return nil, fmt.Errorf("row %d (%s): invalid %s %v", i+1, m.Name, n.name, n.v)
			}
		}
		if r.Latitude != nil && r.Longitude != nil && contract.ValidCoordinates(*r.Latitude, *r.Longitude) {
			m.Latitude, m.Longitude = r.Latitude, r.Longitude
		}

		stored := []*float64{r.ElevationScaled, r.DurationScaled, r.DistanceScaled, r.GainScaled, r.DifficultyEncoded}
		complete := true
		for j, v := range stored {
			if v == nil {
				complete = false
				break
			}
			if !isFinite(*v) {
				return nil, fmt.Errorf("row %d (%s): invalid %s %v", i+1, m.Name, schema.FeatureKeys[j], *v)
			}
			m.Features[j] = *v
		}
		if !complete {
			if err := derive(&m, artifacts); err != nil {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}
		}
		mountains = append(mountains, m)
	}
	return mountains, nil
}

// derive computes a row's features with the fitted transform.
func derive(m *schema.Mountain, artifacts contract.Artifacts) error {
	if artifacts == nil {
		return fmt.Errorf("%s has no stored features and no artifacts were given", m.Name)
	}
	v, err := Expected(*m, artifacts)
	if err != nil {
		return err
	}
	m.Features = v
	return nil
}

// Expected recomputes a mountain's feature vector from its raw columns.
func Expected(m schema.Mountain, artifacts contract.Artifacts) (schema.Vector, error) {
	pref := schema.Preference{
		ElevationM:     m.ElevationM,
		DurationHours:  m.DurationHours,
		DistanceKM:     m.DistanceKM,
		ElevationGainM: m.ElevationGainM,
		Difficulty:     m.Difficulty,
	}
	v, err := algo.Normalize(pref, artifacts.Scaler(), artifacts.Encoder())
	if err != nil {
		return schema.Vector{}, fmt.Errorf("%s: %w", m.Name, err)
	}
	return v, nil
}

// coordinates parses a lat/lon pair. Blank, malformed or out of range values give nil.
func coordinates(latRaw, lonRaw string) (*float64, *float64) {
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return nil, nil
	}
	lon, err := strconv.ParseFloat(lonRaw, 64)
	if err != nil {
		return nil, nil
	}
	if !contract.ValidCoordinates(lat, lon) {
		return nil, nil
	}
	return &lat, &lon
}

// parseFinite parses a float and rejects NaN and infinities.
func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if !isFinite(v) {
		return 0, fmt.Errorf("%q is not finite", s)
	}
	return v, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
