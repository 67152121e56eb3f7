// Package schema has the models and constants shared by every part of peakfinder.
package schema

import "time"

// Vector is a point in the shared feature space. It is a value type, so a
// vector handed to another component cannot be mutated behind its owner's back.
type Vector [FeatureCount]float64

// Slice returns a copy of the vector as a slice.
func (v Vector) Slice() []float64 {
	out := make([]float64, FeatureCount)
	copy(out, v[:])
	return out
}

// Mountain is one immutable row of the catalog.
type Mountain struct {
	Row            int      `json:"row"`             // Original row index in the catalog source
	Name           string   `json:"name"`            // Mountain name
	Province       string   `json:"province"`        // Province the trailhead is in
	ElevationM     float64  `json:"elevation_m"`     // Summit elevation in meters
	DurationHours  float64  `json:"duration_hours"`  // Typical hiking duration in hours
	DistanceKM     float64  `json:"distance_km"`     // Trail distance in kilometers
	ElevationGainM float64  `json:"elevation_gain"`  // Elevation gain in meters
	Difficulty     string   `json:"difficulty"`      // Difficulty level label
	Features       Vector   `json:"features"`        // Precomputed normalized features
	Latitude       *float64 `json:"latitude"`        // Optional latitude
	Longitude      *float64 `json:"longitude"`       // Optional longitude
	ImageRef       string   `json:"image,omitempty"` // Optional image path or URL
	RecommendedFor string   `json:"recommended_for,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are present.
func (m Mountain) HasCoordinates() bool {
	return m.Latitude != nil && m.Longitude != nil
}

// Preference is the per-request user input.
type Preference struct {
	Province       string  `json:"province,omitempty"`
	ElevationM     float64 `json:"elevation_m"`
	DurationHours  float64 `json:"duration_hours"`
	DistanceKM     float64 `json:"distance_km"`
	ElevationGainM float64 `json:"elevation_gain"`
	Difficulty     string  `json:"difficulty"`
}

// Continuous returns the four continuous fields in scaler order.
func (p Preference) Continuous() [4]float64 {
	return [4]float64{p.ElevationM, p.DurationHours, p.DistanceKM, p.ElevationGainM}
}

// BlendWeights controls how similarity and model score combine into the final score.
type BlendWeights struct {
	Similarity float64 `json:"similarity"`
	Model      float64 `json:"model"`
}

// Candidate is a catalog entry annotated with its cosine similarity to the user vector.
type Candidate struct {
	Mountain
	Similarity float64 `json:"similarity"`
}

// ScoredCandidate is a candidate after re-ranking.
type ScoredCandidate struct {
	Candidate
	ModelScore float64 `json:"model_score"`
	FinalScore float64 `json:"final_score"`
}

// Recommendation is the result envelope handed to the presentation layer.
type Recommendation struct {
	Status          RecommendationStatus `json:"status"`
	Strategy        RankStrategy         `json:"strategy"`
	Preference      Preference           `json:"preference"`
	UserVector      Vector               `json:"user_vector"`
	CatalogSize     int                  `json:"catalog_size"`
	FilteredSize    int                  `json:"filtered_size"`
	CandidateCount  int                  `json:"candidate_count"`
	Results         []ScoredCandidate    `json:"results"`
	GeneratedAt     time.Time            `json:"generated_at"`
	ArtifactVersion string               `json:"artifact_version,omitempty"`
}

// NoMatch reports whether the pre-filter left nothing to rank.
func (r Recommendation) NoMatch() bool {
	return r.Status == StatusNoMatch
}

// DriftReport describes a catalog row whose stored features disagree with the fitted transform.
type DriftReport struct {
	Row      int     `json:"row"`
	Name     string  `json:"name"`
	Feature  string  `json:"feature"`
	Stored   float64 `json:"stored"`
	Expected float64 `json:"expected"`
	Delta    float64 `json:"delta"`
}
