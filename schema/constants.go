package schema

// Custom string types for type safety.
type (
	// FeatureKey represents a column of the shared feature space.
	FeatureKey string

	// OutputMode represents the format of the output.
	OutputMode string

	// RankStrategy represents how candidates are re-ranked.
	RankStrategy string

	// RecommendationStatus represents the terminal state of a recommendation request.
	RecommendationStatus string

	// DatabaseBackend represents the database backend for run history.
	DatabaseBackend string
)

// FeatureCount is the dimension of the shared feature space.
const FeatureCount = 5

// Feature keys in the order they appear in every feature vector.
const (
	FeatureElevation  FeatureKey = "elevation_scaled"
	FeatureDuration   FeatureKey = "duration_scaled"
	FeatureDistance   FeatureKey = "distance_scaled"
	FeatureGain       FeatureKey = "gain_scaled"
	FeatureDifficulty FeatureKey = "difficulty_encoded"
)

// FeatureKeys lists the feature columns in vector order.
var FeatureKeys = [FeatureCount]FeatureKey{
	FeatureElevation,
	FeatureDuration,
	FeatureDistance,
	FeatureGain,
	FeatureDifficulty,
}

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All rank strategies supported.
const (
	BlendStrategy      RankStrategy = "blend" // default
	SimilarityStrategy RankStrategy = "similarity"
)

// All recommendation statuses.
const (
	StatusOK       RecommendationStatus = "ok"
	StatusNoMatch  RecommendationStatus = "no_match"
	StatusRejected RecommendationStatus = "rejected" // history only; the request returned an error
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// AllProvinces is the province selector value that disables the pre-filter.
const AllProvinces = "All"

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidRankStrategies lists all valid rank strategies.
var ValidRankStrategies = map[RankStrategy]struct{}{
	BlendStrategy:      {},
	SimilarityStrategy: {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// DefaultBlendWeights returns the similarity/model weights used when none are configured.
func DefaultBlendWeights() BlendWeights {
	return BlendWeights{Similarity: 0.6, Model: 0.4}
}
