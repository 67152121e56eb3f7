package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mountjawa/peakfinder/schema"
)

// Default values for configuration.
const (
	DefaultTopN        = 20
	DefaultResultLimit = 10
	MaxResultLimit     = 100
	MaxTopN            = 1000
	DefaultPrecision   = 3
	DefaultAddr        = "127.0.0.1:8501"
)

// Range is an inclusive numeric interval.
type Range struct {
	Min float64 `mapstructure:"min"`
	Max float64 `mapstructure:"max"`
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Bounds holds the accepted ranges for the continuous preference fields.
type Bounds struct {
	Elevation Range `mapstructure:"elevation"`
	Duration  Range `mapstructure:"duration"`
	Distance  Range `mapstructure:"distance"`
	Gain      Range `mapstructure:"gain"`
}

// DefaultBounds returns the ranges offered by the preference form.
func DefaultBounds() Bounds {
	return Bounds{
		Elevation: Range{Min: 0, Max: 6000},
		Duration:  Range{Min: 0.5, Max: 72},
		Distance:  Range{Min: 0.1, Max: 200},
		Gain:      Range{Min: 0, Max: 5000},
	}
}

// Config holds the runtime configuration for recommendation runs.
// This struct is the "final, validated" config.
type Config struct {
	CatalogPath  string
	ArtifactsDir string

	Strategy    schema.RankStrategy
	TopN        int // Candidates kept after similarity selection
	ResultLimit int // Results kept after re-ranking
	Weights     schema.BlendWeights
	Bounds      Bounds

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Detail     bool // Print image, tag and map link columns
	Explain    bool // Print similarity and model score columns
	Width      int  // Terminal width override (0 = auto-detect)
	UseColors  bool

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	Addr string // Listen address for the web server
}

// WeightsRawInput holds the blend weights from flags, env or the YAML config file.
type WeightsRawInput struct {
	Similarity float64 `mapstructure:"similarity"`
	Model      float64 `mapstructure:"model"`
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Catalog          string `mapstructure:"catalog"`
	Artifacts        string `mapstructure:"artifacts"`
	Strategy         string `mapstructure:"strategy"`
	TopN             int    `mapstructure:"top-n"`
	Limit            int    `mapstructure:"limit"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Precision        int    `mapstructure:"precision"`
	Detail           bool   `mapstructure:"detail"`
	Explain          bool   `mapstructure:"explain"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	// --- Fields from serveCmd.Flags() ---
	Addr string `mapstructure:"addr"`

	// --- Nested keys from flags or the config file ---
	Weights WeightsRawInput `mapstructure:"weights"`
	Bounds  *Bounds         `mapstructure:"bounds"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processRanking(cfg, input); err != nil {
		return err
	}
	if err := processBounds(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfig(cfg, input); err != nil {
		return err
	}
	return resolvePaths(cfg, input)
}

// validateSimpleInputs processes and validates the output related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Detail = input.Detail
	cfg.Explain = input.Explain
	cfg.Width = input.Width
	cfg.Addr = input.Addr
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Precision < 1 || input.Precision > 6 {
		return fmt.Errorf("precision must be between 1 and 6 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for parquet output")
	}
	return nil
}

// processRanking validates the candidate, result and blend parameters.
func processRanking(cfg *Config, input *ConfigRawInput) error {
	cfg.Strategy = schema.RankStrategy(strings.ToLower(strings.TrimSpace(input.Strategy)))
	if cfg.Strategy == "" {
		cfg.Strategy = schema.BlendStrategy
	}
	if _, ok := schema.ValidRankStrategies[cfg.Strategy]; !ok {
		return fmt.Errorf("invalid strategy '%s'. must be blend or similarity", input.Strategy)
	}

	if input.TopN <= 0 || input.TopN > MaxTopN {
		return fmt.Errorf("top-n must be greater than 0 and cannot exceed %d (received %d)", MaxTopN, input.TopN)
	}
	cfg.TopN = input.TopN

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	w := schema.BlendWeights{Similarity: input.Weights.Similarity, Model: input.Weights.Model}
	if err := ValidateWeights(w); err != nil {
		return err
	}
	cfg.Weights = w
	return nil
}

// ValidateWeights checks that both blend weights are in [0,1] and not both zero.
func ValidateWeights(w schema.BlendWeights) error {
	if w.Similarity < 0 || w.Similarity > 1 {
		return fmt.Errorf("similarity weight must be between 0 and 1 (received %g)", w.Similarity)
	}
	if w.Model < 0 || w.Model > 1 {
		return fmt.Errorf("model weight must be between 0 and 1 (received %g)", w.Model)
	}
	if w.Similarity == 0 && w.Model == 0 {
		return fmt.Errorf("similarity and model weights cannot both be zero")
	}
	return nil
}

// processBounds applies configured input bounds over the defaults.
func processBounds(cfg *Config, input *ConfigRawInput) error {
	cfg.Bounds = DefaultBounds()
	if input.Bounds == nil {
		return nil
	}
	ranges := []struct {
		name string
		raw  Range
		dst  *Range
	}{
		{"elevation", input.Bounds.Elevation, &cfg.Bounds.Elevation},
		{"duration", input.Bounds.Duration, &cfg.Bounds.Duration},
		{"distance", input.Bounds.Distance, &cfg.Bounds.Distance},
		{"gain", input.Bounds.Gain, &cfg.Bounds.Gain},
	}
	for _, r := range ranges {
		if r.raw == (Range{}) {
			continue // not configured
		}
		if r.raw.Min > r.raw.Max {
			return fmt.Errorf("bounds.%s.min (%g) cannot exceed bounds.%s.max (%g)", r.name, r.raw.Min, r.name, r.raw.Max)
		}
		*r.dst = r.raw
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") && !strings.HasPrefix(connStr, "postgres://") && !strings.HasPrefix(connStr, "postgresql://") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' or be a postgres:// URL")
		}
	}
	return nil
}

// ParseBackend normalizes a backend name. Empty means no history tracking.
func ParseBackend(raw string) (schema.DatabaseBackend, error) {
	backend := schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(raw)))
	if backend == "" {
		return schema.NoneBackend, nil
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", raw)
	}
	return backend, nil
}

// validateBackendConfig validates the history backend configuration.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	backend, err := ParseBackend(input.HistoryBackend)
	if err != nil {
		return err
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = input.HistoryDBConnect
	return ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

// resolvePaths checks that the catalog and artifact bundle exist.
func resolvePaths(cfg *Config, input *ConfigRawInput) error {
	if input.Catalog == "" {
		return fmt.Errorf("--catalog is required")
	}
	if input.Artifacts == "" {
		return fmt.Errorf("--artifacts is required")
	}

	catalogPath, err := filepath.Abs(input.Catalog)
	if err != nil {
		return fmt.Errorf("failed to resolve catalog path %q: %w", input.Catalog, err)
	}
	info, err := os.Stat(catalogPath)
	if err != nil {
		return fmt.Errorf("catalog %q is not readable: %w", input.Catalog, err)
	}
	if info.IsDir() {
		return fmt.Errorf("catalog %q must be a file", input.Catalog)
	}
	switch strings.ToLower(filepath.Ext(catalogPath)) {
	case ".csv", ".parquet":
	default:
		return fmt.Errorf("catalog %q must be a .csv or .parquet file", input.Catalog)
	}

	artifactsDir, err := filepath.Abs(input.Artifacts)
	if err != nil {
		return fmt.Errorf("failed to resolve artifacts path %q: %w", input.Artifacts, err)
	}
	info, err = os.Stat(artifactsDir)
	if err != nil {
		return fmt.Errorf("artifacts %q are not readable: %w", input.Artifacts, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("artifacts %q must be a directory", input.Artifacts)
	}

	cfg.CatalogPath = catalogPath
	cfg.ArtifactsDir = artifactsDir
	return nil
}
