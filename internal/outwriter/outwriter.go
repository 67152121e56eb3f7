// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/mountjawa/peakfinder/internal/contract"
	"github.com/mountjawa/peakfinder/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteRecommendation prints a recommendation using the configured output format.
func (ow *OutWriter) WriteRecommendation(rec *schema.Recommendation, cfg *contract.Config, duration time.Duration) error {
	return PrintRecommendation(rec, cfg, duration)
}

// WriteCatalog prints catalog entries using the configured output format.
func (ow *OutWriter) WriteCatalog(mountains []schema.Mountain, cfg *contract.Config) error {
	return PrintCatalog(mountains, cfg)
}

// WriteOptions prints a list of selectable values using the configured output format.
func (ow *OutWriter) WriteOptions(title string, values []string, cfg *contract.Config) error {
	return PrintOptions(title, values, cfg)
}

// WriteDrift prints feature drift reports using the configured output format.
func (ow *OutWriter) WriteDrift(reports []schema.DriftReport, cfg *contract.Config) error {
	return PrintDrift(reports, cfg)
}

// GetMaxTableNameWidth calculates the maximum width for mountain names in table
// output based on terminal width and table configuration.
func GetMaxTableNameWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank + Province + Difficulty + Score + Label with borders/padding
	baseWidth := 60

	if cfg.Detail {
		baseWidth += 45 // Elevation, hours, distance, gain and tag
	}
	if cfg.Explain {
		baseWidth += 25 // Similarity and model score
	}

	// Borders, separators, and padding
	baseWidth += 10

	available := termWidth - baseWidth
	if available < 12 {
		return 12
	}
	if available > 40 {
		return 40
	}
	return available
}
