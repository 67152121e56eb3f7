package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/mountjawa/peakfinder/internal/catalog"
	"github.com/mountjawa/peakfinder/internal/contract"
	"github.com/mountjawa/peakfinder/internal/parquet"
	"github.com/mountjawa/peakfinder/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// ResultView is a ranked result with its presentation fields resolved.
type ResultView struct {
	Rank     int    `json:"rank"`
	Label    string `json:"label"`
	MapsURL  string `json:"maps_url"`
	ImageURL string `json:"image_url"`
	schema.ScoredCandidate
}

// RecommendationView is the serializable form of a recommendation shared by
// the JSON writer, the HTTP API and the MCP tools.
type RecommendationView struct {
	Status          schema.RecommendationStatus `json:"status"`
	Strategy        schema.RankStrategy         `json:"strategy"`
	Preference      schema.Preference           `json:"preference"`
	CatalogSize     int                         `json:"catalog_size"`
	FilteredSize    int                         `json:"filtered_size"`
	CandidateCount  int                         `json:"candidate_count"`
	GeneratedAt     time.Time                   `json:"generated_at"`
	ArtifactVersion string                      `json:"artifact_version,omitempty"`
	Message         string                      `json:"message,omitempty"`
	Results         []ResultView                `json:"results"`
}

// NewRecommendationView resolves labels, map links and images for every result.
func NewRecommendationView(rec *schema.Recommendation) RecommendationView {
	view := RecommendationView{
		Status:          rec.Status,
		Strategy:        rec.Strategy,
		Preference:      rec.Preference,
		CatalogSize:     rec.CatalogSize,
		FilteredSize:    rec.FilteredSize,
		CandidateCount:  rec.CandidateCount,
		GeneratedAt:     rec.GeneratedAt,
		ArtifactVersion: rec.ArtifactVersion,
		Results:         make([]ResultView, len(rec.Results)),
	}
	if rec.NoMatch() {
		view.Message = NoMatchMessage(rec.Preference.Province)
	}
	for i, r := range rec.Results {
		view.Results[i] = ResultView{
			Rank:            i + 1,
			Label:           contract.GetPlainLabel(r.FinalScore),
			MapsURL:         catalog.MapsLink(r.Mountain),
			ImageURL:        catalog.ImageOrPlaceholder(r.Mountain),
			ScoredCandidate: r,
		}
	}
	return view
}

// NoMatchMessage is shown when the province filter leaves nothing to rank.
func NoMatchMessage(province string) string {
	return fmt.Sprintf("No mountains found in province %q.", province)
}

// PrintRecommendation outputs a recommendation, dispatching based on the output format configured.
func PrintRecommendation(rec *schema.Recommendation, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtRaw := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, NewRecommendationView(rec))
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRecommendationCSV(w, rec, fmtFloat, fmtRaw)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeRecommendationParquet(rec, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRecommendationTable(rec, cfg, fmtFloat, fmtRaw, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeRecommendationTable generates and writes the human-readable table.
func writeRecommendationTable(rec *schema.Recommendation, cfg *contract.Config, fmtFloat, fmtRaw func(float64) string, duration time.Duration, writer io.Writer) error {
	if rec.NoMatch() {
		_, err := fmt.Fprintln(writer, NoMatchMessage(rec.Preference.Province))
		return err
	}

	table := tablewriter.NewWriter(writer)

	headers := []string{"Rank", "Mountain", "Province", "Difficulty", "Score", "Label"}
	if cfg.Detail {
		headers = append(headers, "Elev (m)", "Hours", "Km", "Gain (m)", "Good for")
	}
	if cfg.Explain {
		headers = append(headers, "Similarity", "Model")
	}
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := GetMaxTableNameWidth(cfg)
	var data [][]string
	for i, r := range rec.Results {
		label := contract.GetPlainLabel(r.FinalScore)
		if cfg.UseColors {
			label = contract.GetColorLabel(r.FinalScore)
		}
		row := []string{
			strconv.Itoa(i + 1),
			contract.TruncateText(r.Name, nameWidth),
			r.Province,
			r.Difficulty,
			fmtFloat(r.FinalScore),
			label,
		}
		if cfg.Detail {
			row = append(row,
				fmtRaw(r.ElevationM),
				fmtRaw(r.DurationHours),
				fmtRaw(r.DistanceKM),
				fmtRaw(r.ElevationGainM),
				contract.TruncateText(r.RecommendedFor, 20),
			)
		}
		if cfg.Explain {
			row = append(row, fmtFloat(r.Similarity), fmtFloat(r.ModelScore))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Showing top %d of %d candidates (%d of %d mountains after province filter)\n",
		len(rec.Results), rec.CandidateCount, rec.FilteredSize, rec.CatalogSize); err != nil {
		return err
	}
	if cfg.Detail {
		for i, r := range rec.Results {
			if _, err := fmt.Fprintf(writer, "%2d. %s\n", i+1, catalog.MapsLink(r.Mountain)); err != nil {
				return err
			}
		}
	}
	weights := ""
	if rec.Strategy == schema.BlendStrategy {
		weights = fmt.Sprintf(" (similarity %.2f, model %.2f)", cfg.Weights.Similarity, cfg.Weights.Model)
	}
	if _, err := fmt.Fprintf(writer, "Recommended in %v with strategy %s%s. Artifacts: %s\n", duration, rec.Strategy, weights, rec.ArtifactVersion); err != nil {
		return err
	}
	return nil
}

// writeRecommendationCSV writes the ranked results in CSV format.
func writeRecommendationCSV(w io.Writer, rec *schema.Recommendation, fmtFloat, fmtRaw func(float64) string) error {
	header := []string{
		"rank",
		"name",
		"province",
		"difficulty",
		"elevation_m",
		"duration_hours",
		"distance_km",
		"elevation_gain",
		"similarity",
		"model_score",
		"final_score",
		"label",
		"maps_url",
		"image_url",
		"recommended_for",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, r := range rec.Results {
			record := []string{
				strconv.Itoa(i + 1),
				r.Name,
				r.Province,
				r.Difficulty,
				fmtRaw(r.ElevationM),
				fmtRaw(r.DurationHours),
				fmtRaw(r.DistanceKM),
				fmtRaw(r.ElevationGainM),
				fmtFloat(r.Similarity),
				fmtFloat(r.ModelScore),
				fmtFloat(r.FinalScore),
				contract.GetPlainLabel(r.FinalScore),
				catalog.MapsLink(r.Mountain),
				catalog.ImageOrPlaceholder(r.Mountain),
				r.RecommendedFor,
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeRecommendationParquet writes the ranked results to a Parquet file.
func writeRecommendationParquet(rec *schema.Recommendation, outputFile string) error {
	if err := parquetRequiresFile(outputFile); err != nil {
		return err
	}
	rows := make([]parquet.RecommendationRow, len(rec.Results))
	for i, r := range rec.Results {
		rows[i] = parquet.RecommendationRow{
			Rank:           int32(i + 1),
			Name:           r.Name,
			Province:       r.Province,
			Difficulty:     r.Difficulty,
			ElevationM:     r.ElevationM,
			DurationHours:  r.DurationHours,
			DistanceKM:     r.DistanceKM,
			ElevationGainM: r.ElevationGainM,
			Similarity:     r.Similarity,
			ModelScore:     r.ModelScore,
			FinalScore:     r.FinalScore,
			Label:          contract.GetPlainLabel(r.FinalScore),
			MapsURL:        catalog.MapsLink(r.Mountain),
			ImageURL:       catalog.ImageOrPlaceholder(r.Mountain),
			RecommendedFor: optionalString(r.RecommendedFor),
		}
	}
	if err := parquet.WriteRecommendationsParquet(rows, outputFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", outputFile)
	return nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
