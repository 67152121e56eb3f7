package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mountjawa/peakfinder/internal/catalog"
	"github.com/mountjawa/peakfinder/internal/contract"
	"github.com/mountjawa/peakfinder/internal/parquet"
	"github.com/mountjawa/peakfinder/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintCatalog outputs catalog entries, dispatching based on the output format configured.
func PrintCatalog(mountains []schema.Mountain, cfg *contract.Config) error {
	fmtFloat, fmtRaw := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, mountains)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCatalogCSV(w, mountains, fmtFloat, fmtRaw)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeCatalogParquet(mountains, cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCatalogTable(mountains, cfg, fmtRaw, w)
		}, "Wrote table")
	}
}

func writeCatalogTable(mountains []schema.Mountain, cfg *contract.Config, fmtRaw func(float64) string, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	headers := []string{"#", "Mountain", "Province", "Difficulty", "Elev (m)", "Hours", "Km", "Gain (m)"}
	if cfg.Detail {
		headers = append(headers, "Map")
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := GetMaxTableNameWidth(cfg)
	var data [][]string
	for _, m := range mountains {
		row := []string{
			strconv.Itoa(m.Row + 1),
			contract.TruncateText(m.Name, nameWidth),
			m.Province,
			m.Difficulty,
			fmtRaw(m.ElevationM),
			fmtRaw(m.DurationHours),
			fmtRaw(m.DistanceKM),
			fmtRaw(m.ElevationGainM),
		}
		if cfg.Detail {
			row = append(row, catalog.MapsLink(m))
		}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(writer, "Showing %d mountains\n", len(mountains))
	return err
}

// writeCatalogCSV writes entries with the catalog's own header names, so the
// output can be loaded back as a catalog.
func writeCatalogCSV(w io.Writer, mountains []schema.Mountain, fmtFloat, fmtRaw func(float64) string) error {
	header := []string{
		"Name", "Province", "elevation_m", "hiking_duration_hours", "distance_km",
		"Elevation_gain", "difficulty_level", "Latitude", "Longitude", "image_url", "recommended_for",
	}
	for _, k := range schema.FeatureKeys {
		header = append(header, string(k))
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, m := range mountains {
			lat, lon := "", ""
			if m.HasCoordinates() {
				lat, lon = fmtRaw(*m.Latitude), fmtRaw(*m.Longitude)
			}
			record := []string{
				m.Name, m.Province,
				fmtRaw(m.ElevationM), fmtRaw(m.DurationHours), fmtRaw(m.DistanceKM), fmtRaw(m.ElevationGainM),
				m.Difficulty, lat, lon, m.ImageRef, m.RecommendedFor,
			}
			for _, f := range m.Features {
				record = append(record, fmtFloat(f))
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeCatalogParquet(mountains []schema.Mountain, outputFile string) error {
	if err := parquetRequiresFile(outputFile); err != nil {
		return err
	}
	rows := make([]parquet.CatalogRow, len(mountains))
	for i, m := range mountains {
		f := m.Features
		rows[i] = parquet.CatalogRow{
			Name:              m.Name,
			Province:          m.Province,
			ElevationM:        m.ElevationM,
			DurationHours:     m.DurationHours,
			DistanceKM:        m.DistanceKM,
			ElevationGainM:    m.ElevationGainM,
			Difficulty:        m.Difficulty,
			Latitude:          m.Latitude,
			Longitude:         m.Longitude,
			ImageURL:          optionalString(m.ImageRef),
			RecommendedFor:    optionalString(m.RecommendedFor),
			ElevationScaled:   &f[0],
			DurationScaled:    &f[1],
			DistanceScaled:    &f[2],
			GainScaled:        &f[3],
			DifficultyEncoded: &f[4],
		}
	}
	if err := parquet.WriteCatalogParquet(rows, outputFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", outputFile)
	return nil
}

// PrintOptions outputs the values of one selection widget.
func PrintOptions(title string, values []string, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, values)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{strings.ToLower(title)}, func(cw *csv.Writer) error {
				for _, v := range values {
					if err := cw.Write([]string{v}); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for %s options", strings.ToLower(title))
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			for _, v := range values {
				if _, err := fmt.Fprintf(w, "%s\n", v); err != nil {
					return err
				}
			}
			_, err := fmt.Fprintf(w, "%d %s options\n", len(values), strings.ToLower(title))
			return err
		}, "Wrote list")
	}
}

// PrintDrift outputs catalog rows whose stored features drift from the fitted transform.
func PrintDrift(reports []schema.DriftReport, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, reports)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			header := []string{"row", "name", "feature", "stored", "expected", "delta"}
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				for _, r := range reports {
					record := []string{
						strconv.Itoa(r.Row + 1), r.Name, r.Feature,
						fmtFloat(r.Stored), fmtFloat(r.Expected), fmtFloat(r.Delta),
					}
					if err := cw.Write(record); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for drift reports")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			if len(reports) == 0 {
				_, err := fmt.Fprintln(w, "✅ Stored features match the fitted transform")
				return err
			}
			table := tablewriter.NewWriter(w)
			table.Header([]string{"Row", "Mountain", "Feature", "Stored", "Expected", "Delta"})
			table.Configure(func(cfg *tablewriter.Config) {
				cfg.Row.Alignment.Global = tw.AlignRight
			})
			var data [][]string
			for _, r := range reports {
				data = append(data, []string{
					strconv.Itoa(r.Row + 1), r.Name, r.Feature,
					fmtFloat(r.Stored), fmtFloat(r.Expected), fmtFloat(r.Delta),
				})
			}
			if err := table.Bulk(data); err != nil {
				return err
			}
			return table.Render()
		}, "Wrote table")
	}
}
