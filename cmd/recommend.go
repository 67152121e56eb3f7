package cmd

import (
	"github.com/mountjawa/peakfinder/core"
	"github.com/mountjawa/peakfinder/internal/catalog"
	"github.com/mountjawa/peakfinder/internal/contract"
	"github.com/mountjawa/peakfinder/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// recommendCmd ranks catalog mountains against one preference.
var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Show the mountains that best match your trail preferences.",
	Long: `Rank catalog mountains by how closely they match a hiking preference.

The preference is scaled with the fitted artifacts and compared against every
catalog entry by cosine similarity. The closest candidates are then re-ranked:
- blend: weighted sum of similarity and the learned suitability score
- similarity: similarity alone, no model required

Unset preference flags fall back to the catalog medians, and difficulty
defaults to Moderate.

Examples:
  # Recommend from the catalog medians
  peakfinder recommend --catalog mountains.csv --artifacts bundle/

  # A long hard day in Central Java
  peakfinder recommend --province "Jawa Tengah" --elevation 3300 --duration 10 \
    --distance 12 --gain 1600 --difficulty Hard

  # Pure similarity ranking with score columns
  peakfinder recommend --strategy similarity --explain

  # Export the top 20 to JSON
  peakfinder recommend --limit 20 --output json --output-file picks.json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		pref, err := preferenceFromFlags(cmd.Flags(), env)
		if err != nil {
			contract.LogFatal("Invalid preference flags", err)
		}
		if err := core.ExecuteRecommend(rootCtx, cfg, env, pref, historyManager); err != nil {
			contract.LogFatal("Cannot run recommendation", err)
		}
	},
}

// preferenceFromFlags overlays the flags the user set on the catalog defaults.
func preferenceFromFlags(flags *pflag.FlagSet, env core.Env) (schema.Preference, error) {
	pref := catalog.DefaultPreference(env.Catalog, catalog.Difficulties(env.Artifacts))

	if flags.Changed("province") {
		province, err := flags.GetString("province")
		if err != nil {
			return pref, err
		}
		pref.Province = province
	}
	if flags.Changed("difficulty") {
		difficulty, err := flags.GetString("difficulty")
		if err != nil {
			return pref, err
		}
		pref.Difficulty = difficulty
	}

	numeric := []struct {
		name string
		dst  *float64
	}{
		{"elevation", &pref.ElevationM},
		{"duration", &pref.DurationHours},
		{"distance", &pref.DistanceKM},
		{"gain", &pref.ElevationGainM},
	}
	for _, f := range numeric {
		if !flags.Changed(f.name) {
			continue
		}
		v, err := flags.GetFloat64(f.name)
		if err != nil {
			return pref, err
		}
		*f.dst = v
	}
	return pref, nil
}
