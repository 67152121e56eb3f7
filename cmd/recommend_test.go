package cmd

import (
	"path/filepath"
	"testing"

	"github.com/mountjawa/peakfinder/core"
	"github.com/mountjawa/peakfinder/internal/artifact"
	"github.com/mountjawa/peakfinder/internal/catalog"
	"github.com/mountjawa/peakfinder/schema"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureEnv(t *testing.T) core.Env {
	t.Helper()
	bundle, err := artifact.Load(filepath.Join("..", "testdata", "bundle"), true)
	require.NoError(t, err)
	mountains, err := catalog.Load(filepath.Join("..", "testdata", "mountains.csv"), bundle)
	require.NoError(t, err)
	return core.Env{Catalog: mountains, Artifacts: bundle}
}

func preferenceFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("recommend", pflag.ContinueOnError)
	flags.String("province", "", "")
	flags.Float64("elevation", 0, "")
	flags.Float64("duration", 0, "")
	flags.Float64("distance", 0, "")
	flags.Float64("gain", 0, "")
	flags.String("difficulty", catalog.DefaultDifficulty, "")
	return flags
}

func TestPreferenceFromFlags(t *testing.T) {
	env := fixtureEnv(t)
	defaults := catalog.DefaultPreference(env.Catalog, catalog.Difficulties(env.Artifacts))

	t.Run("unset flags use catalog defaults", func(t *testing.T) {
		flags := preferenceFlags()
		require.NoError(t, flags.Parse(nil))

		pref, err := preferenceFromFlags(flags, env)
		require.NoError(t, err)
		assert.Equal(t, defaults, pref)
		assert.Equal(t, schema.AllProvinces, pref.Province)
	})

	t.Run("set flags override defaults", func(t *testing.T) {
		flags := preferenceFlags()
		require.NoError(t, flags.Parse([]string{
			"--province", "Jawa Timur",
			"--elevation", "3676",
			"--gain", "1800",
			"--difficulty", "Hard",
		}))

		pref, err := preferenceFromFlags(flags, env)
		require.NoError(t, err)
		assert.Equal(t, "Jawa Timur", pref.Province)
		assert.Equal(t, 3676.0, pref.ElevationM)
		assert.Equal(t, 1800.0, pref.ElevationGainM)
		assert.Equal(t, "Hard", pref.Difficulty)
		assert.Equal(t, defaults.DurationHours, pref.DurationHours)
		assert.Equal(t, defaults.DistanceKM, pref.DistanceKM)
	})

	t.Run("explicit zero is kept", func(t *testing.T) {
		flags := preferenceFlags()
		require.NoError(t, flags.Parse([]string{"--elevation", "0"}))

		pref, err := preferenceFromFlags(flags, env)
		require.NoError(t, err)
		assert.Equal(t, 0.0, pref.ElevationM)
	})
}
