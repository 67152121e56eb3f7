package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/mountjawa/peakfinder/core"
	"github.com/mountjawa/peakfinder/internal/artifact"
	"github.com/mountjawa/peakfinder/internal/catalog"
	"github.com/mountjawa/peakfinder/internal/contract"
	"github.com/mountjawa/peakfinder/internal/history"
	"github.com/mountjawa/peakfinder/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// env holds the catalog and artifacts loaded by sharedSetup.
var env core.Env

// historyManager is the global run history manager instance.
var historyManager contract.HistoryManager

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "peakfinder",
	Short:              "Recommend mountains to hike from your trail preferences.",
	Long:               `Peakfinder matches your preferred elevation, duration, distance, gain and difficulty against a mountain catalog and ranks the closest trails.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setConfigLocation()

	// Set environment variable prefix
	viper.SetEnvPrefix("PEAKFINDER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("strategy", schema.BlendStrategy)
	viper.SetDefault("top-n", contract.DefaultTopN)
	viper.SetDefault("limit", contract.DefaultResultLimit)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("color", "yes")
	viper.SetDefault("history-backend", schema.NoneBackend)
	viper.SetDefault("history-db-connect", "")
	viper.SetDefault("addr", contract.DefaultAddr)
	weights := schema.DefaultBlendWeights()
	viper.SetDefault("weights.similarity", weights.Similarity)
	viper.SetDefault("weights.model", weights.Model)
}

// setConfigLocation points viper at --config or the default .peakfinder.yaml search path.
func setConfigLocation() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".peakfinder") // Name of config file (without extension)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")
}

// loadConfigFile reads the config file if one is present.
func loadConfigFile() error {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}
	return nil
}

// sharedSetup unmarshals config, runs validation and loads the catalog and artifacts.
func sharedSetup(_ context.Context, _ *cobra.Command, _ []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := loadConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	// 4. Load the fitted artifacts and the catalog they describe.
	bundle, err := artifact.LoadOnce(cfg.ArtifactsDir, cfg.Strategy == schema.BlendStrategy)
	if err != nil {
		return fmt.Errorf("failed to load artifacts: %w", err)
	}
	mountains, err := catalog.Load(cfg.CatalogPath, bundle)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	env = core.Env{Catalog: mountains, Artifacts: bundle}

	// 5. Initialize run history with validated config
	if err := history.InitHistory(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetHistoryManager sets the global history manager.
func SetHistoryManager(mgr contract.HistoryManager) {
	historyManager = mgr
}
