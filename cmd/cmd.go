// Package cmd defines the command-line interface for peakfinder.
package cmd

import (
	"github.com/mountjawa/peakfinder/internal/catalog"
	"github.com/mountjawa/peakfinder/internal/contract"
	"github.com/mountjawa/peakfinder/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the catalog subcommands to the parent catalog command
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogProvincesCmd)
	catalogCmd.AddCommand(catalogDifficultiesCmd)
	catalogCmd.AddCommand(catalogVerifyCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	weights := schema.DefaultBlendWeights()
	rootCmd.PersistentFlags().String("catalog", "", "Path to the mountain catalog (.csv or .parquet)")
	rootCmd.PersistentFlags().String("artifacts", "", "Path to the fitted artifact bundle directory")
	rootCmd.PersistentFlags().String("strategy", string(schema.BlendStrategy), "Ranking strategy: blend or similarity")
	rootCmd.PersistentFlags().Int("top-n", contract.DefaultTopN, "Number of similar candidates to re-rank")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().Float64("weights.similarity", weights.Similarity, "Blend weight of the similarity score")
	rootCmd.PersistentFlags().Float64("weights.model", weights.Model, "Blend weight of the model score")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Bool("detail", false, "Print image, tag and map link per result")
	rootCmd.PersistentFlags().Bool("explain", false, "Print similarity and model score per result")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("history-backend", string(schema.NoneBackend), "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname?parseTime=true)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Preference flags are read directly, since unset ones fall back to catalog medians
	recommendCmd.Flags().String("province", "", "Province to search in (empty = all provinces)")
	recommendCmd.Flags().Float64("elevation", 0, "Preferred summit elevation in meters")
	recommendCmd.Flags().Float64("duration", 0, "Preferred hiking duration in hours")
	recommendCmd.Flags().Float64("distance", 0, "Preferred trail distance in kilometers")
	recommendCmd.Flags().Float64("gain", 0, "Preferred elevation gain in meters")
	recommendCmd.Flags().String("difficulty", catalog.DefaultDifficulty, "Preferred difficulty label")

	catalogListCmd.Flags().String("province", "", "Only list mountains in this province")
	catalogVerifyCmd.Flags().Float64("tolerance", catalog.DefaultTolerance, "Maximum absolute feature drift per column")

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("addr", contract.DefaultAddr, "Listen address for the web server")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
