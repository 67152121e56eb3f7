package cmd

import (
	"github.com/mountjawa/peakfinder/core"
	"github.com/mountjawa/peakfinder/internal/contract"
	"github.com/spf13/cobra"
)

// catalogCmd groups the catalog inspection commands.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the mountain catalog and its options",
	Long: `Inspect the loaded mountain catalog.

Subcommands:
  list         - Print catalog entries, optionally for one province
  provinces    - Print the province options
  difficulties - Print the difficulty vocabulary of the artifacts
  verify       - Check stored features against the fitted transform

Examples:
  # Everything in Bali
  peakfinder catalog list --province Bali

  # Fail CI when the catalog drifts from the bundle
  peakfinder catalog verify --tolerance 1e-4`,
}

// catalogListCmd prints catalog entries.
var catalogListCmd = &cobra.Command{
	Use:     "list",
	Short:   "Print catalog entries",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		province, _ := cmd.Flags().GetString("province")
		if err := core.ExecuteCatalogList(rootCtx, cfg, env, province); err != nil {
			contract.LogFatal("Cannot list catalog", err)
		}
	},
}

// catalogProvincesCmd prints the province options.
var catalogProvincesCmd = &cobra.Command{
	Use:     "provinces",
	Short:   "Print the province options",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCatalogProvinces(rootCtx, cfg, env); err != nil {
			contract.LogFatal("Cannot list provinces", err)
		}
	},
}

// catalogDifficultiesCmd prints the difficulty vocabulary.
var catalogDifficultiesCmd = &cobra.Command{
	Use:     "difficulties",
	Short:   "Print the difficulty options",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCatalogDifficulties(rootCtx, cfg, env); err != nil {
			contract.LogFatal("Cannot list difficulties", err)
		}
	},
}

// catalogVerifyCmd recomputes every stored feature vector.
var catalogVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check catalog features against the fitted artifacts",
	Long: `Recompute each catalog row's scaled features and encoded difficulty from the
raw columns and compare them with the stored values.

Rows whose features differ by more than --tolerance are printed, and the
command exits non-zero when any row drifts.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		tol, _ := cmd.Flags().GetFloat64("tolerance")
		if err := core.ExecuteCatalogVerify(rootCtx, cfg, env, tol); err != nil {
			contract.LogFatal("Catalog verification failed", err)
		}
	},
}
