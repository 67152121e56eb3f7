package cmd

import (
	"github.com/mountjawa/peakfinder/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the peakfinder MCP server",
	Long:  `Launch an MCP server on stdio that lets AI agents request mountain recommendations and catalog options via standard tools.`,
	Args:  cobra.NoArgs,
	// Stdout carries the protocol, so nothing else may print there.
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, env, historyManager)
	},
}
