// Package app provides the command-line surface of the gateway binary.
package app

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jasonp/mcp-gateway/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:               "mcp-gateway",
	DisableAutoGenTag: true,
	Short:             "mcp-gateway bridges MCP clients to personal service APIs",
	Long: `mcp-gateway is a single-user MCP server that exposes GitHub, Gmail,
Google Calendar, Google Drive, Supabase and Anthropic operations as MCP tools.
It speaks JSON-RPC 2.0 over HTTP and resolves credentials through an OAuth
broker, co-resident by default.`,
	Run: func(cmd *cobra.Command, _ []string) {
		if err := cmd.Help(); err != nil {
			logger.Errorf("Error displaying help: %v", err)
		}
	},
}

// NewRootCmd creates the root command for the gateway CLI.
func NewRootCmd() *cobra.Command {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		logger.Errorf("Failed to bind debug flag: %v", err)
	}
	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		// Re-initialize so --debug takes effect after flag parsing.
		logger.Initialize()
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
