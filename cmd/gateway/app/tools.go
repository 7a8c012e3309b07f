package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jasonp/mcp-gateway/pkg/providers/calendar"
	"github.com/jasonp/mcp-gateway/pkg/providers/drive"
	"github.com/jasonp/mcp-gateway/pkg/providers/github"
	"github.com/jasonp/mcp-gateway/pkg/providers/gmail"
	"github.com/jasonp/mcp-gateway/pkg/providers/supabase"
	"github.com/jasonp/mcp-gateway/pkg/registry"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List every tool the gateway exposes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, err := registry.New(
			github.New(),
			gmail.New(""),
			calendar.New(),
			drive.New(),
			supabase.New(""),
		)
		if err != nil {
			return err
		}

		tools := reg.ListTools()
		for _, tool := range tools {
			fmt.Fprintf(cmd.OutOrStdout(), "%-40s %s\n", tool.Name, tool.Description)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d tools\n", len(tools))
		return nil
	},
}
