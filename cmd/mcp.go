package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nbryan/concierge/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio for AI agent integration",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		exitOnError(err)

		application, err := buildApp(cfg)
		exitOnError(err)
		defer application.Close()

		srv := mcp.NewServer(application.manager, application.store)
		exitOnError(srv.Serve())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
