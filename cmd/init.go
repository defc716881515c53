package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nbryan/concierge/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Run the interactive configuration wizard",
	Run: func(cmd *cobra.Command, args []string) {
		_, err := config.RunWizard()
		exitOnError(err)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
