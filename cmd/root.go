package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nbryan/concierge/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "concierge",
	Short: "Conversational personal-productivity assistant",
	Long: `Concierge manages your tasks, appointments, habits, and grocery
list through plain language, typed or spoken. Say what you want done;
it interprets the request, applies it to your local data, and keeps a
running conversation with confirmations and corrections.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigFile, "config file path")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
