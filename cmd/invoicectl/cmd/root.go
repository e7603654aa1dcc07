package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openbill/openbill/utils"
)

var version = "1.0.0"

var apiURL string

var rootCmd = &cobra.Command{
	Use:   "invoicectl",
	Short: "Invoice CLI for the OpenBill service",
	Long: `invoicectl manages invoices against an OpenBill server.

Without an account it works fully offline in guest mode, keeping drafts on
disk. Logging in moves every guest draft into the account and switches all
further commands to the hosted service.`,
	Version: version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	defaultURL := os.Getenv("OPENBILL_API_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", defaultURL, "OpenBill server base URL")

	cobra.OnInitialize(func() {
		utils.SetupLogger(utils.LogConfig{Level: "warn", Format: "console", Output: "stderr"})
	})
}
