package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "parliament",
	Short: "Bills and votes of the House of Commons",
	Long: `Serve browsable pages, a JSON API, and RSS feeds for the bills and
recorded votes of the Canadian House of Commons.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
