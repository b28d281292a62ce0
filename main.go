package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

// rootCmd runs the storefront server unless a subcommand is given.
var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Bookstore storefront presentation server",
	Long: `Serves the bookstore pages with the shared navbar and footer injected,
the cart kept in client cookies and the admin lists paginated.

Configuration comes from the environment (.env is read when present) and,
optionally, a YAML file given with --config or STOREFRONT_CONFIG.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if configPath != "" {
			_ = os.Setenv("STOREFRONT_CONFIG", configPath)
		}
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (or set STOREFRONT_CONFIG)")

	tokenCmd.AddCommand(tokenInspectCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tokenCmd)

	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
