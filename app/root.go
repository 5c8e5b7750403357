// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "starter-kit",
	Short: "starter-kit is a web-based admin back office",
	Long: `starter-kit is a web-based admin back office providing user and role
management, grouped application settings and social login providers.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
