package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
// A bare invocation launches the browser.
var rootCmd = &cobra.Command{
	Use:   "hymods",
	Short: "Browse and share community game content",
	Long: `hymods is a content browser for community-created game assets:
mods, maps, prefabs and modpacks. It reads content from local JSON files
or from a hymods server, and can run that server itself.

Run without a subcommand to launch the interactive browser.`,
	Run: func(_ *cobra.Command, _ []string) {
		runBrowse()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
