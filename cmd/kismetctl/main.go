// Command kismetctl runs the post-build and maintenance steps of the
// preview service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "kismetctl",
	Short:         "Build and maintenance tools for the Kismet preview service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./kismet.toml", "path to the configuration file")
	rootCmd.AddCommand(scriptRefCmd, manifestCmd, renderCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
