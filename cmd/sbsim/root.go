package main

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sbsim",
	Short: "Stream buffer prefetcher model driver.",
	Long: `sbsim drives a functional model of a stream buffer prefetcher ` +
		`with the access patterns of the RISC-V stream buffer ` +
		`microbenchmarks and reports per-phase hit rates and prefetch ` +
		`counts.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
