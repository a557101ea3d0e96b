package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/berkayinceisci/chipyard-stream-buffers/benchmarks/streammem"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the benchmark phases.",
	Run: func(_ *cobra.Command, _ []string) {
		for _, p := range streammem.DefaultSuite(arrayBase).Phases() {
			fmt.Println(p.Name)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
