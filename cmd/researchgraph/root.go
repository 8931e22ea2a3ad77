package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "researchgraph",
	Short: "Researchgraph answers research questions through a resumable workflow",
	Long: `Researchgraph drives a six-step research pipeline: plan the question
into search queries, run them against the web, validate the results, extract
findings, and generate a report. Every step is checkpointed to a local
database, so an interrupted run resumes from where it stopped.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("db", "researchgraph.db", "Path to the checkpoint database")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Emit step labels and events while running")
}
