package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// historyCmd prints a thread's checkpoint trail.
var historyCmd = &cobra.Command{
	Use:   "history <thread>",
	Short: "Show a thread's checkpoint history",
	Long: `Prints one line per checkpoint: step number, step id, stage, and the
retry count at that point. Useful for telling a clean run apart from one that
recovered through retries.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		threadID := args[0]

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		snaps, err := st.History(cmd.Context(), threadID)
		if err != nil {
			return fmt.Errorf("failed to load history for %s: %w", threadID, err)
		}

		for _, snap := range snaps {
			line := fmt.Sprintf("%3d  %-12s stage=%-11s retries=%d",
				snap.Step, snap.StepID, snap.State.Stage, snap.State.RetryCount)
			if snap.State.ErrorDetail != "" {
				line += "  error=" + snap.State.ErrorDetail
			}
			fmt.Println(line)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
