package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// resumeCmd continues an interrupted thread from its last checkpoint.
var resumeCmd = &cobra.Command{
	Use:   "resume <thread>",
	Short: "Resume an interrupted research thread",
	Long: `Loads the thread's latest checkpoint and drives it to completion.
Only the step in flight when the run stopped is re-executed; completed steps
are never repeated.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		threadID := args[0]

		configPath, _ := cmd.Flags().GetString("config")
		fc, err := loadFileConfig(configPath)
		if err != nil {
			return err
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		exec, err := buildExecutor(cmd, fc, st)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		final, err := exec.Resume(ctx, threadID)
		if err != nil {
			return fmt.Errorf("resume failed: %w", err)
		}

		printOutcome(final)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resumeCmd)

	resumeCmd.Flags().String("config", "", "Path to a YAML config file")
}
