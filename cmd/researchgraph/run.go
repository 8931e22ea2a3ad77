package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/researchgraph-go/research"
)

// runCmd starts a new research thread.
var runCmd = &cobra.Command{
	Use:   "run [query]",
	Short: "Run the research pipeline for a query",
	Long: `Starts a new research thread for the given query and drives it to
completion, printing the final report to stdout. The thread id is printed to
stderr so the run can be resumed or inspected later.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		configPath, _ := cmd.Flags().GetString("config")
		fc, err := loadFileConfig(configPath)
		if err != nil {
			return err
		}

		cfg := pipelineConfig(fc)
		if cmd.Flags().Changed("max-retries") {
			cfg.MaxRetries, _ = cmd.Flags().GetInt("max-retries")
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

		threadID, _ := cmd.Flags().GetString("thread")
		if threadID == "" {
			threadID = fmt.Sprintf("run-%d", time.Now().UnixNano())
		}
		fmt.Fprintf(os.Stderr, "thread: %s\n", threadID)

		// Interrupts cancel between steps; the last checkpoint stays
		// resumable.
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		initial := research.NewState(query, cfg.MaxRetries)
		verbose, _ := cmd.Flags().GetBool("verbose")

		var final research.State
		if verbose {
			labels, done := exec.Stream(ctx, threadID, &initial)
			for label := range labels {
				fmt.Fprintf(os.Stderr, "completed: %s\n", label)
			}
			result := <-done
			final, err = result.State, result.Err
		} else {
			final, err = exec.Run(ctx, threadID, &initial)
		}
		if err != nil {
			return fmt.Errorf("run failed (resume with: researchgraph resume %s): %w", threadID, err)
		}

		printOutcome(final)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("thread", "", "Thread id to use (generated when empty)")
	runCmd.Flags().Int("max-retries", research.DefaultMaxRetries, "Search retry budget on insufficient results")
	runCmd.Flags().String("config", "", "Path to a YAML config file")
}
