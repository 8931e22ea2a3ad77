package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dshills/researchgraph-go/graph"
	"github.com/dshills/researchgraph-go/graph/emit"
	"github.com/dshills/researchgraph-go/graph/model"
	"github.com/dshills/researchgraph-go/graph/model/anthropic"
	"github.com/dshills/researchgraph-go/graph/model/google"
	"github.com/dshills/researchgraph-go/graph/model/openai"
	"github.com/dshills/researchgraph-go/graph/store"
	"github.com/dshills/researchgraph-go/graph/tool"
	"github.com/dshills/researchgraph-go/research"
)

// fileConfig is the optional YAML config file accepted by --config.
// Unset fields keep their environment or built-in defaults.
type fileConfig struct {
	Provider        string `yaml:"provider"`
	Model           string `yaml:"model"`
	SearchLimit     int    `yaml:"search_limit"`
	MinValidResults int    `yaml:"min_valid_results"`
	MaxRetries      int    `yaml:"max_retries"`
	StepTimeoutSecs int    `yaml:"step_timeout_seconds"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("failed to parse config file: %w", err)
	}
	return fc, nil
}

// pipelineConfig layers the YAML file over environment overrides over the
// built-in defaults.
func pipelineConfig(fc fileConfig) research.Config {
	cfg := research.ConfigFromEnv()

	if fc.SearchLimit > 0 {
		cfg.SearchLimit = fc.SearchLimit
	}
	if fc.MinValidResults > 0 {
		cfg.MinValidResults = fc.MinValidResults
	}
	if fc.MaxRetries > 0 {
		cfg.MaxRetries = fc.MaxRetries
	}
	if fc.StepTimeoutSecs > 0 {
		cfg.StepTimeout = time.Duration(fc.StepTimeoutSecs) * time.Second
	}

	return cfg
}

// selectModel picks an LLM provider: an explicit provider name from the
// config file wins, otherwise the first API key found in the environment.
func selectModel(fc fileConfig) (model.ChatModel, error) {
	switch fc.Provider {
	case "openai":
		return openai.NewChatModel(os.Getenv("OPENAI_API_KEY"), fc.Model), nil
	case "anthropic":
		return anthropic.NewChatModel(os.Getenv("ANTHROPIC_API_KEY"), fc.Model), nil
	case "google":
		return google.NewChatModel(os.Getenv("GOOGLE_API_KEY"), fc.Model), nil
	case "":
	default:
		return nil, fmt.Errorf("unknown provider %q (want openai, anthropic, or google)", fc.Provider)
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return openai.NewChatModel(key, fc.Model), nil
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return anthropic.NewChatModel(key, fc.Model), nil
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		return google.NewChatModel(key, fc.Model), nil
	}

	return nil, errors.New("no LLM provider configured: set OPENAI_API_KEY, ANTHROPIC_API_KEY, or GOOGLE_API_KEY")
}

// openStore opens the SQLite checkpoint store named by the --db flag.
func openStore(cmd *cobra.Command) (*store.SQLiteStore[research.State], error) {
	dbPath, _ := cmd.Flags().GetString("db")
	return store.NewSQLiteStore[research.State](dbPath)
}

// newEmitter returns a stderr log emitter when --verbose is set, otherwise
// the no-op emitter.
func newEmitter(cmd *cobra.Command) emit.Emitter {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		return emit.NewLogEmitter(os.Stderr, false)
	}
	return emit.NewNullEmitter()
}

// buildExecutor assembles the full pipeline: model, search tool, steps,
// graph, and executor over the given store.
func buildExecutor(cmd *cobra.Command, fc fileConfig, st *store.SQLiteStore[research.State]) (*graph.Executor[research.State, research.Delta], error) {
	m, err := selectModel(fc)
	if err != nil {
		return nil, err
	}

	steps := research.NewSteps(m, tool.NewDuckDuckGo(), pipelineConfig(fc))

	return research.NewExecutor(steps, st, newEmitter(cmd))
}

// printOutcome writes the final report to stdout and flags degraded runs.
func printOutcome(final research.State) {
	fmt.Println(final.Report)
	if final.ErrorDetail != "" {
		fmt.Fprintf(os.Stderr, "note: run completed after errors: %s\n", final.ErrorDetail)
	}
}
