package research

import (
	"os"
	"strconv"
	"time"
)

// Default pipeline limits.
const (
	// DefaultSearchLimit caps how many subqueries are actually searched.
	DefaultSearchLimit = 3

	// DefaultMinValidResults is the error-free result count validation
	// requires before processing.
	DefaultMinValidResults = 2

	// DefaultMaxRetries bounds validation-failure retries.
	DefaultMaxRetries = 2

	// DefaultStepTimeout bounds each step's execution.
	DefaultStepTimeout = 300 * time.Second
)

// Config holds the pipeline's tunable limits. Construct it once and pass
// it to NewSteps; there is no package-level instance.
type Config struct {
	// SearchLimit caps how many subqueries ExecuteSearch runs.
	SearchLimit int

	// MinValidResults is the minimum error-free result count Validate
	// accepts.
	MinValidResults int

	// MaxRetries bounds how many times a validation failure re-enters
	// the search step.
	MaxRetries int

	// StepTimeout bounds each step's execution time.
	StepTimeout time.Duration
}

// DefaultConfig returns the standard limits.
func DefaultConfig() Config {
	return Config{
		SearchLimit:     DefaultSearchLimit,
		MinValidResults: DefaultMinValidResults,
		MaxRetries:      DefaultMaxRetries,
		StepTimeout:     DefaultStepTimeout,
	}
}

// ConfigFromEnv returns DefaultConfig overridden by RESEARCH_SEARCH_LIMIT,
// RESEARCH_MIN_VALID_RESULTS, and RESEARCH_MAX_RETRIES where set. Values
// that don't parse as non-negative integers are ignored.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v, ok := envInt("RESEARCH_SEARCH_LIMIT"); ok {
		cfg.SearchLimit = v
	}
	if v, ok := envInt("RESEARCH_MIN_VALID_RESULTS"); ok {
		cfg.MinValidResults = v
	}
	if v, ok := envInt("RESEARCH_MAX_RETRIES"); ok {
		cfg.MaxRetries = v
	}

	return cfg
}

func envInt(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
