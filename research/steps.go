package research

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/researchgraph-go/graph/model"
)

const (
	maxSubqueries = 5
	maxFindings   = 5
)

// Searcher is the external search collaborator. DuckDuckGo in production,
// tool.Mock in tests.
type Searcher interface {
	Run(ctx context.Context, query string) (string, error)
}

// Steps holds the pipeline's step functions and their collaborators.
//
// Every method has the step signature (ctx, State) -> (Delta, error).
// Expected failures, such as a single search query erroring, are recorded
// in the delta as data; a returned error means the step itself failed and
// the run should stop with the last checkpoint intact.
type Steps struct {
	Model    model.ChatModel
	Searcher Searcher
	Config   Config
}

// NewSteps wires step functions to their collaborators.
func NewSteps(m model.ChatModel, s Searcher, cfg Config) *Steps {
	return &Steps{Model: m, Searcher: s, Config: cfg}
}

// Plan asks the model to break the research question into subqueries.
//
// The plan text is kept verbatim in TaskPlan; subqueries are the plan's
// non-blank, non-comment lines, capped at 5. A model failure here is fatal
// since nothing downstream can run without a plan.
func (s *Steps) Plan(ctx context.Context, state State) (Delta, error) {
	prompt := []model.Message{
		{
			Role: model.RoleSystem,
			Content: "You are a research planner. Break the research question into " +
				"concrete web search queries, one per line. Output only the queries, " +
				"at most 5 lines, no numbering.",
		},
		{
			Role:    model.RoleUser,
			Content: "Research question: " + state.TaskQuery,
		},
	}

	out, err := s.Model.Chat(ctx, prompt)
	if err != nil {
		return Delta{}, fmt.Errorf("planning failed: %w", err)
	}

	conversation := cloneMessages(state.Conversation)
	conversation = append(conversation, model.Message{
		Role:    model.RoleAssistant,
		Content: out.Text,
	})

	return Delta{
		Conversation: conversation,
		TaskPlan:     strPtr(out.Text),
		Subqueries:   parseSubqueries(out.Text),
		Stage:        StageSearching,
	}, nil
}

// ExecuteSearch runs the first SearchLimit subqueries through the search
// collaborator. A failed query is recorded as an error-tagged result and
// the loop continues; only validation decides whether the batch suffices.
//
// Results are append-only: on retry the new batch lands after whatever
// earlier attempts recorded.
func (s *Steps) ExecuteSearch(ctx context.Context, state State) (Delta, error) {
	queries := state.Subqueries
	if len(queries) > s.Config.SearchLimit {
		queries = queries[:s.Config.SearchLimit]
	}

	results := make([]Result, 0, len(state.Results)+len(queries))
	results = append(results, state.Results...)

	for _, query := range queries {
		payload, err := s.Searcher.Run(ctx, query)
		if err != nil {
			results = append(results, Result{Query: query, Err: err.Error()})
			continue
		}
		results = append(results, Result{Query: query, Payload: payload})
	}

	return Delta{
		Results: results,
		Stage:   StageValidating,
	}, nil
}

// Validate checks whether enough searches succeeded. It only flags; the
// retry decision belongs to HandleError.
func (s *Steps) Validate(_ context.Context, state State) (Delta, error) {
	valid := 0
	for _, r := range state.Results {
		if !r.Failed() {
			valid++
		}
	}

	if valid >= s.Config.MinValidResults {
		return Delta{Stage: StageProcessing}, nil
	}

	return Delta{
		RetryCount: intPtr(state.RetryCount + 1),
		ErrorDetail: strPtr(fmt.Sprintf(
			"Insufficient search results: got %d valid, need %d",
			valid, s.Config.MinValidResults)),
		Stage: StageError,
	}, nil
}

// Process asks the model to extract key findings from the successful
// search payloads. Zero extracted findings is a valid outcome; report
// generation tolerates it. A model failure is fatal.
func (s *Steps) Process(ctx context.Context, state State) (Delta, error) {
	var payloads []string
	for _, r := range state.Results {
		if !r.Failed() {
			payloads = append(payloads, fmt.Sprintf("Query: %s\nResult: %s", r.Query, r.Payload))
		}
	}

	prompt := []model.Message{
		{
			Role: model.RoleSystem,
			Content: "You are a research analyst. Extract the key findings from the " +
				"search results below as bullet points starting with \"-\", at most 5.",
		},
		{
			Role:    model.RoleUser,
			Content: strings.Join(payloads, "\n\n"),
		},
	}

	out, err := s.Model.Chat(ctx, prompt)
	if err != nil {
		return Delta{}, fmt.Errorf("processing failed: %w", err)
	}

	return Delta{
		Findings: parseFindings(out.Text),
		Stage:    StageGenerating,
	}, nil
}

// Generate asks the model to synthesize the final report from the research
// question and findings. An empty report is treated as a model failure so
// the completed-implies-report invariant holds.
func (s *Steps) Generate(ctx context.Context, state State) (Delta, error) {
	var sb strings.Builder
	sb.WriteString("Research question: ")
	sb.WriteString(state.TaskQuery)
	sb.WriteString("\n\nFindings:\n")
	if len(state.Findings) == 0 {
		sb.WriteString("(no findings were extracted)\n")
	}
	for _, f := range state.Findings {
		sb.WriteString("- ")
		sb.WriteString(f)
		sb.WriteString("\n")
	}

	prompt := []model.Message{
		{
			Role: model.RoleSystem,
			Content: "You are a research writer. Write a report with a summary, " +
				"the findings, and a conclusion.",
		},
		{
			Role:    model.RoleUser,
			Content: sb.String(),
		},
	}

	out, err := s.Model.Chat(ctx, prompt)
	if err != nil {
		return Delta{}, fmt.Errorf("report generation failed: %w", err)
	}

	report := strings.TrimSpace(out.Text)
	if report == "" {
		return Delta{}, errors.New("report generation failed: model returned empty report")
	}

	conversation := cloneMessages(state.Conversation)
	conversation = append(conversation, model.Message{
		Role:    model.RoleAssistant,
		Content: report,
	})

	return Delta{
		Conversation: conversation,
		Report:       strPtr(report),
		Stage:        StageComplete,
	}, nil
}

// HandleError decides between retrying the search and giving up.
//
// Within budget it clears ErrorDetail and re-enters at Search, reusing the
// existing subqueries rather than re-planning. Exhausted, it writes the
// failure report and completes normally; exhausted retries are a graceful
// outcome, not a run failure.
func (s *Steps) HandleError(_ context.Context, state State) (Delta, error) {
	if state.RetryCount <= state.MaxRetries {
		return Delta{
			ErrorDetail: strPtr(""),
			Stage:       StageSearching,
		}, nil
	}

	return Delta{
		Report: strPtr("Failed to complete research: " + state.ErrorDetail),
		Stage:  StageComplete,
	}, nil
}

// parseSubqueries extracts search queries from the plan text: one per
// line, blank lines and "#" comment lines skipped, capped at 5.
func parseSubqueries(text string) []string {
	queries := make([]string, 0, maxSubqueries)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, line)
		if len(queries) == maxSubqueries {
			break
		}
	}
	return queries
}

// parseFindings extracts bullet lines ("-", "•", "*") with the marker
// stripped, capped at 5. Always returns a non-nil slice so the delta
// replaces findings even when nothing was extracted.
func parseFindings(text string) []string {
	findings := make([]string, 0, maxFindings)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		var body string
		switch {
		case strings.HasPrefix(line, "-"):
			body = strings.TrimPrefix(line, "-")
		case strings.HasPrefix(line, "•"):
			body = strings.TrimPrefix(line, "•")
		case strings.HasPrefix(line, "*"):
			body = strings.TrimPrefix(line, "*")
		default:
			continue
		}
		body = strings.TrimSpace(body)
		if body == "" {
			continue
		}
		findings = append(findings, body)
		if len(findings) == maxFindings {
			break
		}
	}
	return findings
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func cloneMessages(messages []model.Message) []model.Message {
	out := make([]model.Message, len(messages))
	copy(out, messages)
	return out
}
