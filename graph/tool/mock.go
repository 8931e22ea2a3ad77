package tool

import (
	"context"
	"fmt"
	"sync"
)

// Mock is a test implementation of Tool.
//
// Responses maps input strings to scripted results. Inputs without an
// entry get a generic placeholder result, so tests only script the
// queries they care about.
//
// Example with error injection:
//
//	mock := &tool.Mock{Err: errors.New("network down")}
//	_, err := mock.Call(ctx, "anything")
//	// Returns the configured error
type Mock struct {
	// Responses maps exact input strings to results.
	Responses map[string]string

	// Err, if set, is returned by every Call.
	Err error

	// Calls records every input passed to Call, in order.
	Calls []string

	mu sync.Mutex
}

// Name implements Tool.
func (m *Mock) Name() string {
	return "mock_search"
}

// Call implements Tool. Records the input and returns the scripted
// response, the configured error, or a placeholder.
func (m *Mock) Call(ctx context.Context, input string) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, input)

	if m.Err != nil {
		return "", m.Err
	}

	if resp, ok := m.Responses[input]; ok {
		return resp, nil
	}
	return fmt.Sprintf("mock result for %q", input), nil
}

// Run mirrors DuckDuckGo.Run so the mock satisfies search-shaped
// interfaces directly.
func (m *Mock) Run(ctx context.Context, query string) (string, error) {
	return m.Call(ctx, query)
}

// CallCount returns how many times the tool was invoked.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.Calls)
}
