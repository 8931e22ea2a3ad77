// Package tool provides external capabilities workflow steps can invoke,
// such as web search.
package tool

import "context"

// Tool is a named capability with a plain-text contract: input in, result
// out. Steps that need structured results parse the string themselves.
//
// Implementations must be safe for concurrent use and respect context
// cancellation.
type Tool interface {
	// Name uniquely identifies the tool.
	Name() string

	// Call invokes the tool. Errors indicate the tool itself failed;
	// "no results" outcomes are returned as text, not errors.
	Call(ctx context.Context, input string) (string, error)
}
