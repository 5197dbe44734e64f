package driven

import "context"

// CypherRunner executes a parameterized write or read query against the
// property graph. Each call runs in its own session; runners must not be
// shared across concurrent callers unless the underlying driver documents
// connection-level thread-safety.
type CypherRunner interface {
	// Run executes the query with the given parameters and returns the
	// result rows as maps keyed by the query's return column names.
	Run(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}
