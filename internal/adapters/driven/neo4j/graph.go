package neo4j

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/custodia-labs/graphrag/internal/core/ports/driven"
)

// Ensure Graph implements the interface.
var _ driven.CypherRunner = (*Graph)(nil)

// Graph executes parameterized Cypher statements, one session per call.
// A Graph must not be shared across concurrent callers.
type Graph struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewGraph creates a Cypher runner for the given database
// (default: neo4j).
func NewGraph(driver neo4j.DriverWithContext, database string) *Graph {
	if database == "" {
		database = DefaultDatabase
	}
	return &Graph{driver: driver, database: database}
}

// Run executes the statement and returns the result rows keyed by the
// query's return column names.
func (g *Graph) Run(ctx context.Context, statement string, params map[string]any) ([]map[string]any, error) {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: g.database})
	defer session.Close(ctx)

	result, err := session.Run(ctx, statement, params)
	if err != nil {
		return nil, err
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]any, len(records))
	for i, record := range records {
		rows[i] = record.AsMap()
	}
	return rows, nil
}
