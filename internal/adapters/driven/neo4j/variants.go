package neo4j

import (
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/custodia-labs/graphrag/internal/core/domain"
)

// childCreationQuery attaches each embedding row to its parent node through
// the variant's relationship type. %[1]s is the label, %[2]s the identity
// property, %[3]s the relationship type.
const childCreationQuery = `UNWIND $rows AS row
MATCH (p:Parent {parentId: $parentId})
CREATE (p)-[:%[3]s]->(u:%[1]s {%[2]s: row.%[2]s})
SET u += row.props
WITH row, u
CALL db.create.setNodeVectorProperty(u, $embeddingProperty, row.embedding)
RETURN count(*)`

// parentRetrievalQuery deduplicates matched children to one row per parent:
// the best-scoring child supplies the group's score and surfaced metadata,
// the parent supplies the returned text. LIMIT applies after grouping.
const parentRetrievalQuery = `MATCH (node)<-[:%s]-(parent)
WITH parent, node, score
ORDER BY score DESC
WITH parent, collect(score)[0] AS score, collect(node)[0] AS best
RETURN parent.text AS text, score, properties(best) AS metadata
ORDER BY score DESC
LIMIT $maxResults`

// concatRetrievalQuery returns the parent text with every matching child's
// text appended, ranked by the group's best score. LIMIT applies after
// grouping.
const concatRetrievalQuery = `MATCH (node)<-[:%s]-(parent)
WITH parent, collect(node.text) AS chunks, max(score) AS score
RETURN parent.text + reduce(acc = '', c IN chunks | acc + '\n\n' + c) AS text,
       score,
       properties(parent) AS metadata
ORDER BY score DESC
LIMIT $maxResults`

// aggregationOverfetch widens the child-level fetch for aggregating
// variants, so several children collapsing into one parent still leave
// enough groups to fill the post-grouping LIMIT.
const aggregationOverfetch = 2

// VariantStoreConfig returns the store configuration preset for a retriever
// variant: its label, index, relationship-aware creation query and
// aggregating retrieval query.
func VariantStoreConfig(variant domain.Variant, driver neo4j.DriverWithContext, dimension int) (Config, error) {
	spec := variant.Spec()
	cfg := Config{
		Driver:    driver,
		Dimension: dimension,
		Label:     spec.Label,
		IndexName: spec.IndexName,
	}
	if spec.Relationship == "" {
		return cfg, nil
	}

	relationship, err := domain.SanitizeIdentifier(spec.Relationship, "relationship type")
	if err != nil {
		return Config{}, err
	}

	cfg.Relationship = relationship
	cfg.CreationQuery = childCreationQuery
	cfg.Overfetch = aggregationOverfetch
	if spec.ConcatChildren {
		cfg.RetrievalQuery = fmt.Sprintf(concatRetrievalQuery, relationship)
	} else {
		cfg.RetrievalQuery = fmt.Sprintf(parentRetrievalQuery, relationship)
	}
	return cfg, nil
}
