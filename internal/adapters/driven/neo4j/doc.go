// Package neo4j adapts a Neo4j vector index as the embedding store and
// exposes a parameterized Cypher runner for parent-node writes.
//
// The store owns its schema: a vector index over the configured label and
// embedding property, plus a uniqueness constraint on the identity property.
// Label, property, relationship and index names are sanitized against an
// identifier allow-list before they are spliced into query text.
package neo4j
