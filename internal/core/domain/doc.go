// Package domain contains the core business entities for graph-backed
// retrieval: documents, segments, retrieved content, and retriever variants.
// It has no dependencies on infrastructure packages.
package domain
