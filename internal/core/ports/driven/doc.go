// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): embedding models, chat models, the graph
// store, and document splitters.
package driven
