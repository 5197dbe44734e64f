package domain

// Document is a raw text plus arbitrary metadata, produced externally.
// Documents are treated as immutable once created; splitters derive
// Segments from them without modifying the original.
type Document struct {
	// Text is the full document text.
	Text string

	// Metadata contains arbitrary key-value pairs (string keys,
	// scalar or collection values).
	Metadata map[string]any
}

// NewDocument creates a Document with a defensive copy of the metadata,
// so later segment mutations cannot leak back into the caller's map.
func NewDocument(text string, metadata map[string]any) Document {
	return Document{Text: text, Metadata: CloneMetadata(metadata)}
}

// Segment is a contiguous span of text derived from a Document, either a
// coarse parent unit or a fine-grained child unit. Its metadata carries the
// identity property after assignment, and a parentId for child segments.
type Segment struct {
	// Text is the segment text.
	Text string

	// Metadata contains segment-level key-value pairs.
	Metadata map[string]any
}

// NewSegment creates a Segment with its own copy of the metadata.
func NewSegment(text string, metadata map[string]any) *Segment {
	return &Segment{Text: text, Metadata: CloneMetadata(metadata)}
}

// CloneMetadata returns a shallow copy of a metadata map.
// A nil input yields an empty, writable map.
func CloneMetadata(metadata map[string]any) map[string]any {
	cloned := make(map[string]any, len(metadata))
	for k, v := range metadata {
		cloned[k] = v
	}
	return cloned
}
