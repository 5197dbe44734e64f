// Package splitters breaks documents into segments for indexing. Paragraph
// splitting produces parent-sized pieces, sentence and fixed-size splitting
// produce child-sized pieces. Each segment carries a copy of the document's
// metadata.
package splitters
