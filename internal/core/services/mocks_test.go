package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/graphrag/internal/core/domain"
	"github.com/custodia-labs/graphrag/internal/core/ports/driven"
)

// fakeEmbedder returns a fixed-size vector derived from the text length and
// records everything it embedded.
type fakeEmbedder struct {
	dims     int
	embedded []string
	err      error
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{dims: 4}
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.embedded = append(f.embedded, text)
	vec := make([]float32, f.dims)
	vec[0] = float32(len(text))
	return vec, nil
}

func (f *fakeEmbedder) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		vec, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int   { return f.dims }
func (f *fakeEmbedder) ModelName() string { return "fake-embedder" }

// addCall snapshots one AddAll execution, including the additional params in
// effect at the time of the call.
type addCall struct {
	ids              []string
	embeddings       [][]float32
	segments         []*domain.Segment
	additionalParams map[string]any
}

// fakeStore records writes and serves canned search results.
type fakeStore struct {
	label      string
	idProperty string
	indexName  string

	adds             []addCall
	additionalParams map[string]any

	searchRequests []driven.SearchRequest
	matches        []domain.Match
	searchErr      error
	addErr         error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		label:      "Child",
		idProperty: "id",
		indexName:  "child_embedding_index",
	}
}

func (f *fakeStore) AddAll(_ context.Context, ids []string, embeddings [][]float32, segments []*domain.Segment) ([]string, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	params := make(map[string]any, len(f.additionalParams))
	for k, v := range f.additionalParams {
		params[k] = v
	}
	f.adds = append(f.adds, addCall{
		ids:              ids,
		embeddings:       embeddings,
		segments:         segments,
		additionalParams: params,
	})
	out := make([]string, len(segments))
	for i, seg := range segments {
		if id, ok := seg.Metadata[f.idProperty].(string); ok {
			out[i] = id
		}
	}
	return out, nil
}

func (f *fakeStore) Search(_ context.Context, req driven.SearchRequest) ([]domain.Match, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	f.searchRequests = append(f.searchRequests, req)
	return f.matches, nil
}

func (f *fakeStore) SetAdditionalParams(params map[string]any) { f.additionalParams = params }
func (f *fakeStore) IDProperty() string                        { return f.idProperty }
func (f *fakeStore) Label() string                             { return f.label }
func (f *fakeStore) IndexName() string                         { return f.indexName }

// graphCall records one Cypher execution.
type graphCall struct {
	query  string
	params map[string]any
}

// fakeGraph records statements and serves canned rows.
type fakeGraph struct {
	calls []graphCall
	rows  []map[string]any
	err   error
}

func (f *fakeGraph) Run(_ context.Context, query string, params map[string]any) ([]map[string]any, error) {
	f.calls = append(f.calls, graphCall{query: query, params: params})
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

// fakeChat replies with a fixed string and records the conversations.
type fakeChat struct {
	reply         string
	conversations [][]driven.ChatMessage
	err           error
}

func (f *fakeChat) Chat(_ context.Context, messages []driven.ChatMessage) (string, error) {
	f.conversations = append(f.conversations, messages)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeChat) ModelName() string { return "fake-chat" }

// lastUserMessage returns the content of the last user-role message in the
// most recent conversation.
func (f *fakeChat) lastUserMessage() string {
	if len(f.conversations) == 0 {
		return ""
	}
	conv := f.conversations[len(f.conversations)-1]
	for i := len(conv) - 1; i >= 0; i-- {
		if conv[i].Role == driven.RoleUser {
			return conv[i].Content
		}
	}
	return ""
}

// funcSplitter adapts a function to the splitter port.
type funcSplitter func(domain.Document) []*domain.Segment

func (f funcSplitter) Split(doc domain.Document) []*domain.Segment { return f(doc) }

// paragraphStub splits on double newlines, good enough for engine tests.
var paragraphStub = funcSplitter(func(doc domain.Document) []*domain.Segment {
	var segs []*domain.Segment
	for _, part := range strings.Split(doc.Text, "\n\n") {
		if part == "" {
			continue
		}
		segs = append(segs, domain.NewSegment(part, doc.Metadata))
	}
	return segs
})
