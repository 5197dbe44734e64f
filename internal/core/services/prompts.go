package services

import (
	"strings"

	"github.com/custodia-labs/graphrag/internal/core/domain"
)

// DefaultAnswerPrompt is the built-in instruction prefix for the
// answer-synthesis model.
const DefaultAnswerPrompt = `You are an assistant that helps to form nice and human
understandable answers based on the provided information from tools.
Do not add any other information that wasn't present in the tools, and use
very concise style in interpreting results!
`

// answerTemplate is appended to the answer prompt; {{context}} and
// {{question}} are filled at retrieval time.
const answerTemplate = `Answer the question based only on the context provided.

Context: {{context}}

Question: {{question}}

Answer:
`

// Transform prompt presets per variant.
const (
	summarySystemPrompt = `You are generating concise and accurate summaries based on the information found in the text.
`

	summaryUserPrompt = `Generate a summary of the following input:
{{input}}

Summary:
`

	questionSystemPrompt = `You are generating hypothetical questions based on the information found in the text.
Make sure to provide full context in the generated questions.
`

	questionUserPrompt = `Use the given format to generate hypothetical questions from the following input:
{{input}}

Hypothetical questions:
`
)

// TransformPrompts returns the built-in system/user prompt pair for a
// variant's transform model, or empty strings when the variant does not
// transform parent text.
func TransformPrompts(v domain.Variant) (system, user string) {
	switch v {
	case domain.VariantSummary:
		return summarySystemPrompt, summaryUserPrompt
	case domain.VariantHypotheticalQuestion:
		return questionSystemPrompt, questionUserPrompt
	default:
		return "", ""
	}
}

// applyTemplate substitutes {{name}} placeholders in a prompt template.
func applyTemplate(template string, vars map[string]string) string {
	out := template
	for name, value := range vars {
		out = strings.ReplaceAll(out, "{{"+name+"}}", value)
	}
	return out
}
