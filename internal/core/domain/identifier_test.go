package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeIdentifier_AcceptsValidNames(t *testing.T) {
	valid := []string{"Chunk", "HAS_CHILD", "_private", "embedding_1", "a"}
	for _, name := range valid {
		got, err := SanitizeIdentifier(name, "label")
		require.NoError(t, err, name)
		assert.Equal(t, name, got)
	}
}

func TestSanitizeIdentifier_RejectsInjection(t *testing.T) {
	invalid := []string{
		"",
		"Chunk`) DETACH DELETE n //",
		"has child",
		"1starts_with_digit",
		"semi;colon",
		"back`tick",
		"dash-ed",
	}
	for _, name := range invalid {
		_, err := SanitizeIdentifier(name, "label")
		require.Error(t, err, name)
		assert.ErrorIs(t, err, ErrInvalidIdentifier)
	}
}

func TestSanitizeIdentifier_NamesTheKind(t *testing.T) {
	_, err := SanitizeIdentifier("bad name", "relationship type")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relationship type")
}
