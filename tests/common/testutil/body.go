//go:build unit || e2e

package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// BodyEdit rewrites one field of a JSON request body before it is sent.
type BodyEdit func(m map[string]any)

// JSONBody round-trips v through JSON so tests can break individual fields of
// an otherwise valid request DTO.
func JSONBody(t *testing.T, v any, edits ...BodyEdit) map[string]any {
	t.Helper()

	b, err := json.Marshal(v)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	for _, edit := range edits {
		edit(m)
	}
	return m
}

func Without(key string) BodyEdit {
	return func(m map[string]any) { delete(m, key) }
}

func With(key string, value any) BodyEdit {
	return func(m map[string]any) { m[key] = value }
}
