package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resellkit/research-core/internal/crossval"
)

func writeObservations(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "obs.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadObservations(t *testing.T) {
	path := writeObservations(t, `{
		"brand": [
			{"source_type": "upc_database", "confidence": 0.92, "raw_value": "Sony"},
			{"source_type": "web_search", "confidence": 0.60, "raw_value": "Sony"}
		]
	}`)

	observations, err := readObservations(path)
	require.NoError(t, err)
	require.Len(t, observations["brand"], 2)
	assert.Equal(t, "Sony", observations["brand"][0].RawValue)
}

func TestReadObservations_Empty(t *testing.T) {
	path := writeObservations(t, `{}`)

	_, err := readObservations(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no observations")
}

func TestReadObservations_BadJSON(t *testing.T) {
	path := writeObservations(t, `[1, 2`)

	_, err := readObservations(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse observations")
}

func TestObservations_ValidateRoundTrip(t *testing.T) {
	path := writeObservations(t, `{
		"brand": [
			{"source_type": "upc_database", "confidence": 0.92, "raw_value": "Sony"},
			{"source_type": "web_search", "confidence": 0.60, "raw_value": "Sony"}
		]
	}`)

	observations, err := readObservations(path)
	require.NoError(t, err)

	results := crossval.ValidateAll(observations)
	require.Len(t, results, 1)
	assert.Equal(t, "brand", results[0].FieldName)
	assert.Equal(t, "Sony", results[0].Value)
	assert.Equal(t, 2, results[0].IndependentGroupCount)
	assert.Empty(t, results[0].Conflicts)

	report := validationReport{Fields: results, Summary: crossval.Summarize(results)}
	assert.Equal(t, 1, report.Summary.Fields)
	assert.Equal(t, 1, report.Summary.MultiSourceFields)
	assert.Zero(t, report.Summary.Conflicts)
}
