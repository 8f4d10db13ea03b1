package main

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

func TestIngestFlagsRequired(t *testing.T) {
	defer rootCmd.SetArgs(nil)
	rootCmd.SetArgs([]string{"ingest", "--url", "s3://b/k.pdf"})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--company")
}

func TestIngestRequestFromFlags(t *testing.T) {
	require.NoError(t, ingestCmd.Flags().Parse([]string{
		"--url", "s3://pdr-documents/acme/q3.pdf", "--company", "acme", "--user", "u-1",
		"--force-ocr", "--provider", "azure",
	}))
	req, err := ingestRequestFromFlags(ingestCmd)
	require.NoError(t, err)
	assert.Equal(t, "q3.pdf", req.DocumentName)
	assert.True(t, req.Options.ForceOCR)
	assert.Equal(t, models.ProviderAzure, req.Options.PreferredProvider)
}

func TestSearchRequestFromFlags(t *testing.T) {
	require.NoError(t, searchCmd.Flags().Parse([]string{
		"--query", "renewal", "--scope", "multi_document", "--id", "d1", "--id", "d2,d3", "--top-k", "7",
	}))
	req, err := searchRequestFromFlags(searchCmd)
	require.NoError(t, err)
	assert.Equal(t, models.ScopeMultiDocument, req.Scope.Scope)
	assert.Equal(t, []string{"d1", "d2", "d3"}, req.Scope.DocumentIDs)
	assert.Equal(t, 7, req.TopK)

	require.NoError(t, searchCmd.Flags().Set("scope", "everything"))
	_, err = searchRequestFromFlags(searchCmd)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "warn", true)
	log.Info("hidden")
	log.Warn("shown", "k", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	assert.Equal(t, slog.LevelDebug, parseLevel(" DEBUG "))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}
