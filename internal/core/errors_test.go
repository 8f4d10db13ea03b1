package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageError_MatchesKindAndCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("run job: %w", Wrap(ErrStorage, "insert context chunk", cause))

	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrEmbedding)
	assert.Contains(t, err.Error(), "insert context chunk")
}

func TestWrap_NilIsNil(t *testing.T) {
	assert.NoError(t, Wrap(ErrProvider, "azure analyze", nil))
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"routing", Errorf(ErrRouting, "route", "unsupported type %q", "video/mp4"), true},
		{"provider", Wrap(ErrProvider, "gemini", errors.New("timeout")), true},
		{"chunking", Wrap(ErrChunking, "chunk", errors.New("page 0")), true},
		{"embedding", Wrap(ErrEmbedding, "embed", errors.New("429")), true},
		{"storage", Wrap(ErrStorage, "write", errors.New("fk")), true},
		{"enrichment", Wrap(ErrEnrichment, "describe", errors.New("x")), false},
		{"downstream", Wrap(ErrDownstreamExtraction, "entities", errors.New("x")), false},
		{"untagged", errors.New("boom"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFatal(tt.err))
		})
	}
}

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("topK must be positive, got %d", -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "got -1")
}
