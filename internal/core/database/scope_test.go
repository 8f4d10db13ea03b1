package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

func TestScopeWhere(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		scope models.ScopeSpec
		f     models.SearchFilters
		sql   string
		args  []any
	}{
		{
			name:  "document",
			scope: models.ScopeSpec{Scope: models.ScopeDocument, DocumentID: "doc-1"},
			sql:   "d.id = $1",
			args:  []any{"doc-1"},
		},
		{
			name:  "company",
			scope: models.ScopeSpec{Scope: models.ScopeCompany, CompanyID: "acme"},
			sql:   "d.company_id = $1",
			args:  []any{"acme"},
		},
		{
			name:  "multi document pinned to company with filters",
			scope: models.ScopeSpec{Scope: models.ScopeMultiDocument, DocumentIDs: []string{"a", "b"}, CompanyID: "acme"},
			f:     models.SearchFilters{DocumentClass: "contract", DateFrom: &from, TopicTags: []string{"lease"}},
			sql:   "d.id = ANY($1) AND d.company_id = $2 AND d.category = $3 AND d.created_at >= $4 AND m.topic_tags @> $5",
			args:  []any{[]string{"a", "b"}, "acme", "contract", from, []string{"lease"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := scopeWhere(tt.scope, tt.f)
			require.NoError(t, err)
			assert.Equal(t, tt.sql, w.sql())
			assert.Equal(t, tt.args, w.args)
		})
	}
}

func TestScopeWhere_Invalid(t *testing.T) {
	for _, s := range []models.ScopeSpec{
		{Scope: models.ScopeDocument},
		{Scope: models.ScopeCompany},
		{Scope: models.ScopeMultiDocument, CompanyID: "acme"},
		{Scope: "tenant"},
	} {
		_, err := scopeWhere(s, models.SearchFilters{})
		assert.ErrorIs(t, err, core.ErrInvalidInput, s.Scope)
	}
}

func TestWhereBuilder_Bind(t *testing.T) {
	w := &whereBuilder{}
	w.add("d.id = ?", "x")
	assert.Equal(t, "$2", w.bind(10))
	assert.Equal(t, []any{"x", 10}, w.args)
	assert.Equal(t, "TRUE", (&whereBuilder{}).sql())
}
