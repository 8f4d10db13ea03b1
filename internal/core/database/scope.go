package db

import (
	"fmt"
	"strings"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

// whereBuilder accumulates AND-ed predicates with numbered placeholders.
type whereBuilder struct {
	clauses []string
	args    []any
}

// add appends clause, replacing each "?" with the next placeholder bound to arg.
func (w *whereBuilder) add(clause string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, strings.ReplaceAll(clause, "?", fmt.Sprintf("$%d", len(w.args))))
}

// bind reserves the next placeholder for arg and returns it.
func (w *whereBuilder) bind(arg any) string {
	w.args = append(w.args, arg)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *whereBuilder) sql() string {
	if len(w.clauses) == 0 {
		return "TRUE"
	}
	return strings.Join(w.clauses, " AND ")
}

// scopeWhere compiles a scope and filters into predicates over the documents
// alias d and the metadata alias m. The company id is always matched when known.
func scopeWhere(scope models.ScopeSpec, f models.SearchFilters) (*whereBuilder, error) {
	w := &whereBuilder{}
	switch scope.Scope {
	case models.ScopeDocument:
		if scope.DocumentID == "" {
			return nil, core.InvalidInput("document scope requires a document id")
		}
		w.add("d.id = ?", scope.DocumentID)
	case models.ScopeCompany:
		if scope.CompanyID == "" {
			return nil, core.InvalidInput("company scope requires a company id")
		}
	case models.ScopeMultiDocument:
		if len(scope.DocumentIDs) == 0 {
			return nil, core.InvalidInput("multi_document scope requires document ids")
		}
		w.add("d.id = ANY(?)", scope.DocumentIDs)
	default:
		return nil, core.InvalidInput("unknown scope %q", scope.Scope)
	}
	if scope.CompanyID != "" {
		w.add("d.company_id = ?", scope.CompanyID)
	}

	if f.DocumentClass != "" {
		w.add("d.category = ?", f.DocumentClass)
	}
	if f.DateFrom != nil {
		w.add("d.created_at >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		w.add("d.created_at <= ?", *f.DateTo)
	}
	if len(f.TopicTags) > 0 {
		w.add("m.topic_tags @> ?", f.TopicTags)
	}
	return w, nil
}
