package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/pgvector/pgvector-go"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

const childJoins = `
	FROM retrieval_chunks rc
	JOIN context_chunks cc ON cc.id = rc.context_chunk_id
	JOIN documents d ON d.id = rc.document_id
	LEFT JOIN document_index_metadata m ON m.document_id = d.id
`

// HasChildIndex reports whether any document in scope has hierarchical chunks.
func (c *DatabaseClient) HasChildIndex(ctx context.Context, scope models.ScopeSpec) (bool, error) {
	w, err := scopeWhere(scope, models.SearchFilters{})
	if err != nil {
		return false, err
	}
	q := `SELECT EXISTS (SELECT 1 FROM retrieval_chunks rc JOIN documents d ON d.id = rc.document_id WHERE ` + w.sql() + `)`
	var ok bool
	if err := c.db.QueryRowContext(ctx, q, w.args...).Scan(&ok); err != nil {
		return false, fmt.Errorf("check child index: %w", err)
	}
	return ok, nil
}

// VectorCandidates is the approximate first stage: nearest children by cosine
// distance on the short vector, served by the HNSW index.
// The HNSW scan applies scope and filter predicates after the index walk, so the
// query runs with hnswSettings in a read-only transaction to keep narrow scopes
// from coming back short.
func (c *DatabaseClient) VectorCandidates(ctx context.Context, scope models.ScopeSpec, filters models.SearchFilters, short []float32, limit int) ([]models.Candidate, error) {
	w, err := scopeWhere(scope, filters)
	if err != nil {
		return nil, err
	}
	vec := w.bind(pgvector.NewVector(short))
	lim := w.bind(limit)
	q := `
		SELECT rc.id, cc.id, d.id, d.title, d.company_id, rc.content, cc.content, cc.page_number,
		       rc.embedding, rc.embedding_short <=> ` + vec + ` AS distance
	` + childJoins + `
		WHERE ` + w.sql() + `
		ORDER BY distance ASC
		LIMIT ` + lim

	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	for _, stmt := range hnswSettings(limit, c.iterativeScan) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("configure hnsw scan: %w", err)
		}
	}
	return queryCandidates(ctx, tx, q, w.args, true)
}

const (
	defaultEfSearch = 40
	maxEfSearch     = 1000
)

// hnswSettings widens the HNSW candidate list to at least limit and, on
// pgvector 0.8+, lets the scan continue until enough rows pass the filters.
func hnswSettings(limit int, iterative bool) []string {
	ef := min(max(limit, defaultEfSearch), maxEfSearch)
	stmts := []string{fmt.Sprintf("SET LOCAL hnsw.ef_search = %d", ef)}
	if iterative {
		stmts = append(stmts,
			"SET LOCAL hnsw.iterative_scan = relaxed_order",
			fmt.Sprintf("SET LOCAL hnsw.max_scan_tuples = %d", max(20000, limit*100)),
		)
	}
	return stmts
}

// pgvectorAtLeast compares an extversion string such as "0.8.0" with major.minor.
func pgvectorAtLeast(version string, major, minor int) bool {
	parts := strings.SplitN(version, ".", 3)
	if len(parts) < 2 {
		return false
	}
	maj, err1 := strconv.Atoi(parts[0])
	mnr, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return false
	}
	return maj > major || (maj == major && mnr >= minor)
}

// KeywordCandidates returns children whose text matches any term, best text-search rank first.
func (c *DatabaseClient) KeywordCandidates(ctx context.Context, scope models.ScopeSpec, filters models.SearchFilters, terms []string, limit int) ([]models.Candidate, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	w, err := scopeWhere(scope, filters)
	if err != nil {
		return nil, err
	}
	tsq := w.bind(strings.Join(terms, " | "))
	w.clauses = append(w.clauses, "rc.content_tsv @@ to_tsquery('simple', "+tsq+")")
	lim := w.bind(limit)
	q := `
		SELECT rc.id, cc.id, d.id, d.title, d.company_id, rc.content, cc.content, cc.page_number,
		       NULL, 0
	` + childJoins + `
		WHERE ` + w.sql() + `
		ORDER BY ts_rank(rc.content_tsv, to_tsquery('simple', ` + tsq + `)) DESC, rc.id
		LIMIT ` + lim
	return queryCandidates(ctx, c.db, q, w.args, false)
}

// LegacyVectorSearch ranks flat document_chunks rows by full-vector cosine distance.
func (c *DatabaseClient) LegacyVectorSearch(ctx context.Context, scope models.ScopeSpec, filters models.SearchFilters, full []float32, limit int) ([]models.Candidate, error) {
	w, err := scopeWhere(scope, filters)
	if err != nil {
		return nil, err
	}
	vec := w.bind(pgvector.NewVector(full))
	lim := w.bind(limit)
	q := `
		SELECT dc.id, '', d.id, d.title, d.company_id, dc.text, dc.text, 0,
		       NULL, dc.embedding <=> ` + vec + ` AS distance
		FROM document_chunks dc
		JOIN documents d ON d.id = dc.document_id
		LEFT JOIN document_index_metadata m ON m.document_id = d.id
		WHERE ` + w.sql() + `
		ORDER BY distance ASC, dc.position ASC
		LIMIT ` + lim
	return queryCandidates(ctx, c.db, q, w.args, false)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryCandidates(ctx context.Context, db querier, q string, args []any, withEmbedding bool) ([]models.Candidate, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Candidate
	for rows.Next() {
		var (
			cand models.Candidate
			emb  pgvector.Vector
			null any
		)
		var embDest any = &null
		if withEmbedding {
			embDest = &emb
		}
		if err := rows.Scan(
			&cand.ChunkID, &cand.ParentID, &cand.DocumentID, &cand.DocumentTitle, &cand.CompanyID,
			&cand.ChildContent, &cand.ParentContent, &cand.PageNumber, embDest, &cand.Distance,
		); err != nil {
			return nil, err
		}
		if withEmbedding {
			cand.Embedding = emb.Slice()
		}
		out = append(out, cand)
	}
	return out, rows.Err()
}
