package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

// WriteDocumentIndex replaces the document's index and completes its job in one
// transaction. Nothing is visible to readers unless every row is written.
func (c *DatabaseClient) WriteDocumentIndex(ctx context.Context, idx *models.DocumentIndex) error {
	if idx == nil {
		return fmt.Errorf("nil document index")
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	docID := idx.Document.ID

	// Outline deletion cascades to the chunks of a previous run.
	if _, err := tx.ExecContext(ctx, `DELETE FROM outline_nodes WHERE document_id = $1`, docID); err != nil {
		return fmt.Errorf("clear previous index: %w", err)
	}

	r := idx.Root
	const qRoot = `
		INSERT INTO outline_nodes
			(id, document_id, parent_id, path, title, level, ordering, start_page, end_page, token_count, child_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	if _, err := tx.ExecContext(ctx, qRoot,
		r.ID, r.DocumentID, r.ParentID, r.Path, r.Title, r.Level, r.Ordering, r.StartPage, r.EndPage, r.TokenCount, r.ChildCount,
	); err != nil {
		return fmt.Errorf("insert outline root: %w", err)
	}

	if err := insertParents(ctx, tx, idx.Parents); err != nil {
		return err
	}
	if err := insertChildren(ctx, tx, idx.Children); err != nil {
		return err
	}

	m := idx.Metadata
	outline, err := json.Marshal(nonNil(m.Outline))
	if err != nil {
		return err
	}
	entities, err := json.Marshal(nonNil(m.Entities))
	if err != nil {
		return err
	}
	const qMeta = `
		INSERT INTO document_index_metadata
			(document_id, summary, outline, total_tokens, total_pages, total_sections, topic_tags, entities, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (document_id) DO UPDATE SET
			summary = EXCLUDED.summary, outline = EXCLUDED.outline, total_tokens = EXCLUDED.total_tokens,
			total_pages = EXCLUDED.total_pages, total_sections = EXCLUDED.total_sections,
			topic_tags = EXCLUDED.topic_tags, entities = EXCLUDED.entities, updated_at = now()
	`
	if _, err := tx.ExecContext(ctx, qMeta,
		docID, m.Summary, string(outline), m.TotalTokens, m.TotalPages, m.TotalSections, nonNil(m.TopicTags), string(entities),
	); err != nil {
		return fmt.Errorf("upsert index metadata: %w", err)
	}

	d := idx.Document
	const qDoc = `
		UPDATE documents
		SET ocr_processed = $2, ocr_provider = $3, ocr_confidence = $4, ocr_metadata = $5, updated_at = $6
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, qDoc,
		docID, d.OCRProcessed, d.OCRProvider, d.OCRConfidence, jsonArg(d.OCRMetadata), d.UpdatedAt,
	); err != nil {
		return fmt.Errorf("update document ocr fields: %w", err)
	}

	if err := updateJob(ctx, tx, &idx.Job, models.JobProcessing); err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	return tx.Commit()
}

func insertParents(ctx context.Context, tx *sql.Tx, parents []models.ContextChunk) error {
	if len(parents) == 0 {
		return nil
	}
	const q = `
		INSERT INTO context_chunks
			(id, document_id, outline_node_id, content, token_count, char_count, embedding, page_number, semantic_type, content_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range parents {
		p := &parents[i]
		if _, err := stmt.ExecContext(ctx,
			p.ID, p.DocumentID, p.OutlineNodeID, p.Content, p.TokenCount, p.CharCount,
			vectorArg(p.Embedding), p.PageNumber, p.SemanticType, p.ContentHash,
		); err != nil {
			return fmt.Errorf("insert context chunk %d: %w", i, err)
		}
	}
	return nil
}

func insertChildren(ctx context.Context, tx *sql.Tx, children []models.RetrievalChunk) error {
	if len(children) == 0 {
		return nil
	}
	const q = `
		INSERT INTO retrieval_chunks
			(id, context_chunk_id, document_id, content, token_count, embedding, embedding_short)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range children {
		ch := &children[i]
		if _, err := stmt.ExecContext(ctx,
			ch.ID, ch.ContextChunkID, ch.DocumentID, ch.Content, ch.TokenCount,
			pgvector.NewVector(ch.Embedding), pgvector.NewVector(ch.EmbeddingShort),
		); err != nil {
			return fmt.Errorf("insert retrieval chunk %d: %w", i, err)
		}
	}
	return nil
}

// UpdateEntities stores downstream entity extraction output on the metadata row.
func (c *DatabaseClient) UpdateEntities(ctx context.Context, documentID string, entities []models.Entity) error {
	b, err := json.Marshal(nonNil(entities))
	if err != nil {
		return err
	}
	res, err := c.db.ExecContext(ctx,
		`UPDATE document_index_metadata SET entities = $2, updated_at = now() WHERE document_id = $1`,
		documentID, string(b))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("no index metadata for document %s", documentID)
	}
	return nil
}

// Reconcile removes index rows of documents whose jobs have all failed. Such rows
// can only exist from runs that predate transactional index writes.
func (c *DatabaseClient) Reconcile(ctx context.Context) (int64, error) {
	const orphaned = `
		EXISTS (SELECT 1 FROM ingest_jobs j WHERE j.document_id = t.document_id AND j.status = 'failed')
		AND NOT EXISTS (SELECT 1 FROM ingest_jobs j WHERE j.document_id = t.document_id AND j.status <> 'failed')
	`
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var total int64
	for _, table := range []string{"outline_nodes", "document_index_metadata"} {
		res, err := tx.ExecContext(ctx, "DELETE FROM "+table+" t WHERE "+orphaned)
		if err != nil {
			return 0, fmt.Errorf("reconcile %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return total, nil
}

func vectorArg(v []float32) any {
	if len(v) == 0 {
		return nil
	}
	return pgvector.NewVector(v)
}

func jsonArg(b json.RawMessage) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
