package models

import (
	"encoding/json"
	"time"
)

// Document is an uploaded or linked source owned by one company.
type Document struct {
	ID            string          `db:"id" json:"id"`
	CompanyID     string          `db:"company_id" json:"company_id"`
	UserID        string          `db:"user_id" json:"user_id"`
	Title         string          `db:"title" json:"title"`
	SourceURL     string          `db:"source_url" json:"source_url"` // s3://, https:// or file:// link
	MimeType      string          `db:"mime_type" json:"mime_type"`
	Category      string          `db:"category" json:"category"`
	OCRProcessed  bool            `db:"ocr_processed" json:"ocr_processed"`
	OCRProvider   string          `db:"ocr_provider" json:"ocr_provider,omitempty"`
	OCRConfidence float64         `db:"ocr_confidence" json:"ocr_confidence,omitempty"`
	OCRMetadata   json.RawMessage `db:"ocr_metadata" json:"ocr_metadata,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// JobStatus is the lifecycle state of an ingestion attempt.
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Terminal reports whether no further transition is possible.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// IngestJob is one ingestion attempt for a document.
type IngestJob struct {
	ID              string     `db:"id" json:"id"`
	DocumentID      string     `db:"document_id" json:"document_id"`
	CompanyID       string     `db:"company_id" json:"company_id"`
	UserID          string     `db:"user_id" json:"user_id"`
	Status          JobStatus  `db:"status" json:"status"`
	Provider        string     `db:"provider" json:"provider,omitempty"`
	PageCount       int        `db:"page_count" json:"page_count"`
	ConfidenceScore float64    `db:"confidence_score" json:"confidence_score"`
	TotalChunks     int        `db:"total_chunks" json:"total_chunks"`
	ForceOCR        bool       `db:"force_ocr" json:"force_ocr"`
	PreferredProv   Provider   `db:"preferred_provider" json:"preferred_provider,omitempty"`
	StartedAt       *time.Time `db:"started_at" json:"started_at,omitempty"`
	CompletedAt     *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	DurationMs      int64      `db:"duration_ms" json:"duration_ms"`
	ErrorMessage    string     `db:"error_message" json:"error_message,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// OutlineNode is a node of the document structure tree. The pipeline only writes the root.
type OutlineNode struct {
	ID         string  `db:"id" json:"id"`
	DocumentID string  `db:"document_id" json:"document_id"`
	ParentID   *string `db:"parent_id" json:"parent_id,omitempty"`
	Path       string  `db:"path" json:"path"`
	Title      string  `db:"title" json:"title"`
	Level      int     `db:"level" json:"level"`
	Ordering   int     `db:"ordering" json:"ordering"`
	StartPage  int     `db:"start_page" json:"start_page"`
	EndPage    int     `db:"end_page" json:"end_page"`
	TokenCount int     `db:"token_count" json:"token_count"`
	ChildCount int     `db:"child_count" json:"child_count"`
}

// SemanticType tags what kind of content a parent chunk holds.
type SemanticType string

const (
	SemanticNarrative SemanticType = "narrative"
	SemanticTabular   SemanticType = "tabular"
)

// ContextChunk is a parent chunk. Embedding is nil unless parents are the retrievable unit.
type ContextChunk struct {
	ID            string       `db:"id" json:"id"`
	DocumentID    string       `db:"document_id" json:"document_id"`
	OutlineNodeID string       `db:"outline_node_id" json:"outline_node_id"`
	Content       string       `db:"content" json:"content"`
	TokenCount    int          `db:"token_count" json:"token_count"`
	CharCount     int          `db:"char_count" json:"char_count"`
	Embedding     []float32    `db:"embedding" json:"-"`
	PageNumber    int          `db:"page_number" json:"page_number"`
	SemanticType  SemanticType `db:"semantic_type" json:"semantic_type"`
	ContentHash   string       `db:"content_hash" json:"content_hash"`
}

// RetrievalChunk is a child chunk carrying both embeddings.
type RetrievalChunk struct {
	ID             string    `db:"id" json:"id"`
	ContextChunkID string    `db:"context_chunk_id" json:"context_chunk_id"`
	DocumentID     string    `db:"document_id" json:"document_id"`
	Content        string    `db:"content" json:"content"`
	TokenCount     int       `db:"token_count" json:"token_count"`
	Embedding      []float32 `db:"embedding" json:"-"`
	EmbeddingShort []float32 `db:"embedding_short" json:"-"`
}

// OutlineEntry is one line of the page-level outline stub.
type OutlineEntry struct {
	Page  int    `json:"page"`
	Title string `json:"title"`
}

// Entity is a named entity attached to a document by downstream extraction.
type Entity struct {
	Text  string  `json:"text"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// DocumentIndexMetadata is the per-document summary row written after a successful run.
type DocumentIndexMetadata struct {
	DocumentID    string         `db:"document_id" json:"document_id"`
	Summary       string         `db:"summary" json:"summary"`
	Outline       []OutlineEntry `db:"outline" json:"outline"`
	TotalTokens   int            `db:"total_tokens" json:"total_tokens"`
	TotalPages    int            `db:"total_pages" json:"total_pages"`
	TotalSections int            `db:"total_sections" json:"total_sections"`
	TopicTags     []string       `db:"topic_tags" json:"topic_tags"`
	Entities      []Entity       `db:"entities" json:"entities"`
}

// LegacyChunk is a row of the flat document_chunks table written before parent/child indexing.
type LegacyChunk struct {
	ID         string    `db:"id" json:"id"`
	DocumentID string    `db:"document_id" json:"document_id"`
	Text       string    `db:"text" json:"text"`
	Embedding  []float32 `db:"embedding" json:"-"`
	Position   int       `db:"position" json:"position"`
	TokenCount int       `db:"token_count" json:"token_count"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
