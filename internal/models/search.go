package models

import "time"

// Scope is the tenancy boundary of a search.
type Scope string

const (
	ScopeDocument      Scope = "document"
	ScopeCompany       Scope = "company"
	ScopeMultiDocument Scope = "multi_document"
)

// RetrievalMethod records which retriever produced a result.
type RetrievalMethod string

const (
	MethodVector       RetrievalMethod = "vector"
	MethodVectorLegacy RetrievalMethod = "vector_legacy"
	MethodBM25         RetrievalMethod = "bm25"
	MethodHybrid       RetrievalMethod = "hybrid"
)

// SearchFilters narrows the candidate set by document metadata.
type SearchFilters struct {
	DocumentClass string     `json:"documentClass,omitempty"`
	DateFrom      *time.Time `json:"dateFrom,omitempty"`
	DateTo        *time.Time `json:"dateTo,omitempty"`
	TopicTags     []string   `json:"topicTags,omitempty"`
}

// ScopeSpec identifies the documents a query may touch.
type ScopeSpec struct {
	Scope       Scope    `json:"scope"`
	DocumentID  string   `json:"documentId,omitempty"`
	CompanyID   string   `json:"companyId,omitempty"`
	DocumentIDs []string `json:"documentIds,omitempty"`
}

// Candidate is a child chunk joined to its parent and document, as read from the store.
type Candidate struct {
	ChunkID       string
	ParentID      string
	DocumentID    string
	DocumentTitle string
	CompanyID     string
	ChildContent  string
	ParentContent string
	PageNumber    int
	Embedding     []float32
	Distance      float64 // as computed by the store for the vector it was queried with
}

// SearchResult is one ranked hit returned to callers.
type SearchResult struct {
	Content         string          `json:"content"`
	ChunkID         string          `json:"chunkId"`
	ChildContent    string          `json:"childContent,omitempty"`
	Page            int             `json:"page"`
	DocumentID      string          `json:"documentId"`
	DocumentTitle   string          `json:"documentTitle"`
	Distance        *float64        `json:"distance,omitempty"`
	Score           float64         `json:"score"`
	RetrievalMethod RetrievalMethod `json:"retrievalMethod"`
}
