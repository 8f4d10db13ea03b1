package core

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_store.go -package=mocks github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core IngestStore,SearchStore
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_object.go -package=mocks github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core ObjectClient

import (
	"context"
	"io"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

// IngestStore is the persistence the ingestion side needs: documents, jobs and the chunk index.
type IngestStore interface {
	CreateSubmission(ctx context.Context, doc *models.Document, job *models.IngestJob) error
	GetDocumentByID(ctx context.Context, id string) (*models.Document, error)
	GetJob(ctx context.Context, id string) (*models.IngestJob, error)
	// UpdateJob persists job only if the stored row still has status from.
	UpdateJob(ctx context.Context, job *models.IngestJob, from models.JobStatus) error
	// WriteDocumentIndex writes the outline, chunks, metadata, document OCR fields and
	// the completed job in a single transaction.
	WriteDocumentIndex(ctx context.Context, idx *models.DocumentIndex) error
	UpdateEntities(ctx context.Context, documentID string, entities []models.Entity) error
}

// SearchStore is the read path the retrieval engine runs against.
type SearchStore interface {
	HasChildIndex(ctx context.Context, scope models.ScopeSpec) (bool, error)
	// VectorCandidates returns up to limit children ordered by short-vector distance.
	VectorCandidates(ctx context.Context, scope models.ScopeSpec, filters models.SearchFilters, short []float32, limit int) ([]models.Candidate, error)
	// KeywordCandidates returns children whose text matches any of terms.
	KeywordCandidates(ctx context.Context, scope models.ScopeSpec, filters models.SearchFilters, terms []string, limit int) ([]models.Candidate, error)
	// LegacyVectorSearch searches flat chunks by full-vector distance, ascending.
	LegacyVectorSearch(ctx context.Context, scope models.ScopeSpec, filters models.SearchFilters, full []float32, limit int) ([]models.Candidate, error)
}

// DbClient is the full Postgres/pgvector client.
type DbClient interface {
	IngestStore
	SearchStore
	Reconcile(ctx context.Context) (int64, error)
	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
	GetObjectReader(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}
