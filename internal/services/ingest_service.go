package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core/ingestion_engine"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

// IngestRequest asks for one document to be ingested.
type IngestRequest struct {
	DocumentURL  string              `json:"documentUrl"`
	DocumentName string              `json:"documentName"`
	CompanyID    string              `json:"companyId"`
	UserID       string              `json:"userId"`
	MimeType     string              `json:"mimeType,omitempty"`
	Category     string              `json:"category,omitempty"`
	Options      models.RouteOptions `json:"options"`
}

// Submission identifies the rows created for a request.
type Submission struct {
	JobID      string           `json:"jobId"`
	DocumentID string           `json:"documentId"`
	Status     models.JobStatus `json:"status"`
}

var knownProviders = map[models.Provider]bool{
	models.ProviderNative:    true,
	models.ProviderAzure:     true,
	models.ProviderGemini:    true,
	models.ProviderTesseract: true,
}

type IngestService struct {
	store    core.IngestStore
	ingestor ingestion_engine.Ingestor
	log      *slog.Logger
	now      func() time.Time
}

func NewIngestService(store core.IngestStore, ingestor ingestion_engine.Ingestor, log *slog.Logger) *IngestService {
	if log == nil {
		log = slog.Default()
	}
	return &IngestService{store: store, ingestor: ingestor, log: log, now: time.Now}
}

// Submit records the document and a queued job. With sync set it runs the job inline and
// returns its final status, otherwise the job is handed to the worker queue.
func (s *IngestService) Submit(ctx context.Context, req IngestRequest, sync bool) (*Submission, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	doc := &models.Document{
		ID:        uuid.NewString(),
		CompanyID: req.CompanyID,
		UserID:    req.UserID,
		Title:     strings.TrimSpace(req.DocumentName),
		SourceURL: strings.TrimSpace(req.DocumentURL),
		MimeType:  req.MimeType,
		Category:  req.Category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	job, err := ingestion_engine.Apply(models.IngestJob{
		ID:            uuid.NewString(),
		DocumentID:    doc.ID,
		CompanyID:     req.CompanyID,
		UserID:        req.UserID,
		ForceOCR:      req.Options.ForceOCR,
		PreferredProv: req.Options.PreferredProvider,
	}, ingestion_engine.Submitted{At: now})
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateSubmission(ctx, doc, &job); err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}
	log := s.log.With("job_id", job.ID, "document_id", doc.ID, "company_id", doc.CompanyID)
	log.Info("ingest job submitted", "sync", sync)

	sub := &Submission{JobID: job.ID, DocumentID: doc.ID, Status: job.Status}
	if !sync {
		if err := s.ingestor.Enqueue(ctx, job.ID); err != nil {
			return nil, fmt.Errorf("enqueue job: %w", err)
		}
		return sub, nil
	}

	// The run outlives a disconnected caller so the job always reaches a terminal state.
	runCtx := context.WithoutCancel(ctx)
	if err := s.ingestor.ProcessOne(runCtx, job.ID); err != nil {
		log.Warn("inline ingest failed", "error", err)
	}
	final, err := s.store.GetJob(runCtx, job.ID)
	if err != nil {
		return nil, fmt.Errorf("reload job: %w", err)
	}
	sub.Status = final.Status
	return sub, nil
}

// Status returns the job row.
func (s *IngestService) Status(ctx context.Context, jobID string) (*models.IngestJob, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, core.InvalidInput("job id is empty")
	}
	return s.store.GetJob(ctx, jobID)
}

func (r IngestRequest) validate() error {
	if strings.TrimSpace(r.DocumentURL) == "" {
		return core.InvalidInput("documentUrl is required")
	}
	return r.validateFields()
}

// validateFields checks everything but the document URL.
func (r IngestRequest) validateFields() error {
	switch {
	case strings.TrimSpace(r.DocumentName) == "":
		return core.InvalidInput("documentName is required")
	case r.CompanyID == "":
		return core.InvalidInput("companyId is required")
	case r.UserID == "":
		return core.InvalidInput("userId is required")
	}
	if p := r.Options.PreferredProvider; p != "" && !knownProviders[p] {
		return core.InvalidInput("unknown preferredProvider %q", p)
	}
	return nil
}
