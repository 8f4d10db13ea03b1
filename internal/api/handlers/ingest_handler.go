package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	middleware "github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/api/middlewares"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/services"
)

const maxUploadBytes = 100 << 20

// Submitter records ingestion requests and reports job status.
type Submitter interface {
	Submit(ctx context.Context, req services.IngestRequest, sync bool) (*services.Submission, error)
	Status(ctx context.Context, jobID string) (*models.IngestJob, error)
}

// Uploader stores a file and submits it.
type Uploader interface {
	UploadAndSubmit(ctx context.Context, up services.Upload, sync bool) (*services.Submission, error)
}

type IngestHandler struct {
	ingest   Submitter
	uploader Uploader
	log      *slog.Logger
}

func NewIngestHandler(ingest Submitter, uploader Uploader, log *slog.Logger) *IngestHandler {
	if log == nil {
		log = slog.Default()
	}
	return &IngestHandler{ingest: ingest, uploader: uploader, log: log}
}

// jobStatusResponse is the wire form of a job row.
type jobStatusResponse struct {
	JobID           string           `json:"jobId"`
	DocumentID      string           `json:"documentId"`
	Status          models.JobStatus `json:"status"`
	Provider        string           `json:"provider,omitempty"`
	PageCount       int              `json:"pageCount"`
	ConfidenceScore float64          `json:"confidenceScore"`
	TotalChunks     int              `json:"totalChunks"`
	StartedAt       *time.Time       `json:"startedAt,omitempty"`
	CompletedAt     *time.Time       `json:"completedAt,omitempty"`
	DurationMs      int64            `json:"durationMs"`
	ErrorMessage    string           `json:"errorMessage,omitempty"`
}

// Submit handles POST /api/ingest. ?sync=true runs the job before responding.
func (h *IngestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req services.IngestRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, err)
		return
	}
	if err := checkTenant(r.Context(), req.CompanyID); err != nil {
		jsonError(w, err)
		return
	}
	sync, _ := strconv.ParseBool(r.URL.Query().Get("sync"))

	sub, err := h.ingest.Submit(r.Context(), req, sync)
	if err != nil {
		h.log.Error("submit ingest job", "error", err, "company_id", req.CompanyID)
		jsonError(w, err)
		return
	}
	writeJSON(w, submitStatus(sync), sub)
}

// Upload handles POST /api/documents/upload: a multipart "file" plus the submission fields.
func (h *IngestHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, core.InvalidInput("invalid multipart form: %v", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, core.InvalidInput("file field is required"))
		return
	}
	defer file.Close()

	forceOCR, _ := strconv.ParseBool(r.FormValue("forceOCR"))
	req := services.IngestRequest{
		DocumentName: r.FormValue("documentName"),
		CompanyID:    r.FormValue("companyId"),
		UserID:       r.FormValue("userId"),
		MimeType:     r.FormValue("mimeType"),
		Category:     r.FormValue("category"),
		Options: models.RouteOptions{
			ForceOCR:          forceOCR,
			PreferredProvider: models.Provider(r.FormValue("preferredProvider")),
		},
	}
	if err := checkTenant(r.Context(), req.CompanyID); err != nil {
		jsonError(w, err)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	sync, _ := strconv.ParseBool(r.URL.Query().Get("sync"))

	sub, err := h.uploader.UploadAndSubmit(r.Context(), services.Upload{
		Filename:    filepath.Base(header.Filename),
		ContentType: contentType,
		Body:        file,
		Request:     req,
	}, sync)
	if err != nil {
		h.log.Error("upload document", "error", err, "file", header.Filename)
		jsonError(w, err)
		return
	}
	writeJSON(w, submitStatus(sync), sub)
}

// Status handles GET /api/ingest/{jobId}.
func (h *IngestHandler) Status(w http.ResponseWriter, r *http.Request) {
	job, err := h.ingest.Status(r.Context(), chi.URLParam(r, "jobId"))
	if err != nil {
		jsonError(w, err)
		return
	}
	// Another tenant's job is reported as missing.
	if tenant, ok := middleware.CompanyFromContext(r.Context()); ok && job.CompanyID != tenant {
		jsonError(w, fmt.Errorf("job %s: %w", job.ID, core.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, jobStatusResponse{
		JobID:           job.ID,
		DocumentID:      job.DocumentID,
		Status:          job.Status,
		Provider:        job.Provider,
		PageCount:       job.PageCount,
		ConfidenceScore: job.ConfidenceScore,
		TotalChunks:     job.TotalChunks,
		StartedAt:       job.StartedAt,
		CompletedAt:     job.CompletedAt,
		DurationMs:      job.DurationMs,
		ErrorMessage:    job.ErrorMessage,
	})
}

func submitStatus(sync bool) int {
	if sync {
		return http.StatusOK
	}
	return http.StatusAccepted
}

// checkTenant rejects requests for a company other than the token's.
func checkTenant(ctx context.Context, companyID string) error {
	tenant, ok := middleware.CompanyFromContext(ctx)
	if !ok || companyID == tenant {
		return nil
	}
	return fmt.Errorf("company %q: %w", companyID, errForbidden)
}
