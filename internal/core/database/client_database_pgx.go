package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/config"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

type DatabaseClient struct {
	db            *sql.DB
	iterativeScan bool
}

var _ core.DbClient = (*DatabaseClient)(nil)

// NewDatabaseClient opens the pool, pings it and applies the schema if needed.
// When SSL_CERT_PATH is set the connection verifies the server against it.
func NewDatabaseClient(ctx context.Context, cfg *config.Config) (*DatabaseClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	dsn := cfg.DatabaseURL
	if cfg.SslCertPath != "" {
		if _, err := os.Stat(cfg.SslCertPath); err != nil {
			return nil, fmt.Errorf("ssl cert not accessible at %q: %w", cfg.SslCertPath, err)
		}
		u, err := url.Parse(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
		q := u.Query()
		q.Set("sslmode", "verify-ca")
		q.Set("sslrootcert", cfg.SslCertPath)
		u.RawQuery = q.Encode()
		dsn = u.String()
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	var version string
	if err := db.QueryRowContext(ctx, `SELECT extversion FROM pg_extension WHERE extname = 'vector'`).Scan(&version); err != nil {
		slog.Warn("could not read pgvector version", "error", err)
	}
	iterative := pgvectorAtLeast(version, 0, 8)
	slog.Debug("pgvector detected", "version", version, "iterative_scan", iterative)

	return &DatabaseClient{db: db, iterativeScan: iterative}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (c *DatabaseClient) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// CreateSubmission inserts a document and its first job together.
func (c *DatabaseClient) CreateSubmission(ctx context.Context, doc *models.Document, job *models.IngestJob) error {
	if doc == nil || job == nil {
		return errors.New("nil document or job")
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const qDoc = `
		INSERT INTO documents
			(id, company_id, user_id, title, source_url, mime_type, category, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $8)
	`
	if _, err := tx.ExecContext(ctx, qDoc,
		doc.ID, doc.CompanyID, doc.UserID, doc.Title, doc.SourceURL, doc.MimeType, doc.Category, doc.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	const qJob = `
		INSERT INTO ingest_jobs
			(id, document_id, company_id, user_id, status, force_ocr, preferred_provider, created_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := tx.ExecContext(ctx, qJob,
		job.ID, job.DocumentID, job.CompanyID, job.UserID, job.Status, job.ForceOCR, job.PreferredProv, job.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return tx.Commit()
}

func (c *DatabaseClient) GetDocumentByID(ctx context.Context, id string) (*models.Document, error) {
	const q = `
		SELECT id, company_id, user_id, title, source_url, mime_type, category,
		       ocr_processed, ocr_provider, ocr_confidence, ocr_metadata, created_at, updated_at
		FROM documents
		WHERE id = $1
	`
	var (
		d    models.Document
		meta []byte
	)
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.CompanyID, &d.UserID, &d.Title, &d.SourceURL, &d.MimeType, &d.Category,
		&d.OCRProcessed, &d.OCRProvider, &d.OCRConfidence, &meta, &d.CreatedAt, &d.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	d.OCRMetadata = meta
	return &d, nil
}

func (c *DatabaseClient) GetJob(ctx context.Context, id string) (*models.IngestJob, error) {
	const q = `
		SELECT id, document_id, company_id, user_id, status, provider, page_count, confidence_score,
		       total_chunks, force_ocr, preferred_provider, started_at, completed_at, duration_ms,
		       error_message, created_at
		FROM ingest_jobs
		WHERE id = $1
	`
	var j models.IngestJob
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&j.ID, &j.DocumentID, &j.CompanyID, &j.UserID, &j.Status, &j.Provider, &j.PageCount, &j.ConfidenceScore,
		&j.TotalChunks, &j.ForceOCR, &j.PreferredProv, &j.StartedAt, &j.CompletedAt, &j.DurationMs,
		&j.ErrorMessage, &j.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// UpdateJob writes the job only while the stored status is still from.
func (c *DatabaseClient) UpdateJob(ctx context.Context, job *models.IngestJob, from models.JobStatus) error {
	return updateJob(ctx, c.db, job, from)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func updateJob(ctx context.Context, db execer, job *models.IngestJob, from models.JobStatus) error {
	const q = `
		UPDATE ingest_jobs
		SET status = $3, provider = $4, page_count = $5, confidence_score = $6, total_chunks = $7,
		    started_at = $8, completed_at = $9, duration_ms = $10, error_message = $11
		WHERE id = $1 AND status = $2
	`
	res, err := db.ExecContext(ctx, q,
		job.ID, from, job.Status, job.Provider, job.PageCount, job.ConfidenceScore, job.TotalChunks,
		job.StartedAt, job.CompletedAt, job.DurationMs, job.ErrorMessage,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("job %s is not %s: %w", job.ID, from, core.ErrInvalidTransition)
	}
	return nil
}
