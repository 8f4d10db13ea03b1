package ingestion_engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

// maxEntityChunks caps how many child chunks are sent for entity extraction per document.
const maxEntityChunks = 200

// Deps are the collaborators of a DocumentIngestor. Enricher and Entities may be nil.
type Deps struct {
	Store       core.IngestStore
	Fetcher     core.SourceFetcher
	Router      core.Router
	Normalizers map[models.Provider]core.Normalizer
	Enricher    *Enricher
	Chunker     *Chunker
	Vectorizer  *Vectorizer
	Entities    core.EntityExtractor
	Logger      *slog.Logger
}

// DocumentIngestor runs ingestion jobs, either inline or from a bounded in-memory queue.
//
// Each run is independent: route, normalize, enrich, chunk, embed and persist one document.
// Runs for different documents may execute concurrently with no ordering between them.
type DocumentIngestor struct {
	Deps
	jobs chan string
	wg   sync.WaitGroup
	now  func() time.Time
}

// NewDocumentIngestor constructs the ingestor with a bounded job queue.
func NewDocumentIngestor(deps Deps, queueSize int) (*DocumentIngestor, error) {
	switch {
	case deps.Store == nil:
		return nil, errors.New("ingestor: store is required")
	case deps.Fetcher == nil:
		return nil, errors.New("ingestor: fetcher is required")
	case deps.Router == nil:
		return nil, errors.New("ingestor: router is required")
	case deps.Chunker == nil || deps.Vectorizer == nil:
		return nil, errors.New("ingestor: chunker and vectorizer are required")
	case len(deps.Normalizers) == 0:
		return nil, errors.New("ingestor: at least one normalizer is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	return &DocumentIngestor{Deps: deps, jobs: make(chan string, queueSize), now: time.Now}, nil
}

// Start runs numWorkers goroutines reading from the job queue until ctx is done.
// A run already in progress when ctx is cancelled is allowed to finish.
func (i *DocumentIngestor) Start(ctx context.Context, numWorkers int) {
	for w := 1; w <= numWorkers; w++ {
		i.wg.Add(1)
		go func(w int) {
			defer i.wg.Done()
			log := i.Logger.With("worker", w)
			for {
				select {
				case <-ctx.Done():
					log.Debug("ingest worker shutting down")
					return
				case jobID := <-i.jobs:
					if err := i.ProcessOne(context.WithoutCancel(ctx), jobID); err != nil {
						log.Error("ingest job failed", "job_id", jobID, "error", err)
					}
				}
			}
		}(w)
	}
}

// Wait blocks until every worker has returned.
func (i *DocumentIngestor) Wait() {
	i.wg.Wait()
}

// Enqueue schedules a job. It blocks while the queue is full.
func (i *DocumentIngestor) Enqueue(ctx context.Context, jobID string) error {
	select {
	case i.jobs <- jobID:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ProcessOne runs the pipeline for a queued job and records the outcome on the job row.
func (i *DocumentIngestor) ProcessOne(ctx context.Context, jobID string) error {
	log := i.Logger.With("job_id", jobID)

	job, err := i.Store.GetJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}
	started, err := Apply(*job, Started{At: i.now()})
	if err != nil {
		return err
	}
	if err := i.Store.UpdateJob(ctx, &started, models.JobQueued); err != nil {
		return fmt.Errorf("mark job processing: %w", err)
	}
	log = log.With("document_id", started.DocumentID)
	log.Info("ingest job started")

	idx, runErr := i.run(ctx, started, log)
	if runErr != nil {
		failed, err := Apply(started, Failed{At: i.now(), Err: runErr})
		if err == nil {
			if err := i.Store.UpdateJob(context.WithoutCancel(ctx), &failed, models.JobProcessing); err != nil {
				log.Error("could not record job failure", "error", err)
			}
		}
		return runErr
	}
	log.Info("ingest job completed",
		"provider", idx.Job.Provider,
		"pages", idx.Job.PageCount,
		"parents", len(idx.Parents),
		"children", len(idx.Children),
		"duration_ms", idx.Job.DurationMs,
	)

	if err := i.extractEntities(ctx, idx); err != nil {
		log.Warn("entity extraction skipped", "error", err)
	}
	return nil
}

func (i *DocumentIngestor) run(ctx context.Context, job models.IngestJob, log *slog.Logger) (*models.DocumentIndex, error) {
	doc, err := i.Store.GetDocumentByID(ctx, job.DocumentID)
	if err != nil {
		return nil, core.Wrap(core.ErrStorage, "load document", err)
	}

	data, contentType, err := i.Fetcher.Fetch(ctx, doc.SourceURL)
	if err != nil {
		return nil, tag(core.ErrRouting, "fetch source", err)
	}
	src := core.Source{URL: doc.SourceURL, Name: doc.Title, MimeType: doc.MimeType, Data: data}
	if src.MimeType == "" {
		src.MimeType = contentType
	}

	decision, err := i.Router.Route(ctx, src, models.RouteOptions{ForceOCR: job.ForceOCR, PreferredProvider: job.PreferredProv})
	if err != nil {
		return nil, tag(core.ErrRouting, "route", err)
	}
	src.MimeType = decision.MimeType
	log.Info("document routed",
		"provider", decision.Provider,
		"native", decision.IsNativePDF,
		"pages", decision.PageCount,
		"label", decision.VisionLabel,
		"reason", decision.Reason,
	)

	normalizer, ok := i.Normalizers[decision.Provider]
	if !ok {
		return nil, core.Errorf(core.ErrRouting, "route", "no adapter registered for provider %q", decision.Provider)
	}
	normalized, err := normalizer.NormalizeDocument(ctx, src)
	if err != nil {
		return nil, tag(core.ErrProvider, string(decision.Provider), err)
	}

	enriched := false
	if i.Enricher.ShouldEnrich(decision, normalized) {
		if err := i.Enricher.Enrich(ctx, src.Data, normalized); err != nil {
			log.Warn("enrichment failed, continuing without it", "error", err)
		} else {
			enriched = true
		}
	}

	chunks, err := i.Chunker.Chunk(normalized)
	if err != nil {
		return nil, tag(core.ErrChunking, "chunk", err)
	}
	vectorized, err := i.Vectorizer.Vectorize(ctx, chunks)
	if err != nil {
		return nil, tag(core.ErrEmbedding, "vectorize", err)
	}

	pages := max(normalized.Metadata.TotalPages, len(normalized.Pages), decision.PageCount)
	if normalized.Metadata.TotalPages == 0 {
		normalized.Metadata.TotalPages = pages
	}
	if normalized.Metadata.Provider == "" {
		normalized.Metadata.Provider = decision.Provider
	}
	completed, err := Apply(job, Completed{
		At:          i.now(),
		Provider:    normalized.Metadata.Provider,
		PageCount:   pages,
		Confidence:  normalized.Metadata.ConfidenceScore,
		TotalChunks: len(vectorized),
	})
	if err != nil {
		return nil, err
	}

	idx, err := BuildIndex(indexInput{
		Document:   *doc,
		Job:        completed,
		Decision:   decision,
		Normalized: normalized,
		Chunks:     vectorized,
		Enriched:   enriched,
		Now:        i.now(),
	})
	if err != nil {
		return nil, core.Wrap(core.ErrStorage, "build index", err)
	}
	if err := i.Store.WriteDocumentIndex(ctx, idx); err != nil {
		return nil, tag(core.ErrStorage, "write index", err)
	}
	return idx, nil
}

// extractEntities hands the stored children to the downstream extractor and saves the result.
func (i *DocumentIngestor) extractEntities(ctx context.Context, idx *models.DocumentIndex) error {
	if i.Entities == nil || len(idx.Children) == 0 {
		return nil
	}
	texts := make([]string, 0, min(len(idx.Children), maxEntityChunks))
	for _, c := range idx.Children {
		if len(texts) == maxEntityChunks {
			break
		}
		texts = append(texts, c.Content)
	}

	perChunk, err := i.Entities.ExtractEntities(ctx, texts)
	if err != nil {
		return core.Wrap(core.ErrDownstreamExtraction, "extract entities", err)
	}
	entities := mergeEntities(perChunk)
	if err := i.Store.UpdateEntities(ctx, idx.Document.ID, entities); err != nil {
		return core.Wrap(core.ErrDownstreamExtraction, "store entities", err)
	}
	return nil
}

// mergeEntities de-duplicates entities by text and label, keeping the highest score.
func mergeEntities(perChunk [][]models.Entity) []models.Entity {
	type key struct{ text, label string }
	pos := map[key]int{}
	var out []models.Entity
	for _, list := range perChunk {
		for _, e := range list {
			k := key{e.Text, e.Label}
			if j, ok := pos[k]; ok {
				if e.Score > out[j].Score {
					out[j].Score = e.Score
				}
				continue
			}
			pos[k] = len(out)
			out = append(out, e)
		}
	}
	return out
}

// tag wraps err with kind unless it already carries a fatal stage kind.
// A non-fatal kind surfacing from a fatal stage is re-tagged with that stage.
func tag(kind error, op string, err error) error {
	var se *core.StageError
	if errors.As(err, &se) && core.IsFatal(se) {
		return err
	}
	return core.Wrap(kind, op, err)
}
