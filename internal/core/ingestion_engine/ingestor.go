package ingestion_engine

import "context"

type Ingestor interface {
	Start(ctx context.Context, numWorkers int)
	Enqueue(ctx context.Context, jobID string) error
	ProcessOne(ctx context.Context, jobID string) error
	Wait()
}

var _ Ingestor = (*DocumentIngestor)(nil)
