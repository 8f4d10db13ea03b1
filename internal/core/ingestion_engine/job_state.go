package ingestion_engine

import (
	"fmt"
	"time"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

// JobEvent is something that happened to an ingestion job.
type JobEvent interface {
	// from lists the statuses the event may be applied in.
	from() []models.JobStatus
	apply(job *models.IngestJob)
}

// Submitted creates the job in the queued state.
type Submitted struct {
	At time.Time
}

// Started marks the beginning of a pipeline run.
type Started struct {
	At time.Time
}

// Completed marks a successful run and records what it produced.
type Completed struct {
	At          time.Time
	Provider    models.Provider
	PageCount   int
	Confidence  float64
	TotalChunks int
}

// Failed marks a run aborted by a fatal error.
type Failed struct {
	At  time.Time
	Err error
}

func (Submitted) from() []models.JobStatus { return []models.JobStatus{""} }
func (e Submitted) apply(j *models.IngestJob) {
	j.Status = models.JobQueued
	j.CreatedAt = e.At
}

func (Started) from() []models.JobStatus { return []models.JobStatus{models.JobQueued} }
func (e Started) apply(j *models.IngestJob) {
	j.Status = models.JobProcessing
	at := e.At
	j.StartedAt = &at
}

func (Completed) from() []models.JobStatus { return []models.JobStatus{models.JobProcessing} }
func (e Completed) apply(j *models.IngestJob) {
	j.Status = models.JobCompleted
	j.Provider = string(e.Provider)
	j.PageCount = e.PageCount
	j.ConfidenceScore = e.Confidence
	j.TotalChunks = e.TotalChunks
	finish(j, e.At)
}

func (Failed) from() []models.JobStatus {
	return []models.JobStatus{models.JobQueued, models.JobProcessing}
}
func (e Failed) apply(j *models.IngestJob) {
	j.Status = models.JobFailed
	if e.Err != nil {
		j.ErrorMessage = e.Err.Error()
	} else {
		j.ErrorMessage = "unknown error"
	}
	finish(j, e.At)
}

func finish(j *models.IngestJob, at time.Time) {
	j.CompletedAt = &at
	if j.StartedAt != nil {
		j.DurationMs = at.Sub(*j.StartedAt).Milliseconds()
	}
}

// Apply returns job after ev. Illegal transitions, including any event on a completed or
// failed job, return ErrInvalidTransition and the job unchanged.
func Apply(job models.IngestJob, ev JobEvent) (models.IngestJob, error) {
	for _, s := range ev.from() {
		if job.Status == s {
			next := job
			ev.apply(&next)
			return next, nil
		}
	}
	return job, fmt.Errorf("%w: %T from %q", core.ErrInvalidTransition, ev, job.Status)
}
