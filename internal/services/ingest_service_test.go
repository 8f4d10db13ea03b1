package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core/mocks"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

// fakeIngestor records calls instead of running the pipeline.
type fakeIngestor struct {
	enqueued  []string
	processed []string
	runCtxErr error
	err       error
}

func (f *fakeIngestor) Start(context.Context, int) {}
func (f *fakeIngestor) Wait()                      {}

func (f *fakeIngestor) Enqueue(_ context.Context, jobID string) error {
	f.enqueued = append(f.enqueued, jobID)
	return f.err
}

func (f *fakeIngestor) ProcessOne(ctx context.Context, jobID string) error {
	f.processed = append(f.processed, jobID)
	f.runCtxErr = ctx.Err()
	return f.err
}

func validRequest() IngestRequest {
	return IngestRequest{
		DocumentURL:  "s3://docs/acme/report.pdf",
		DocumentName: "report.pdf",
		CompanyID:    "acme",
		UserID:       "u-1",
		Category:     "finance",
		Options:      models.RouteOptions{ForceOCR: true, PreferredProvider: models.ProviderAzure},
	}
}

func TestSubmit_Async(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIngestStore(ctrl)
	ing := &fakeIngestor{}
	svc := NewIngestService(store, ing, nil)

	var savedDoc *models.Document
	var savedJob *models.IngestJob
	store.EXPECT().CreateSubmission(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, d *models.Document, j *models.IngestJob) error {
			savedDoc, savedJob = d, j
			return nil
		})

	sub, err := svc.Submit(context.Background(), validRequest(), false)
	require.NoError(t, err)

	assert.Equal(t, models.JobQueued, sub.Status)
	assert.Equal(t, []string{sub.JobID}, ing.enqueued)
	assert.Empty(t, ing.processed)

	require.NotNil(t, savedDoc)
	assert.Equal(t, sub.DocumentID, savedDoc.ID)
	assert.Equal(t, "acme", savedDoc.CompanyID)
	assert.Equal(t, "finance", savedDoc.Category)
	assert.Equal(t, savedDoc.ID, savedJob.DocumentID)
	assert.True(t, savedJob.ForceOCR)
	assert.Equal(t, models.ProviderAzure, savedJob.PreferredProv)
	assert.False(t, savedJob.CreatedAt.IsZero())
}

func TestSubmit_SyncReturnsFinalStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIngestStore(ctrl)
	ing := &fakeIngestor{err: errors.New("routing error: route: unsupported")}
	svc := NewIngestService(store, ing, nil)

	store.EXPECT().CreateSubmission(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	store.EXPECT().GetJob(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, id string) (*models.IngestJob, error) {
			return &models.IngestJob{ID: id, Status: models.JobFailed}, nil
		})

	sub, err := svc.Submit(context.Background(), validRequest(), true)
	require.NoError(t, err)
	assert.Equal(t, models.JobFailed, sub.Status)
	assert.Equal(t, []string{sub.JobID}, ing.processed)
	assert.Empty(t, ing.enqueued)
}

func TestSubmit_SyncRunSurvivesCallerCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIngestStore(ctrl)
	ing := &fakeIngestor{}
	svc := NewIngestService(store, ing, nil)

	ctx, cancel := context.WithCancel(context.Background())
	store.EXPECT().CreateSubmission(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *models.Document, *models.IngestJob) error {
			cancel()
			return nil
		})
	store.EXPECT().GetJob(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, id string) (*models.IngestJob, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return &models.IngestJob{ID: id, Status: models.JobCompleted}, nil
		})

	sub, err := svc.Submit(ctx, validRequest(), true)
	require.NoError(t, err)
	assert.NoError(t, ing.runCtxErr)
	assert.Equal(t, models.JobCompleted, sub.Status)
}

func TestSubmit_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewIngestService(mocks.NewMockIngestStore(ctrl), &fakeIngestor{}, nil)

	cases := map[string]func(*IngestRequest){
		"missing url":      func(r *IngestRequest) { r.DocumentURL = " " },
		"missing name":     func(r *IngestRequest) { r.DocumentName = "" },
		"missing company":  func(r *IngestRequest) { r.CompanyID = "" },
		"missing user":     func(r *IngestRequest) { r.UserID = "" },
		"unknown provider": func(r *IngestRequest) { r.Options.PreferredProvider = "abbyy" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validRequest()
			mutate(&req)
			_, err := svc.Submit(context.Background(), req, false)
			assert.ErrorIs(t, err, core.ErrInvalidInput)
		})
	}
}

func TestSubmit_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIngestStore(ctrl)
	ing := &fakeIngestor{}
	svc := NewIngestService(store, ing, nil)

	store.EXPECT().CreateSubmission(gomock.Any(), gomock.Any(), gomock.Any()).Return(core.Wrap(core.ErrStorage, "insert", errors.New("dup")))

	_, err := svc.Submit(context.Background(), validRequest(), false)
	assert.ErrorIs(t, err, core.ErrStorage)
	assert.Empty(t, ing.enqueued)
}

func TestUploadAndSubmit(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIngestStore(ctrl)
	objects := mocks.NewMockObjectClient(ctrl)
	ing := &fakeIngestor{}
	svc := NewDocumentService(objects, "pdr-docs", NewIngestService(store, ing, nil))

	var key string
	objects.EXPECT().UploadFile(gomock.Any(), "pdr-docs", gomock.Any(), gomock.Any(), "application/pdf").
		DoAndReturn(func(_ context.Context, bucket, k string, _ io.Reader, _ string) (string, error) {
			key = k
			return "s3://" + bucket + "/" + k, nil
		})
	var doc *models.Document
	store.EXPECT().CreateSubmission(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, d *models.Document, _ *models.IngestJob) error {
			doc = d
			return nil
		})

	sub, err := svc.UploadAndSubmit(context.Background(), Upload{
		Filename:    "Q3 report.pdf",
		ContentType: "application/pdf",
		Body:        strings.NewReader("%PDF-1.4"),
		Request:     IngestRequest{CompanyID: "acme", UserID: "u-1"},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, models.JobQueued, sub.Status)

	assert.True(t, strings.HasPrefix(key, "companies/acme/documents/"))
	assert.True(t, strings.HasSuffix(key, "/Q3_report.pdf"))
	assert.Equal(t, "s3://pdr-docs/"+key, doc.SourceURL)
	assert.Equal(t, "Q3 report.pdf", doc.Title)
	assert.Equal(t, "application/pdf", doc.MimeType)
}

func TestUploadAndSubmit_InvalidBeforeUpload(t *testing.T) {
	ctrl := gomock.NewController(t)
	objects := mocks.NewMockObjectClient(ctrl)
	svc := NewDocumentService(objects, "pdr-docs", NewIngestService(mocks.NewMockIngestStore(ctrl), &fakeIngestor{}, nil))

	_, err := svc.UploadAndSubmit(context.Background(), Upload{
		Filename: "a.txt",
		Body:     strings.NewReader("hello"),
		Request:  IngestRequest{CompanyID: "acme"},
	}, false)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestUploadAndSubmit_RemovesObjectOnStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIngestStore(ctrl)
	objects := mocks.NewMockObjectClient(ctrl)
	svc := NewDocumentService(objects, "pdr-docs", NewIngestService(store, &fakeIngestor{}, nil))

	objects.EXPECT().UploadFile(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("s3://pdr-docs/k", nil)
	store.EXPECT().CreateSubmission(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))
	objects.EXPECT().DeleteFile(gomock.Any(), "pdr-docs", gomock.Any()).Return(nil)

	_, err := svc.UploadAndSubmit(context.Background(), Upload{
		Filename: "a.txt",
		Body:     strings.NewReader("hello"),
		Request:  IngestRequest{CompanyID: "acme", UserID: "u-1"},
	}, false)
	assert.Error(t, err)
}
