package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
)

// Upload is a file received from a client together with its submission fields.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
	Request     IngestRequest // DocumentURL is filled in after the upload
}

type DocumentService struct {
	storage core.ObjectClient
	bucket  string
	ingest  *IngestService
}

func NewDocumentService(storage core.ObjectClient, bucket string, ingest *IngestService) *DocumentService {
	return &DocumentService{storage: storage, bucket: bucket, ingest: ingest}
}

// UploadAndSubmit stores the file in the bucket and submits it for ingestion.
// The object is removed again if the submission cannot be recorded.
func (s *DocumentService) UploadAndSubmit(ctx context.Context, up Upload, sync bool) (*Submission, error) {
	req := up.Request
	if strings.TrimSpace(up.Filename) == "" {
		return nil, core.InvalidInput("file name is required")
	}
	if req.DocumentName == "" {
		req.DocumentName = up.Filename
	}
	if err := req.validateFields(); err != nil {
		return nil, err
	}
	if req.MimeType == "" && up.ContentType != "application/octet-stream" {
		req.MimeType = up.ContentType
	}

	key := s.objectKey(req.CompanyID, uuid.NewString(), up.Filename)
	url, err := s.storage.UploadFile(ctx, s.bucket, key, up.Body, up.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}
	req.DocumentURL = url

	sub, err := s.ingest.Submit(ctx, req, sync)
	if err != nil {
		if delErr := s.storage.DeleteFile(context.WithoutCancel(ctx), s.bucket, key); delErr != nil {
			s.ingest.log.Warn("could not remove orphaned upload", "key", key, "error", delErr)
		}
		return nil, err
	}
	return sub, nil
}

// objectKey creates a consistent S3 key layout.
func (s *DocumentService) objectKey(companyID, uploadID, filename string) string {
	filename = path.Base(strings.TrimSpace(filename))
	filename = strings.ReplaceAll(filename, " ", "_")
	return path.Join("companies", companyID, "documents", uploadID, filename)
}
