package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core/mocks"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

func TestRoute_TextFormatsGoNative(t *testing.T) {
	r := NewRouter(nil, nil, RouterConfig{}, nil)
	for _, name := range []string{"notes.md", "readme.txt", "report.docx", "page.html", "memo.rtf"} {
		t.Run(name, func(t *testing.T) {
			d, err := r.Route(context.Background(), core.Source{Name: name, Data: []byte("hello")}, models.RouteOptions{ForceOCR: true})
			require.NoError(t, err)
			assert.Equal(t, models.ProviderNative, d.Provider)
			assert.Equal(t, 1.0, d.Confidence)
			assert.False(t, d.IsNativePDF)
		})
	}
}

func TestRoute_ImageUsesClassifierLabel(t *testing.T) {
	tests := []struct {
		label models.VisionLabel
		want  models.Provider
	}{
		{models.LabelHandwritten, models.ProviderGemini},
		{models.LabelComplex, models.ProviderGemini},
		{models.LabelClean, models.ProviderAzure},
		{models.LabelBlurry, models.ProviderAzure},
		{models.LabelMessy, models.ProviderAzure},
	}
	for _, tt := range tests {
		t.Run(string(tt.label), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			classifier := mocks.NewMockVisionClassifier(ctrl)
			classifier.EXPECT().ClassifyPage(gomock.Any(), []byte("img"), "image/png").Return(tt.label, nil)

			d, err := NewRouter(classifier, nil, RouterConfig{}, nil).
				Route(context.Background(), core.Source{Name: "scan.png", Data: []byte("img")}, models.RouteOptions{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Provider)
			assert.Equal(t, tt.label, d.VisionLabel)
			assert.Equal(t, 1, d.PageCount)
			assert.Equal(t, "image/png", d.MimeType)
		})
	}
}

func TestRoute_ClassifierFailureFallsBackToClean(t *testing.T) {
	ctrl := gomock.NewController(t)
	classifier := mocks.NewMockVisionClassifier(ctrl)
	classifier.EXPECT().ClassifyPage(gomock.Any(), gomock.Any(), gomock.Any()).Return(models.VisionLabel(""), errors.New("quota"))

	d, err := NewRouter(classifier, nil, RouterConfig{}, nil).
		Route(context.Background(), core.Source{Name: "scan.jpg", Data: []byte("img")}, models.RouteOptions{})
	require.NoError(t, err)
	assert.Equal(t, models.ProviderAzure, d.Provider)
	assert.Equal(t, models.LabelClean, d.VisionLabel)
	assert.Contains(t, d.Reason, "classifier unavailable")
}

func TestRoute_PreferredProviderSkipsClassifier(t *testing.T) {
	ctrl := gomock.NewController(t)
	classifier := mocks.NewMockVisionClassifier(ctrl)

	d, err := NewRouter(classifier, nil, RouterConfig{}, nil).Route(context.Background(),
		core.Source{Name: "scan.tiff", Data: []byte("img")},
		models.RouteOptions{PreferredProvider: models.ProviderTesseract})
	require.NoError(t, err)
	assert.Equal(t, models.ProviderTesseract, d.Provider)
}

func TestRoute_Errors(t *testing.T) {
	r := NewRouter(nil, nil, RouterConfig{}, nil)
	ctx := context.Background()

	_, err := r.Route(ctx, core.Source{Name: "empty.pdf"}, models.RouteOptions{})
	assert.ErrorIs(t, err, core.ErrRouting)

	_, err = r.Route(ctx, core.Source{Name: "archive.tar.gz", MimeType: "application/gzip", Data: []byte{0x1f, 0x8b}}, models.RouteOptions{})
	assert.ErrorIs(t, err, core.ErrRouting)

	_, err = r.Route(ctx, core.Source{Name: "broken.pdf", Data: []byte("%PDF-1.4 not really")}, models.RouteOptions{})
	assert.ErrorIs(t, err, core.ErrRouting)

	_, err = r.Route(ctx, core.Source{Name: "a.png", Data: []byte("x")}, models.RouteOptions{PreferredProvider: "abbyy"})
	assert.ErrorIs(t, err, core.ErrRouting)
}

func TestResolveMimeType(t *testing.T) {
	tests := []struct {
		name string
		src  core.Source
		want string
	}{
		{"declared wins", core.Source{Name: "x.bin", MimeType: "application/pdf; charset=binary"}, "application/pdf"},
		{"extension over octet-stream", core.Source{Name: "Report.DOCX", MimeType: "application/octet-stream"}, mimeDOCX},
		{"extension over zip", core.Source{Name: "report.docx", MimeType: "application/zip"}, mimeDOCX},
		{"url with query", core.Source{URL: "https://cdn.example.com/a/notes.md?sig=abc"}, mimeMarkdown},
		{"sniffed", core.Source{Data: []byte("%PDF-1.7\n")}, "application/pdf"},
		{"plain text refined by extension", core.Source{Name: "x.md", MimeType: "text/plain"}, mimeMarkdown},
		{"nothing", core.Source{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveMimeType(tt.src))
		})
	}
}
