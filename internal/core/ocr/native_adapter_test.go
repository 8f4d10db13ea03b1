package ocr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

func TestNativeAdapter_Markdown(t *testing.T) {
	src := "# Quarterly Review\n\n" +
		"Revenue grew *strongly* in `Q3`.\n\n" +
		"| Region | Sales |\n|---|---|\n| East | 10 |\n| West | 12 |\n\n" +
		"- first item\n- second item\n\n" +
		"> quoted line\n"

	doc, err := NewNativeAdapter(false).NormalizeDocument(context.Background(), core.Source{Name: "review.md", Data: []byte(src)})
	require.NoError(t, err)

	require.Len(t, doc.Pages, 1)
	page := doc.Pages[0]
	assert.Equal(t, 1, page.PageNumber)
	assert.Equal(t, []string{
		"Quarterly Review",
		"Revenue grew strongly in Q3.",
		"- first item\n- second item",
		"quoted line",
	}, page.TextBlocks)
	require.Len(t, page.Tables, 1)
	assert.Equal(t, [][]string{{"Region", "Sales"}, {"East", "10"}, {"West", "12"}}, page.Tables[0].Rows)

	assert.Equal(t, models.ProviderNative, doc.Metadata.Provider)
	assert.Equal(t, 1, doc.Metadata.TotalPages)
	assert.Equal(t, 1.0, doc.Metadata.ConfidenceScore)
}

func TestNativeAdapter_PlainTextPages(t *testing.T) {
	text := "Page one intro.\n\nSecond paragraph.\fPage two.\r\n\r\nMore."
	doc, err := NewNativeAdapter(false).NormalizeDocument(context.Background(), core.Source{Name: "x.txt", Data: []byte(text)})
	require.NoError(t, err)

	require.Len(t, doc.Pages, 2)
	assert.Equal(t, []string{"Page one intro.", "Second paragraph."}, doc.Pages[0].TextBlocks)
	assert.Equal(t, 2, doc.Pages[1].PageNumber)
	assert.Equal(t, []string{"Page two.", "More."}, doc.Pages[1].TextBlocks)
	assert.Equal(t, 2, doc.Metadata.TotalPages)
}

func TestNativeAdapter_RejectsImages(t *testing.T) {
	_, err := NewNativeAdapter(false).NormalizeDocument(context.Background(), core.Source{Name: "scan.png", Data: []byte("x")})
	assert.ErrorIs(t, err, core.ErrProvider)
}

func TestTextLayerDensity(t *testing.T) {
	assert.Equal(t, 0, textLayerDensity(nil))
	assert.Equal(t, 3, textLayerDensity([]string{"a b c", "  d e\n f "}))
}

func TestPdfPages_MalformedInput(t *testing.T) {
	pages, err := pdfPages([]byte("%PDF-1.7 truncated"))
	assert.Error(t, err)
	assert.Nil(t, pages)
}
