package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

func TestRegistry(t *testing.T) {
	r := Registry{}.
		Register(models.ProviderTesseract, NewTesseractAdapter("tesseract", nil)).
		Register(models.ProviderNative, NewNativeAdapter(false)).
		Register(models.ProviderGemini, nil)

	assert.Equal(t, []models.Provider{models.ProviderNative, models.ProviderTesseract}, r.Providers())
	assert.Len(t, r, 2)
}
