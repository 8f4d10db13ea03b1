package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core/ocr"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

const classifyPrompt = `Classify this scanned page for OCR routing. Answer with JSON {"label": "..."} where label is one of:
"clean" (printed text, simple layout), "handwritten" (mostly handwriting), "complex" (multi-column, dense tables, forms or figures),
"blurry" (low resolution or out of focus), "messy" (stains, skew, noise).`

const describePrompt = `Describe the visual content of this page for search indexing: charts, diagrams, figures, stamps, signatures,
and what any tables convey. Be factual and concise. Do not transcribe body text verbatim.`

const transcribePrompt = `Transcribe this document. Return JSON:
{"confidence": <0..1>, "pages": [{"page_number": <n>, "text_blocks": ["paragraph", ...], "tables": [{"rows": [["cell", ...], ...]}]}]}
Keep reading order. Put tables only in "tables", not in "text_blocks". Use one entry per physical page.`

// GeminiVision uses a multimodal Gemini model to classify pages for routing,
// describe pages for enrichment and transcribe handwritten or complex scans.
type GeminiVision struct {
	client    *genai.Client
	modelName string
}

var (
	_ core.VisionClassifier   = (*GeminiVision)(nil)
	_ core.VisionDescriber    = (*GeminiVision)(nil)
	_ ocr.DocumentTranscriber = (*GeminiVision)(nil)
)

func NewGeminiVision(ctx context.Context, apiKey, modelName string) (*GeminiVision, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}
	return &GeminiVision{client: cl, modelName: modelName}, nil
}

func (g *GeminiVision) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiVision) ClassifyPage(ctx context.Context, image []byte, mimeType string) (models.VisionLabel, error) {
	out, err := g.generate(ctx, true, classifyPrompt, image, mimeType)
	if err != nil {
		return "", err
	}
	return parseLabel(out)
}

func (g *GeminiVision) DescribePage(ctx context.Context, image []byte, mimeType string) (string, error) {
	out, err := g.generate(ctx, false, describePrompt, image, mimeType)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *GeminiVision) TranscribeDocument(ctx context.Context, data []byte, mimeType string) ([]models.PageContent, float64, error) {
	out, err := g.generate(ctx, true, transcribePrompt, data, mimeType)
	if err != nil {
		return nil, 0, err
	}
	return parseTranscript(out)
}

func (g *GeminiVision) generate(ctx context.Context, jsonOut bool, prompt string, data []byte, mimeType string) (string, error) {
	m := g.client.GenerativeModel(g.modelName)
	m.SetTemperature(0)
	if jsonOut {
		m.ResponseMIMEType = "application/json"
	}

	resp, err := m.GenerateContent(ctx, genai.Blob{MIMEType: mimeType, Data: data}, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini generate: empty response")
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}

// stripFence removes a markdown code fence some models wrap JSON in.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func parseLabel(out string) (models.VisionLabel, error) {
	var v struct {
		Label string `json:"label"`
	}
	raw := stripFence(out)
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		v.Label = raw
	}
	label := models.VisionLabel(strings.ToLower(strings.Trim(strings.TrimSpace(v.Label), `".`)))
	switch label {
	case models.LabelClean, models.LabelHandwritten, models.LabelComplex, models.LabelBlurry, models.LabelMessy:
		return label, nil
	}
	return "", fmt.Errorf("unrecognized page label %q", v.Label)
}

func parseTranscript(out string) ([]models.PageContent, float64, error) {
	var v struct {
		Confidence float64              `json:"confidence"`
		Pages      []models.PageContent `json:"pages"`
	}
	if err := json.Unmarshal([]byte(stripFence(out)), &v); err != nil {
		return nil, 0, fmt.Errorf("decode transcript: %w", err)
	}
	conf := min(max(v.Confidence, 0), 1)
	for i := range v.Pages {
		blocks := v.Pages[i].TextBlocks[:0]
		for _, b := range v.Pages[i].TextBlocks {
			if b = strings.TrimSpace(b); b != "" {
				blocks = append(blocks, b)
			}
		}
		v.Pages[i].TextBlocks = blocks
	}
	return v.Pages, conf, nil
}
