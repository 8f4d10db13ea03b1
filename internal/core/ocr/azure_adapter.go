package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

const azureAPIVersion = "2024-11-30"

// AzureConfig addresses a Document Intelligence resource.
type AzureConfig struct {
	Endpoint     string
	Key          string
	PollInterval time.Duration
	Timeout      time.Duration
}

// AzureAdapter normalizes scans with the prebuilt-layout model of Azure Document Intelligence.
type AzureAdapter struct {
	cfg  AzureConfig
	http *http.Client
}

var _ core.Normalizer = (*AzureAdapter)(nil)

func NewAzureAdapter(cfg AzureConfig, client *http.Client) (*AzureAdapter, error) {
	if cfg.Endpoint == "" || cfg.Key == "" {
		return nil, fmt.Errorf("azure document intelligence endpoint and key are required")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Minute
	}
	if client == nil {
		client = &http.Client{Timeout: time.Minute}
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	return &AzureAdapter{cfg: cfg, http: client}, nil
}

func (a *AzureAdapter) NormalizeDocument(ctx context.Context, src core.Source) (*models.NormalizedDocument, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	opURL, err := a.submit(ctx, src.Data)
	if err != nil {
		return nil, core.Wrap(core.ErrProvider, "azure submit", err)
	}
	result, err := a.poll(ctx, opURL)
	if err != nil {
		return nil, core.Wrap(core.ErrProvider, "azure poll", err)
	}

	doc := result.normalize()
	doc.Metadata.ProcessingTimeMs = time.Since(start).Milliseconds()
	return doc, nil
}

func (a *AzureAdapter) submit(ctx context.Context, data []byte) (string, error) {
	body, err := json.Marshal(map[string]string{"base64Source": base64.StdEncoding.EncodeToString(data)})
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/documentintelligence/documentModels/prebuilt-layout:analyze?api-version=%s", a.cfg.Endpoint, azureAPIVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", a.cfg.Key)

	resp, err := a.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("analyze returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	op := resp.Header.Get("Operation-Location")
	if op == "" {
		return "", fmt.Errorf("analyze response has no Operation-Location")
	}
	return op, nil
}

func (a *AzureAdapter) poll(ctx context.Context, opURL string) (*azureAnalyzeResult, error) {
	ticker := time.NewTicker(a.cfg.PollInterval)
	defer ticker.Stop()
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, opURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Ocp-Apim-Subscription-Key", a.cfg.Key)
		resp, err := a.http.Do(req)
		if err != nil {
			return nil, err
		}
		var op azureOperation
		err = json.NewDecoder(resp.Body).Decode(&op)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("operation returned %s", resp.Status)
		}
		if err != nil {
			return nil, fmt.Errorf("decode operation: %w", err)
		}

		switch op.Status {
		case "succeeded":
			if op.AnalyzeResult == nil {
				return nil, fmt.Errorf("operation succeeded without a result")
			}
			return op.AnalyzeResult, nil
		case "failed", "canceled":
			msg := op.Status
			if op.Error != nil {
				msg = op.Error.Code + ": " + op.Error.Message
			}
			return nil, fmt.Errorf("analysis %s", msg)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

type azureOperation struct {
	Status        string              `json:"status"`
	AnalyzeResult *azureAnalyzeResult `json:"analyzeResult"`
	Error         *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type azureSpan struct {
	Offset int `json:"offset"`
	Length int `json:"length"`
}

type azureRegion struct {
	PageNumber int `json:"pageNumber"`
}

type azureAnalyzeResult struct {
	Pages []struct {
		PageNumber int `json:"pageNumber"`
		Lines      []struct {
			Content string `json:"content"`
		} `json:"lines"`
		Words []struct {
			Confidence float64 `json:"confidence"`
		} `json:"words"`
	} `json:"pages"`
	Paragraphs []struct {
		Content         string        `json:"content"`
		Role            string        `json:"role"`
		Spans           []azureSpan   `json:"spans"`
		BoundingRegions []azureRegion `json:"boundingRegions"`
	} `json:"paragraphs"`
	Tables []struct {
		RowCount        int           `json:"rowCount"`
		ColumnCount     int           `json:"columnCount"`
		Spans           []azureSpan   `json:"spans"`
		BoundingRegions []azureRegion `json:"boundingRegions"`
		Cells           []struct {
			RowIndex    int    `json:"rowIndex"`
			ColumnIndex int    `json:"columnIndex"`
			Content     string `json:"content"`
		} `json:"cells"`
	} `json:"tables"`
}

// normalize maps the layout result onto pages. Paragraphs inside tables are
// dropped so table text appears once, as a table.
func (r *azureAnalyzeResult) normalize() *models.NormalizedDocument {
	byPage := map[int]*models.PageContent{}
	page := func(n int) *models.PageContent {
		if n < 1 {
			n = 1
		}
		p, ok := byPage[n]
		if !ok {
			p = &models.PageContent{PageNumber: n}
			byPage[n] = p
		}
		return p
	}

	var tableSpans []azureSpan
	for _, t := range r.Tables {
		tableSpans = append(tableSpans, t.Spans...)
		rows := make([][]string, t.RowCount)
		for i := range rows {
			rows[i] = make([]string, t.ColumnCount)
		}
		for _, c := range t.Cells {
			if c.RowIndex < t.RowCount && c.ColumnIndex < t.ColumnCount {
				rows[c.RowIndex][c.ColumnIndex] = c.Content
			}
		}
		p := page(firstRegion(t.BoundingRegions))
		p.Tables = append(p.Tables, models.Table{Rows: rows})
	}

	inTable := func(spans []azureSpan) bool {
		for _, s := range spans {
			for _, ts := range tableSpans {
				if s.Offset >= ts.Offset && s.Offset < ts.Offset+ts.Length {
					return true
				}
			}
		}
		return false
	}

	hasParagraphs := len(r.Paragraphs) > 0
	for _, para := range r.Paragraphs {
		switch para.Role {
		case "pageHeader", "pageFooter", "pageNumber":
			continue
		}
		if inTable(para.Spans) || strings.TrimSpace(para.Content) == "" {
			continue
		}
		p := page(firstRegion(para.BoundingRegions))
		p.TextBlocks = append(p.TextBlocks, strings.TrimSpace(para.Content))
	}

	var confSum float64
	var confN int
	for _, pg := range r.Pages {
		p := page(pg.PageNumber)
		if !hasParagraphs {
			var lines []string
			for _, l := range pg.Lines {
				if s := strings.TrimSpace(l.Content); s != "" {
					lines = append(lines, s)
				}
			}
			if len(lines) > 0 {
				p.TextBlocks = append(p.TextBlocks, strings.Join(lines, "\n"))
			}
		}
		for _, w := range pg.Words {
			confSum += w.Confidence
			confN++
		}
	}

	doc := &models.NormalizedDocument{Metadata: models.NormalizationMetadata{Provider: models.ProviderAzure}}
	for _, p := range byPage {
		doc.Pages = append(doc.Pages, *p)
	}
	sort.Slice(doc.Pages, func(i, j int) bool { return doc.Pages[i].PageNumber < doc.Pages[j].PageNumber })
	doc.Metadata.TotalPages = max(len(r.Pages), len(doc.Pages))
	if confN > 0 {
		doc.Metadata.ConfidenceScore = confSum / float64(confN)
	}
	return doc
}

func firstRegion(regions []azureRegion) int {
	if len(regions) == 0 {
		return 1
	}
	return regions[0].PageNumber
}
