package ocr

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

// TesseractAdapter runs the local tesseract binary over rendered pages.
// It is only used when a caller asks for it by name.
type TesseractAdapter struct {
	bin      string
	lang     string
	renderer core.PageRenderer
}

var _ core.Normalizer = (*TesseractAdapter)(nil)

func NewTesseractAdapter(bin string, renderer core.PageRenderer) *TesseractAdapter {
	if bin == "" {
		bin = "tesseract"
	}
	return &TesseractAdapter{bin: bin, lang: "eng", renderer: renderer}
}

func (a *TesseractAdapter) NormalizeDocument(ctx context.Context, src core.Source) (*models.NormalizedDocument, error) {
	start := time.Now()
	images := [][]byte{src.Data}
	if kindOf(ResolveMimeType(src)) == kindPDF {
		if a.renderer == nil {
			return nil, core.Errorf(core.ErrProvider, "tesseract", "no page renderer configured")
		}
		var err error
		images, err = a.renderer.RenderPages(ctx, src.Data, 1, 0)
		if err != nil {
			return nil, core.Wrap(core.ErrProvider, "tesseract", err)
		}
	}

	doc := &models.NormalizedDocument{}
	var confSum float64
	var confN int
	for i, img := range images {
		out, err := a.run(ctx, img)
		if err != nil {
			return nil, core.Wrap(core.ErrProvider, "tesseract", fmt.Errorf("page %d: %w", i+1, err))
		}
		blocks, sum, n := parseTSV(out)
		confSum += sum
		confN += n
		doc.Pages = append(doc.Pages, models.PageContent{PageNumber: i + 1, TextBlocks: blocks})
	}

	doc.Metadata = models.NormalizationMetadata{
		Provider:         models.ProviderTesseract,
		TotalPages:       len(doc.Pages),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}
	if confN > 0 {
		doc.Metadata.ConfidenceScore = confSum / float64(confN) / 100
	}
	return doc, nil
}

func (a *TesseractAdapter) run(ctx context.Context, image []byte) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, a.bin, "stdin", "stdout", "-l", a.lang, "tsv")
	cmd.Stdin = bytes.NewReader(image)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", a.bin, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// parseTSV groups recognized words into paragraphs and sums word confidences.
// Columns: level page_num block_num par_num line_num word_num left top width height conf text.
func parseTSV(out []byte) (blocks []string, confSum float64, confN int) {
	type parKey struct{ block, par int }
	var (
		cur   parKey
		words []string
		lines []string
		line  = -1
	)
	flushLine := func() {
		if len(words) > 0 {
			lines = append(lines, strings.Join(words, " "))
			words = nil
		}
	}
	flushPar := func() {
		flushLine()
		if len(lines) > 0 {
			blocks = append(blocks, strings.Join(lines, "\n"))
			lines = nil
		}
	}

	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	header := true
	for sc.Scan() {
		if header {
			header = false
			continue
		}
		cols := strings.Split(sc.Text(), "\t")
		if len(cols) < 12 || cols[0] != "5" {
			continue
		}
		word := strings.TrimSpace(cols[11])
		if word == "" {
			continue
		}
		block, _ := strconv.Atoi(cols[2])
		par, _ := strconv.Atoi(cols[3])
		ln, _ := strconv.Atoi(cols[4])
		if k := (parKey{block, par}); k != cur {
			flushPar()
			cur, line = k, ln
		} else if ln != line {
			flushLine()
			line = ln
		}
		words = append(words, word)
		if c, err := strconv.ParseFloat(cols[10], 64); err == nil && c >= 0 {
			confSum += c
			confN++
		}
	}
	flushPar()
	return blocks, confSum, confN
}
