package ocr

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"code.sajari.com/docconv"
	"github.com/fumiama/go-docx"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

// NativeAdapter reads documents that already carry text: PDFs with a text layer,
// DOCX, Markdown, plain text, HTML and the office formats docconv understands.
type NativeAdapter struct {
	useReadability bool
	md             goldmark.Markdown
}

var _ core.Normalizer = (*NativeAdapter)(nil)

// NewNativeAdapter builds the adapter. useReadability strips boilerplate from HTML.
func NewNativeAdapter(useReadability bool) *NativeAdapter {
	return &NativeAdapter{
		useReadability: useReadability,
		md:             goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

func (a *NativeAdapter) NormalizeDocument(ctx context.Context, src core.Source) (*models.NormalizedDocument, error) {
	start := time.Now()
	mimeType := ResolveMimeType(src)

	var (
		pages []models.PageContent
		err   error
	)
	switch kindOf(mimeType) {
	case kindPDF:
		pages, err = a.pdf(src.Data)
	case kindDOCX:
		pages, err = a.docx(src.Data)
	case kindMarkdown:
		pages = a.markdown(src.Data)
	case kindText:
		pages = plainText(string(src.Data))
	case kindHTML, kindOffice:
		pages, err = a.convert(src.Data, mimeType)
	default:
		err = fmt.Errorf("native adapter cannot read %q", mimeType)
	}
	if err != nil {
		return nil, core.Wrap(core.ErrProvider, "native", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &models.NormalizedDocument{
		Pages: pages,
		Metadata: models.NormalizationMetadata{
			Provider:         models.ProviderNative,
			TotalPages:       len(pages),
			ProcessingTimeMs: time.Since(start).Milliseconds(),
			ConfidenceScore:  1,
		},
	}, nil
}

func (a *NativeAdapter) pdf(data []byte) ([]models.PageContent, error) {
	texts, err := pdfPages(data)
	if err != nil {
		return nil, err
	}
	pages := make([]models.PageContent, len(texts))
	for i, t := range texts {
		pages[i] = models.PageContent{PageNumber: i + 1, TextBlocks: splitBlocks(t)}
	}
	return pages, nil
}

// docx keeps paragraphs in body order. Word documents carry no page breaks
// the parser can see, so everything lands on page 1.
func (a *NativeAdapter) docx(data []byte) ([]models.PageContent, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}
	page := models.PageContent{PageNumber: 1}
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			if t := docxParagraphText(it); t != "" {
				page.TextBlocks = append(page.TextBlocks, t)
			}
		case *docx.Table:
			var rows [][]string
			for _, row := range it.TableRows {
				var cells []string
				for _, cell := range row.TableCells {
					var parts []string
					for _, p := range cell.Paragraphs {
						if t := docxParagraphText(p); t != "" {
							parts = append(parts, t)
						}
					}
					cells = append(cells, strings.Join(parts, " "))
				}
				rows = append(rows, cells)
			}
			if len(rows) > 0 {
				page.Tables = append(page.Tables, models.Table{Rows: rows})
			}
		}
	}
	return []models.PageContent{page}, nil
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func (a *NativeAdapter) markdown(src []byte) []models.PageContent {
	doc := a.md.Parser().Parse(text.NewReader(src))
	page := models.PageContent{PageNumber: 1}
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *east.Table:
				page.Tables = append(page.Tables, markdownTable(node, src))
			case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
				if t := strings.TrimSpace(inlineText(node, src)); t != "" {
					page.TextBlocks = append(page.TextBlocks, t)
				}
			case *ast.FencedCodeBlock, *ast.CodeBlock:
				if t := strings.TrimSpace(blockLines(node, src)); t != "" {
					page.TextBlocks = append(page.TextBlocks, t)
				}
			case *ast.List:
				var items []string
				for li := node.FirstChild(); li != nil; li = li.NextSibling() {
					if t := strings.TrimSpace(inlineText(li, src)); t != "" {
						items = append(items, "- "+t)
					}
				}
				if len(items) > 0 {
					page.TextBlocks = append(page.TextBlocks, strings.Join(items, "\n"))
				}
			case *ast.Blockquote:
				walk(node)
			}
		}
	}
	walk(doc)
	return []models.PageContent{page}
}

// inlineText concatenates the text leaves under n.
func inlineText(n ast.Node, src []byte) string {
	var buf strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if c.Type() == ast.TypeBlock && c != n && buf.Len() > 0 {
				buf.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(buf.String()), " ")
}

func blockLines(n ast.Node, src []byte) string {
	var buf strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return buf.String()
}

func markdownTable(t *east.Table, src []byte) models.Table {
	var rows [][]string
	for r := t.FirstChild(); r != nil; r = r.NextSibling() {
		var cells []string
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			cells = append(cells, inlineText(c, src))
		}
		rows = append(rows, cells)
	}
	return models.Table{Rows: rows}
}

// plainText treats form feeds as page breaks.
func plainText(s string) []models.PageContent {
	parts := strings.Split(s, "\f")
	pages := make([]models.PageContent, 0, len(parts))
	for i, p := range parts {
		pages = append(pages, models.PageContent{PageNumber: i + 1, TextBlocks: splitBlocks(p)})
	}
	return pages
}

func (a *NativeAdapter) convert(data []byte, mimeType string) ([]models.PageContent, error) {
	res, err := docconv.Convert(bytes.NewReader(data), mimeType, a.useReadability)
	if err != nil {
		return nil, fmt.Errorf("docconv %s: %w", mimeType, err)
	}
	return plainText(res.Body), nil
}
