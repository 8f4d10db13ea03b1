package ingestion_engine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

const paragraphSep = "\n\n"

// Chunker splits normalized pages into parent chunks and overlapping child chunks.
// It holds no state besides its configuration and is safe for concurrent use.
type Chunker struct {
	cfg ChunkerConfig
}

func NewChunker(cfg ChunkerConfig) (*Chunker, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Chunker{cfg: cfg}, nil
}

// Chunk produces parents in reading order. Tables become a single parent with a single child.
func (c *Chunker) Chunk(doc *models.NormalizedDocument) ([]models.DocumentChunk, error) {
	if doc == nil {
		return nil, core.Errorf(core.ErrChunking, "chunk", "normalized document is nil")
	}
	pages := make([]models.PageContent, len(doc.Pages))
	copy(pages, doc.Pages)
	for _, p := range pages {
		if p.PageNumber < 1 {
			return nil, core.Errorf(core.ErrChunking, "chunk", "page number %d out of range", p.PageNumber)
		}
	}
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].PageNumber < pages[j].PageNumber })

	var (
		out     []models.DocumentChunk
		buf     []string
		bufPage int
		perPage = map[int]int{}
	)

	emit := func(text string, page int, isTable bool) {
		ch := models.DocumentChunk{
			Content:     text,
			TokenCount:  approxTokens(text),
			PageNumber:  page,
			PageIndex:   perPage[page],
			IsTable:     isTable,
			ContentHash: ContentHash(text),
		}
		perPage[page]++
		ch.Children = c.children(text, isTable)
		out = append(out, ch)
	}

	flush := func() {
		if len(buf) == 0 {
			return
		}
		emit(strings.Join(buf, paragraphSep), bufPage, false)
		buf = buf[:0]
	}

	for _, p := range pages {
		text := c.pageText(p)
		if text != "" {
			switch {
			case !c.fitsParent(text):
				flush()
				for _, piece := range c.splitToFit(text) {
					emit(piece, p.PageNumber, false)
				}
			case len(buf) > 0 && !c.fitsParent(strings.Join(append(buf[:len(buf):len(buf)], text), paragraphSep)):
				flush()
				fallthrough
			default:
				if len(buf) == 0 {
					bufPage = p.PageNumber
				}
				buf = append(buf, text)
			}
		}

		for _, tbl := range p.Tables {
			rendered := renderTable(tbl)
			if rendered == "" {
				continue
			}
			flush()
			emit(rendered, p.PageNumber, true)
		}
	}
	flush()

	return out, nil
}

// fitsParent reports whether text can be one narrative parent: it is within the
// parent budget and its children, overlaps counted, are within budget plus one overlap.
func (c *Chunker) fitsParent(text string) bool {
	if approxTokens(text) > c.cfg.ParentTokens {
		return false
	}
	if c.cfg.Strategy == StrategyParentOnly {
		return true
	}
	return childTokens(c.children(text, false)) <= c.cfg.ParentTokens+c.cfg.ChildOverlap
}

// splitToFit packs text into pieces that each satisfy fitsParent, shrinking the
// piece size until they do. Pieces no longer than one child window always fit.
func (c *Chunker) splitToFit(text string) []string {
	window := c.cfg.ChildTokens * 4
	limit := c.cfg.ParentTokens * 4
	for {
		pieces := splitOversize(text, limit)
		if limit <= window || allFit(pieces, c.fitsParent) {
			return pieces
		}
		limit = max(limit-max(c.cfg.ChildOverlap*4, limit/10, 1), window)
	}
}

func allFit(pieces []string, fits func(string) bool) bool {
	for _, p := range pieces {
		if !fits(p) {
			return false
		}
	}
	return true
}

func childTokens(children []models.ChildChunk) int {
	n := 0
	for _, ch := range children {
		n += ch.TokenCount
	}
	return n
}

func (c *Chunker) pageText(p models.PageContent) string {
	blocks := make([]string, 0, len(p.TextBlocks))
	for _, b := range p.TextBlocks {
		if b = strings.TrimSpace(b); b != "" {
			blocks = append(blocks, b)
		}
	}
	if len(blocks) == 0 {
		return ""
	}
	text := strings.Join(blocks, paragraphSep)
	if c.cfg.IncludePageHeader {
		text = fmt.Sprintf("[Page %d]\n%s", p.PageNumber, text)
	}
	return text
}

func (c *Chunker) children(parent string, isTable bool) []models.ChildChunk {
	var parts []string
	if isTable || c.cfg.Strategy == StrategyParentOnly {
		parts = []string{parent}
	} else {
		parts = splitWindows(parent, c.cfg.ChildTokens*4, c.cfg.ChildOverlap*4)
	}
	out := make([]models.ChildChunk, 0, len(parts))
	for _, s := range parts {
		out = append(out, models.ChildChunk{Content: s, TokenCount: approxTokens(s), ContentHash: ContentHash(s)})
	}
	return out
}

// splitWindows cuts text into windows of at most window runes. Each window after the first
// starts inside the previous one, about overlap runes before its end, on a word start.
func splitWindows(text string, window, overlap int) []string {
	r := []rune(text)
	if len(r) <= window {
		return []string{text}
	}

	var out []string
	start := 0
	for start < len(r) {
		end := start + window
		if end >= len(r) {
			end = len(r)
		} else {
			for k := end; k > start+window/2; k-- {
				if unicode.IsSpace(r[k]) {
					end = k
					break
				}
			}
		}
		out = append(out, string(r[start:end]))
		if end == len(r) {
			break
		}

		next := end - overlap
		if next <= start {
			next = start + 1
		}
		if snapped := nextWordStart(r, next, end); snapped < end {
			next = snapped
		}
		start = next
	}
	return out
}

func nextWordStart(r []rune, from, limit int) int {
	for i := from; i < limit; i++ {
		if !unicode.IsSpace(r[i]) && (i == 0 || unicode.IsSpace(r[i-1])) {
			return i
		}
	}
	return limit
}

// splitOversize packs paragraphs into pieces of at most maxRunes runes, hard-splitting
// paragraphs that are too long on their own.
func splitOversize(text string, maxRunes int) []string {
	var (
		out []string
		cur []string
		n   int
	)
	sepLen := len([]rune(paragraphSep))
	for _, para := range strings.Split(text, paragraphSep) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		pl := len([]rune(para))
		if pl > maxRunes {
			if len(cur) > 0 {
				out = append(out, strings.Join(cur, paragraphSep))
				cur, n = nil, 0
			}
			for _, w := range splitWindows(para, maxRunes, 0) {
				if w = strings.TrimSpace(w); w != "" {
					out = append(out, w)
				}
			}
			continue
		}
		add := pl
		if len(cur) > 0 {
			add += sepLen
		}
		if n+add > maxRunes {
			out = append(out, strings.Join(cur, paragraphSep))
			cur, n, add = nil, 0, pl
		}
		cur = append(cur, para)
		n += add
	}
	if len(cur) > 0 {
		out = append(out, strings.Join(cur, paragraphSep))
	}
	return out
}

func renderTable(t models.Table) string {
	var b strings.Builder
	for _, row := range t.Rows {
		if len(row) == 0 {
			continue
		}
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = strings.TrimSpace(strings.ReplaceAll(c, "\n", " "))
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |")
	}
	return b.String()
}

// ContentHash is the hex sha256 of the chunk text.
func ContentHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// approxTokens is a cheap token estimator (~4 chars ≈ 1 token).
func approxTokens(s string) int {
	n := len([]rune(s))
	if n <= 0 {
		return 0
	}
	return (n + 3) / 4
}
