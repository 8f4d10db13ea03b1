package ingestion_engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
)

var sampleWords = []string{"ledger", "invoice", "policy", "audit", "clause", "tenant", "budget", "review", "quarter", "vendor"}

// makeText returns exactly n runes of space separated words, with no leading or trailing space.
func makeText(n, seed int) string {
	var b strings.Builder
	for i := seed; b.Len() < n+16; i++ {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(sampleWords[i%len(sampleWords)])
	}
	s := b.String()[:n]
	if strings.HasSuffix(s, " ") {
		s = s[:n-1] + "x"
	}
	return s
}

func newTestChunker(t *testing.T, cfg ChunkerConfig) *Chunker {
	t.Helper()
	c, err := NewChunker(cfg)
	require.NoError(t, err)
	return c
}

func TestChunk_ThreePageNativeDocument(t *testing.T) {
	doc := &models.NormalizedDocument{Pages: []models.PageContent{
		{PageNumber: 1, TextBlocks: []string{makeText(400, 0)}},
		{PageNumber: 2, TextBlocks: []string{makeText(400, 3)}},
		{PageNumber: 3, TextBlocks: []string{makeText(400, 6)}},
	}}

	chunks, err := newTestChunker(t, DefaultChunkerConfig()).Chunk(doc)
	require.NoError(t, err)

	require.Len(t, chunks, 1)
	parent := chunks[0]
	assert.Equal(t, 1, parent.PageNumber)
	assert.False(t, parent.IsTable)
	assert.Less(t, parent.TokenCount, 1000)
	require.GreaterOrEqual(t, len(parent.Children), 2)

	first, second := parent.Children[0].Content, parent.Children[1].Content
	shared := sharedOverlap(first, second)
	assert.Greater(t, shared, 150, "expected roughly 200 characters of overlap")
	assert.LessOrEqual(t, shared, 200)
}

func TestChunk_ChildBudgetAndOverlapBounds(t *testing.T) {
	cfg := DefaultChunkerConfig()
	var pages []models.PageContent
	for i := 1; i <= 8; i++ {
		pages = append(pages, models.PageContent{PageNumber: i, TextBlocks: []string{makeText(1500, i), makeText(900, i*7)}})
	}

	chunks, err := newTestChunker(t, cfg).Chunk(&models.NormalizedDocument{Pages: pages})
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for _, p := range chunks {
		assert.LessOrEqual(t, p.TokenCount, cfg.ParentTokens)
		sum := 0
		for i, ch := range p.Children {
			assert.LessOrEqual(t, ch.TokenCount, cfg.ChildTokens)
			sum += ch.TokenCount
			if i > 0 {
				assert.Greater(t, sharedOverlap(p.Children[i-1].Content, ch.Content), 0, "consecutive children must overlap")
			}
		}
		assert.LessOrEqual(t, sum, cfg.ParentTokens+cfg.ChildOverlap)
	}
}

func TestChunk_NearBudgetPageKeepsChildSumInBudget(t *testing.T) {
	cfg := DefaultChunkerConfig()
	doc := &models.NormalizedDocument{Pages: []models.PageContent{
		{PageNumber: 1, TextBlocks: []string{makeText(3900, 0)}},
		{PageNumber: 2, TextBlocks: []string{makeText(3990, 4)}},
	}}

	chunks, err := newTestChunker(t, cfg).Chunk(doc)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 2)

	var rebuilt []string
	for _, p := range chunks {
		assert.LessOrEqual(t, p.TokenCount, cfg.ParentTokens)
		assert.LessOrEqual(t, childTokens(p.Children), cfg.ParentTokens+cfg.ChildOverlap, "parent %d on page %d", p.PageIndex, p.PageNumber)
		rebuilt = append(rebuilt, p.Content)
	}
	assert.Equal(t, strings.Fields(makeText(3900, 0)+" "+makeText(3990, 4)), strings.Fields(strings.Join(rebuilt, " ")))
}

func TestChunk_TablesAreAtomic(t *testing.T) {
	rows := [][]string{{"Item", "Amount"}}
	for i := 0; i < 600; i++ {
		rows = append(rows, []string{makeText(12, i), "1,000.00"})
	}
	doc := &models.NormalizedDocument{Pages: []models.PageContent{
		{PageNumber: 1, TextBlocks: []string{"Summary of spend."}, Tables: []models.Table{{Rows: rows}}},
		{PageNumber: 2, TextBlocks: []string{"Closing notes."}},
	}}

	chunks, err := newTestChunker(t, DefaultChunkerConfig()).Chunk(doc)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, "Summary of spend.", chunks[0].Content)
	tbl := chunks[1]
	assert.True(t, tbl.IsTable)
	assert.Greater(t, tbl.TokenCount, 1000)
	require.Len(t, tbl.Children, 1)
	assert.Equal(t, tbl.Content, tbl.Children[0].Content)
	assert.True(t, strings.HasPrefix(tbl.Content, "| Item | Amount |\n"))
	assert.Equal(t, "Closing notes.", chunks[2].Content)
	assert.Equal(t, 2, chunks[2].PageNumber)
}

func TestChunk_OversizePageIsSplit(t *testing.T) {
	cfg := DefaultChunkerConfig()
	doc := &models.NormalizedDocument{Pages: []models.PageContent{
		{PageNumber: 4, TextBlocks: []string{makeText(9000, 1), makeText(2500, 2)}},
	}}

	chunks, err := newTestChunker(t, cfg).Chunk(doc)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 2)
	for i, ch := range chunks {
		assert.LessOrEqual(t, ch.TokenCount, cfg.ParentTokens)
		assert.Equal(t, 4, ch.PageNumber)
		assert.Equal(t, i, ch.PageIndex)
	}
}

func TestChunk_PageHeaderAndParentBoundaries(t *testing.T) {
	cfg := ChunkerConfig{ParentTokens: 120, ChildTokens: 60, ChildOverlap: 10, IncludePageHeader: true, Strategy: StrategyHierarchical}
	doc := &models.NormalizedDocument{Pages: []models.PageContent{
		{PageNumber: 1, TextBlocks: []string{makeText(300, 0)}},
		{PageNumber: 2, TextBlocks: []string{makeText(300, 1)}},
		{PageNumber: 3, TextBlocks: []string{"   ", ""}},
	}}

	chunks, err := newTestChunker(t, cfg).Chunk(doc)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.True(t, strings.HasPrefix(chunks[0].Content, "[Page 1]\n"))
	assert.True(t, strings.HasPrefix(chunks[1].Content, "[Page 2]\n"))
	assert.Equal(t, 2, chunks[1].PageNumber)
}

func TestChunk_ParentOnlyStrategy(t *testing.T) {
	cfg := DefaultChunkerConfig()
	cfg.Strategy = StrategyParentOnly
	doc := &models.NormalizedDocument{Pages: []models.PageContent{{PageNumber: 1, TextBlocks: []string{makeText(2000, 0)}}}}

	chunks, err := newTestChunker(t, cfg).Chunk(doc)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.Len(t, chunks[0].Children, 1)
	assert.Equal(t, chunks[0].Content, chunks[0].Children[0].Content)
}

func TestChunk_EmptyDocument(t *testing.T) {
	chunks, err := newTestChunker(t, DefaultChunkerConfig()).Chunk(&models.NormalizedDocument{})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunk_Deterministic(t *testing.T) {
	doc := &models.NormalizedDocument{Pages: []models.PageContent{
		{PageNumber: 2, TextBlocks: []string{makeText(3000, 5)}},
		{PageNumber: 1, TextBlocks: []string{makeText(2200, 2)}, Tables: []models.Table{{Rows: [][]string{{"a", "b"}}}}},
	}}
	c := newTestChunker(t, DefaultChunkerConfig())

	a, err := c.Chunk(doc)
	require.NoError(t, err)
	b, err := c.Chunk(doc)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 1, a[0].PageNumber, "pages are processed in page order")
}

func TestChunk_MalformedInput(t *testing.T) {
	c := newTestChunker(t, DefaultChunkerConfig())

	_, err := c.Chunk(nil)
	assert.ErrorIs(t, err, core.ErrChunking)

	_, err = c.Chunk(&models.NormalizedDocument{Pages: []models.PageContent{{PageNumber: 0, TextBlocks: []string{"x"}}}})
	assert.ErrorIs(t, err, core.ErrChunking)
}

func TestNewChunker_RejectsBadBudgets(t *testing.T) {
	tests := []ChunkerConfig{
		{ParentTokens: 0, ChildTokens: 10, Strategy: StrategyHierarchical},
		{ParentTokens: 100, ChildTokens: 50, ChildOverlap: 50, Strategy: StrategyHierarchical},
		{ParentTokens: 100, ChildTokens: 200, ChildOverlap: 5, Strategy: StrategyHierarchical},
		{ParentTokens: 100, ChildTokens: 50, ChildOverlap: 5, Strategy: "semantic"},
	}
	for _, cfg := range tests {
		_, err := NewChunker(cfg)
		assert.ErrorIs(t, err, core.ErrChunking, "%+v", cfg)
	}
}

func TestContentHash_Deterministic(t *testing.T) {
	inputs := []string{"", "quarterly report", "naïve café", makeText(5000, 3)}
	for _, s := range inputs {
		assert.Equal(t, ContentHash(s), ContentHash(s))
		assert.Len(t, ContentHash(s), 64)
	}
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", ContentHash(""))
	assert.NotEqual(t, ContentHash("a"), ContentHash("b"))
}

func TestApproxTokens(t *testing.T) {
	assert.Equal(t, 0, approxTokens(""))
	assert.Equal(t, 1, approxTokens("abc"))
	assert.Equal(t, 1, approxTokens("abcd"))
	assert.Equal(t, 2, approxTokens("abcde"))
	assert.Equal(t, 300, approxTokens(makeText(1200, 0)))
}

// sharedOverlap returns the length in runes of the longest prefix of b that is a suffix of a.
func sharedOverlap(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	best := 0
	for k := 1; k <= len(ra) && k <= len(rb); k++ {
		if string(ra[len(ra)-k:]) == string(rb[:k]) {
			best = k
		}
	}
	return best
}
