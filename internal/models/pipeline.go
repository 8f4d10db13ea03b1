package models

// Provider names the adapter that produced a normalized document.
type Provider string

const (
	ProviderNative    Provider = "native"
	ProviderAzure     Provider = "azure"
	ProviderGemini    Provider = "gemini"
	ProviderTesseract Provider = "tesseract"
)

// VisionLabel is the classifier's verdict on a rendered sample page.
type VisionLabel string

const (
	LabelClean       VisionLabel = "clean"
	LabelHandwritten VisionLabel = "handwritten"
	LabelComplex     VisionLabel = "complex"
	LabelBlurry      VisionLabel = "blurry"
	LabelMessy       VisionLabel = "messy"
)

// RouteOptions are the caller's routing overrides.
type RouteOptions struct {
	ForceOCR          bool     `json:"forceOCR,omitempty"`
	PreferredProvider Provider `json:"preferredProvider,omitempty"`
}

// RoutingDecision is the output of the routing engine for one document.
type RoutingDecision struct {
	IsNativePDF bool        `json:"is_native_pdf"`
	Provider    Provider    `json:"provider"`
	PageCount   int         `json:"page_count"`
	Confidence  float64     `json:"confidence"`
	Reason      string      `json:"reason"`
	VisionLabel VisionLabel `json:"vision_label,omitempty"`
	MimeType    string      `json:"mime_type"`
}

// Table is a detected table region; Rows[r][c] holds cell text.
type Table struct {
	Rows [][]string `json:"rows"`
}

// PageContent is one normalized page.
type PageContent struct {
	PageNumber int      `json:"page_number"`
	TextBlocks []string `json:"text_blocks"`
	Tables     []Table  `json:"tables"`
}

// NormalizationMetadata describes how a document was normalized.
type NormalizationMetadata struct {
	Provider         Provider `json:"provider"`
	TotalPages       int      `json:"total_pages"`
	ProcessingTimeMs int64    `json:"processing_time_ms"`
	ConfidenceScore  float64  `json:"confidence_score"`
}

// NormalizedDocument is the provider-independent form every adapter returns.
type NormalizedDocument struct {
	Pages    []PageContent         `json:"pages"`
	Metadata NormalizationMetadata `json:"metadata"`
}

// ChildChunk is a child before embedding.
type ChildChunk struct {
	Content     string
	TokenCount  int
	ContentHash string
}

// DocumentChunk is a parent chunk and its children before embedding.
type DocumentChunk struct {
	Content     string
	TokenCount  int
	PageNumber  int
	PageIndex   int // position of the chunk among those starting on PageNumber
	IsTable     bool
	ContentHash string
	Children    []ChildChunk
}

// VectorizedChild is a child with its full and short vectors.
type VectorizedChild struct {
	ChildChunk
	Embedding      []float32
	EmbeddingShort []float32
}

// VectorizedChunk is a parent chunk after embedding. Embedding is nil for hierarchical parents.
type VectorizedChunk struct {
	DocumentChunk
	Embedding []float32
	Children  []VectorizedChild
}

// DocumentIndex is everything one successful run writes for a document.
type DocumentIndex struct {
	Document   Document
	Job        IngestJob
	Root       OutlineNode
	Parents    []ContextChunk
	Children   []RetrievalChunk
	Metadata   DocumentIndexMetadata
	OCRDetails NormalizationMetadata
}
