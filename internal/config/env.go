package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Vector widths of the embedding columns in scripts/initdb.sql.
const (
	SchemaFullDim  = 1536
	SchemaShortDim = 512
)

type Config struct {
	DatabaseURL  string
	SslCertPath  string
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string
	Port         string
	LogLevel     string
	JWTSecret    string
	CORSOrigins  []string

	AIAPIKey      string
	EmbedProvider string // gemini | sidecar
	EmbedModel    string
	VisionModel   string
	SidecarURL    string
	RerankEnabled bool

	AzureEndpoint     string
	AzureKey          string
	AzurePollInterval time.Duration
	AzureTimeout      time.Duration

	Workers      int
	QueueSize    int
	PdftoppmBin  string
	TesseractBin string

	// Chunking.
	ParentTokens      int
	ChildTokens       int
	ChildOverlap      int
	IncludePageHeader bool
	ChunkStrategy     string

	// Embedding.
	EmbedBatchSize   int
	EmbedConcurrency int
	EmbedRPS         float64
	FullDim          int
	ShortDim         int

	// Routing and enrichment.
	NativeMinCharsPerPage int
	EnrichEnabled         bool
	EnrichMaxPages        int
	EnrichThreshold       float64

	// Retrieval.
	CandidateMultiplier int
	BM25Weight          float64
	VectorWeight        float64
	MinSimilarity       float64
	DefaultTopK         int
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		SslCertPath:  getEnv("SSL_CERT_PATH", ""),
		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", "pdr-documents"),
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		CORSOrigins:  getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),

		AIAPIKey:      getEnv("GEMINI_API_KEY", ""),
		EmbedProvider: getEnv("EMBED_PROVIDER", "gemini"),
		EmbedModel:    getEnv("EMBED_MODEL", "gemini-embedding-001"),
		VisionModel:   getEnv("VISION_MODEL", "gemini-2.0-flash"),
		SidecarURL:    getEnv("SIDECAR_URL", ""),
		RerankEnabled: getEnvBool("RERANK_ENABLED", false),

		AzureEndpoint:     getEnv("AZURE_DI_ENDPOINT", ""),
		AzureKey:          getEnv("AZURE_DI_KEY", ""),
		AzurePollInterval: getEnvDuration("AZURE_DI_POLL_INTERVAL", 2*time.Second),
		AzureTimeout:      getEnvDuration("AZURE_DI_TIMEOUT", 3*time.Minute),

		Workers:      getEnvInt("INGEST_WORKERS", 4),
		QueueSize:    getEnvInt("INGEST_QUEUE_SIZE", 64),
		PdftoppmBin:  getEnv("PDFTOPPM_BIN", "pdftoppm"),
		TesseractBin: getEnv("TESSERACT_BIN", "tesseract"),

		ParentTokens:      getEnvInt("PARENT_TOKENS", 1000),
		ChildTokens:       getEnvInt("CHILD_TOKENS", 256),
		ChildOverlap:      getEnvInt("CHILD_OVERLAP_TOKENS", 50),
		IncludePageHeader: getEnvBool("CHUNK_PAGE_HEADER", false),
		ChunkStrategy:     getEnv("CHUNK_STRATEGY", "hierarchical"),

		EmbedBatchSize:   getEnvInt("EMBED_BATCH_SIZE", 20),
		EmbedConcurrency: getEnvInt("EMBED_CONCURRENCY", 3),
		EmbedRPS:         getEnvFloat("EMBED_RPS", 5),
		FullDim:          getEnvInt("EMBED_DIM", SchemaFullDim),
		ShortDim:         getEnvInt("EMBED_SHORT_DIM", SchemaShortDim),

		NativeMinCharsPerPage: getEnvInt("NATIVE_MIN_CHARS_PER_PAGE", 100),
		EnrichEnabled:         getEnvBool("ENRICH_ENABLED", true),
		EnrichMaxPages:        getEnvInt("ENRICH_MAX_PAGES", 5),
		EnrichThreshold:       getEnvFloat("ENRICH_CONFIDENCE_THRESHOLD", 0.7),

		CandidateMultiplier: getEnvInt("ANN_CANDIDATE_MULTIPLIER", 5),
		BM25Weight:          getEnvFloat("FUSION_BM25_WEIGHT", 0.3),
		VectorWeight:        getEnvFloat("FUSION_VECTOR_WEIGHT", 0.7),
		MinSimilarity:       getEnvFloat("MIN_SIMILARITY", 0),
		DefaultTopK:         getEnvInt("DEFAULT_TOP_K", 5),
	}
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL not set"))
	}
	if c.FullDim != SchemaFullDim {
		errs = append(errs, fmt.Errorf("EMBED_DIM must be %d to match the schema, got %d", SchemaFullDim, c.FullDim))
	}
	if c.ShortDim != SchemaShortDim {
		errs = append(errs, fmt.Errorf("EMBED_SHORT_DIM must be %d to match the schema, got %d", SchemaShortDim, c.ShortDim))
	}
	if c.ChildOverlap >= c.ChildTokens {
		errs = append(errs, fmt.Errorf("CHILD_OVERLAP_TOKENS (%d) must be smaller than CHILD_TOKENS (%d)", c.ChildOverlap, c.ChildTokens))
	}
	if c.ChildTokens > c.ParentTokens {
		errs = append(errs, fmt.Errorf("CHILD_TOKENS (%d) must not exceed PARENT_TOKENS (%d)", c.ChildTokens, c.ParentTokens))
	}
	if d := c.BM25Weight + c.VectorWeight - 1; d > 1e-6 || d < -1e-6 {
		errs = append(errs, fmt.Errorf("fusion weights must sum to 1.0, got %.4f", c.BM25Weight+c.VectorWeight))
	}
	if c.EmbedProvider == "sidecar" && c.SidecarURL == "" {
		errs = append(errs, errors.New("EMBED_PROVIDER=sidecar requires SIDECAR_URL"))
	}
	return errors.Join(errs...)
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("env value is not an int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("env value is not a number, using default", "key", key, "value", v, "default", def)
		return def
	}
	return f
}

func getEnvBool(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("env value is not a bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("env value is not a duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func getEnvList(key string, def []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
