package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/api/handlers"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/app"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/config"
	db "github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core/database"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core/retrieval"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/models"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/services"
)

var rootCmd = &cobra.Command{
	Use:           "pdr",
	Short:         "Document ingestion and hybrid retrieval service",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

// --- serve ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the ingestion workers",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.LoadConfig()
	log := newLogger(os.Stdout, cfg.LogLevel, true)
	ctx := cmd.Context()

	a, err := app.NewApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	workersCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	a.Ingestor.Start(workersCtx, cfg.Workers)

	var uploader handlers.Uploader
	if a.Documents != nil {
		uploader = a.Documents
	}
	srv := app.NewServer(cfg, a.Ingest, uploader, a.Search, a.DBClient, log)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}
	// Runs already in progress finish; queued jobs stay queued in the database.
	stopWorkers()
	a.Ingestor.Wait()
	log.Info("shutdown complete")
	return nil
}

// --- migrate ---

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema if it is missing",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.LoadConfig()
		log := newLogger(os.Stderr, cfg.LogLevel, false)
		client, err := db.NewDatabaseClient(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer client.Close()
		log.Info("schema is up to date")
		return nil
	},
}

// --- reconcile ---

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Remove index rows of documents whose every ingestion job failed",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.LoadConfig()
		log := newLogger(os.Stderr, cfg.LogLevel, false)
		client, err := db.NewDatabaseClient(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer client.Close()

		n, err := client.Reconcile(cmd.Context())
		if err != nil {
			return err
		}
		log.Info("reconcile finished", "documents_cleaned", n)
		return nil
	},
}

// --- ingest ---

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest one document inline and print the job outcome",
	Long: `Ingest one document inline and print the job outcome.

Examples:
  pdr ingest --url s3://pdr-documents/acme/lease.pdf --name lease.pdf --company acme --user u-1
  pdr ingest --url file:///tmp/scan.png --name scan.png --company acme --user u-1 --force-ocr --provider gemini`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		req, err := ingestRequestFromFlags(cmd)
		if err != nil {
			return err
		}

		cfg := config.LoadConfig()
		a, err := app.NewApp(cmd.Context(), cfg, newLogger(os.Stderr, cfg.LogLevel, false))
		if err != nil {
			return err
		}
		defer a.Close()

		sub, err := a.Ingest.Submit(cmd.Context(), req, true)
		if err != nil {
			return err
		}
		job, err := a.Ingest.Status(cmd.Context(), sub.JobID)
		if err != nil {
			return err
		}
		if err := printJSON(cmd, job); err != nil {
			return err
		}
		if job.Status == models.JobFailed {
			return fmt.Errorf("ingest failed: %s", job.ErrorMessage)
		}
		return nil
	},
}

func ingestRequestFromFlags(cmd *cobra.Command) (services.IngestRequest, error) {
	url, _ := cmd.Flags().GetString("url")
	name, _ := cmd.Flags().GetString("name")
	company, _ := cmd.Flags().GetString("company")
	user, _ := cmd.Flags().GetString("user")
	mimeType, _ := cmd.Flags().GetString("mime-type")
	category, _ := cmd.Flags().GetString("category")
	forceOCR, _ := cmd.Flags().GetBool("force-ocr")
	provider, _ := cmd.Flags().GetString("provider")

	if url == "" || company == "" || user == "" {
		return services.IngestRequest{}, errors.New("--url, --company and --user are required")
	}
	if name == "" {
		name = url[strings.LastIndex(url, "/")+1:]
	}
	return services.IngestRequest{
		DocumentURL:  url,
		DocumentName: name,
		CompanyID:    company,
		UserID:       user,
		MimeType:     mimeType,
		Category:     category,
		Options:      models.RouteOptions{ForceOCR: forceOCR, PreferredProvider: models.Provider(provider)},
	}, nil
}

// --- search ---

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run a hybrid query and print the ranked chunks",
	Long: `Run a hybrid query and print the ranked chunks.

Examples:
  pdr search --query "termination clause" --scope company --id acme
  pdr search --query "revenue by region" --scope multi_document --id doc-1 --id doc-2 --top-k 10`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		req, err := searchRequestFromFlags(cmd)
		if err != nil {
			return err
		}

		cfg := config.LoadConfig()
		a, err := app.NewApp(cmd.Context(), cfg, newLogger(os.Stderr, cfg.LogLevel, false))
		if err != nil {
			return err
		}
		defer a.Close()

		results, err := a.Search.Search(cmd.Context(), req)
		if err != nil {
			return err
		}
		return printJSON(cmd, results)
	},
}

func searchRequestFromFlags(cmd *cobra.Command) (retrieval.SearchRequest, error) {
	query, _ := cmd.Flags().GetString("query")
	scope, _ := cmd.Flags().GetString("scope")
	ids, _ := cmd.Flags().GetStringSlice("id")
	company, _ := cmd.Flags().GetString("company")
	topK, _ := cmd.Flags().GetInt("top-k")

	req := retrieval.SearchRequest{Query: query, TopK: topK}
	if len(ids) == 0 {
		return req, errors.New("at least one --id is required")
	}
	switch models.Scope(scope) {
	case models.ScopeDocument:
		req.Scope = models.ScopeSpec{Scope: models.ScopeDocument, DocumentID: ids[0], CompanyID: company}
	case models.ScopeCompany:
		req.Scope = models.ScopeSpec{Scope: models.ScopeCompany, CompanyID: ids[0]}
	case models.ScopeMultiDocument:
		req.Scope = models.ScopeSpec{Scope: models.ScopeMultiDocument, DocumentIDs: ids, CompanyID: company}
	default:
		return req, fmt.Errorf("--scope must be document, company or multi_document, got %q", scope)
	}
	return req, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	ingestCmd.Flags().String("url", "", "document URL (s3://, https:// or file://)")
	ingestCmd.Flags().String("name", "", "document title (defaults to the last URL segment)")
	ingestCmd.Flags().String("company", "", "owning company id")
	ingestCmd.Flags().String("user", "", "submitting user id")
	ingestCmd.Flags().String("mime-type", "", "declared MIME type")
	ingestCmd.Flags().String("category", "", "document category")
	ingestCmd.Flags().Bool("force-ocr", false, "send PDFs to OCR even when they have a text layer")
	ingestCmd.Flags().String("provider", "", "preferred OCR provider (azure, gemini, tesseract)")

	searchCmd.Flags().String("query", "", "query text")
	searchCmd.Flags().String("scope", "company", "document, company or multi_document")
	searchCmd.Flags().StringSlice("id", nil, "scope id; repeat for multi_document")
	searchCmd.Flags().String("company", "", "tenant to restrict document scopes to")
	searchCmd.Flags().Int("top-k", 0, "number of results (default from config)")

	rootCmd.AddCommand(serveCmd, migrateCmd, reconcileCmd, ingestCmd, searchCmd)
}
