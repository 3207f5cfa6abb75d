package daemon

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/domain"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/service"
)

// IngestCmd returns the ingest command
func IngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Index a documentation directory",
		Long: `Load every supported file (.pdf .md .txt .html .rst .json) under the
documentation directory, embed it and persist the index.`,
		RunE: runIngest,
	}

	cmd.Flags().String("docs", "", "Documentation directory (default DEVDOC_DOCS_DIRECTORY)")
	cmd.Flags().Int("chunk-size", service.DefaultChunkConfig().Size, "Chunk size in characters")
	cmd.Flags().Int("chunk-overlap", service.DefaultChunkConfig().Overlap, "Overlap between chunks in characters")
	cmd.Flags().String("index-path", "", "Snapshot file (default DEVDOC_INDEX_PATH)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	outputFormat, _ := cmd.Flags().GetString("output")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	app, err := Build(ctx, cfg, BuildOptions{SkipMigrations: noMigrate})
	if err != nil {
		return err
	}
	defer app.Close()

	report, err := app.Ingest.IngestPaths(ctx, []string{cfg.DocsDirectory}, app.Ingest.ChunkConfig())
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	if app.Snapshot != nil && report.ChunksCreated > 0 {
		if _, err := app.Snapshot.Save(ctx, true); err != nil {
			return fmt.Errorf("failed to save index: %w", err)
		}
	}

	if err := printReport(cmd, outputFormat, report); err != nil {
		return err
	}
	if report.DocumentsProcessed == 0 && report.DocumentsFailed > 0 {
		return fmt.Errorf("no documents could be ingested from %s", cfg.DocsDirectory)
	}
	return nil
}

func printReport(cmd *cobra.Command, outputFormat string, report *domain.IngestionReport) error {
	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		jsonBytes, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(jsonBytes))
		return nil
	}

	fmt.Fprintf(out, "Documents processed: %d\n", report.DocumentsProcessed)
	fmt.Fprintf(out, "Documents failed:    %d\n", report.DocumentsFailed)
	fmt.Fprintf(out, "Chunks created:      %d\n", report.ChunksCreated)
	fmt.Fprintf(out, "Chunks failed:       %d\n", report.ChunksFailed)
	for _, e := range report.Errors {
		fmt.Fprintf(out, "  error: %s\n", e)
	}
	return nil
}
