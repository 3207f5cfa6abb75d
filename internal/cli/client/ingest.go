package client

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/domain"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/reader"
)

// IngestDocument is one document sent inline to the server.
type IngestDocument struct {
	Source string `json:"source"`
	Text   string `json:"text"`
	Format string `json:"format,omitempty"`
}

// IngestRequest represents the ingest API request.
type IngestRequest struct {
	Documents    []IngestDocument `json:"documents,omitempty"`
	Reload       bool             `json:"reload,omitempty"`
	ChunkSize    int              `json:"chunk_size,omitempty"`
	ChunkOverlap *int             `json:"chunk_overlap,omitempty"`
}

// IngestCmd creates the ingest command.
func IngestCmd() *cobra.Command {
	var (
		reload       bool
		chunkSize    int
		chunkOverlap int
	)

	cmd := &cobra.Command{
		Use:   "ingest [path...]",
		Short: "Add documentation to the index",
		Long: `Reads local files or directories (.pdf .md .txt .html .rst .json) and sends
their text to devdocd for indexing. With --reload the server re-ingests its own
documentation directory instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !reload {
				return fmt.Errorf("give at least one path or --reload")
			}
			req := IngestRequest{Reload: reload, ChunkSize: chunkSize}
			if cmd.Flags().Changed("chunk-overlap") {
				req.ChunkOverlap = &chunkOverlap
			}
			return runIngest(cmd, args, req)
		},
	}

	cmd.Flags().BoolVar(&reload, "reload", false, "Re-ingest the server's documentation directory")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Chunk size in characters (server default when 0)")
	cmd.Flags().IntVar(&chunkOverlap, "chunk-overlap", 0, "Overlap between chunks in characters")

	return cmd
}

func runIngest(cmd *cobra.Command, paths []string, req IngestRequest) error {
	loader := reader.NewLoader()
	for _, p := range paths {
		docs, err := loader.Load(cmd.Context(), p)
		if err != nil {
			return err
		}
		for _, d := range docs {
			req.Documents = append(req.Documents, IngestDocument{
				Source: d.Source,
				Text:   d.Text,
				Format: string(d.Format),
			})
		}
	}
	if len(paths) > 0 && len(req.Documents) == 0 && !req.Reload {
		return fmt.Errorf("no supported documents found")
	}

	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post(cmd.Context(), "/ingest", req)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	var report domain.IngestionReport
	if err := decodeData(resp, &report); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputJSON(cmd) {
		return printJSON(out, report)
	}

	sourceColor.Fprintf(out, "Indexed %d documents (%d chunks)\n", report.DocumentsProcessed, report.ChunksCreated)
	if report.DocumentsFailed > 0 || report.ChunksFailed > 0 {
		warnColor.Fprintf(out, "%d documents and %d chunks failed\n", report.DocumentsFailed, report.ChunksFailed)
	}
	for _, e := range report.Errors {
		warnColor.Fprintf(out, "  %s\n", e)
	}
	return nil
}
