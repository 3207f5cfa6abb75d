package daemon

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/config"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/index"
)

func IndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Inspect the vector index",
	}

	cmd.AddCommand(IndexInspectCmd())

	return cmd
}

func IndexInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the header of the stored index snapshot",
		RunE:  runIndexInspect,
	}

	cmd.Flags().String("index-path", "", "Snapshot file (default DEVDOC_INDEX_PATH)")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

type inspectOutput struct {
	Location string `json:"location"`
	*index.Header
}

func runIndexInspect(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	outputFormat, _ := cmd.Flags().GetString("output")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.IndexBackend != config.IndexBackendMemory {
		return fmt.Errorf("index inspect reads snapshots of the memory backend, INDEX_BACKEND is %q", cfg.IndexBackend)
	}

	store, err := NewSnapshotStore(ctx, cfg)
	if err != nil {
		return err
	}
	rc, err := store.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to open snapshot at %s: %w", store.Location(), err)
	}
	defer rc.Close()

	header, err := index.ReadHeader(rc)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		jsonBytes, err := json.MarshalIndent(inspectOutput{Location: store.Location(), Header: header}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(jsonBytes))
		return nil
	}

	fmt.Fprintf(out, "Snapshot:   %s\n", store.Location())
	fmt.Fprintf(out, "Format:     %s v%d\n", header.Format, header.Version)
	fmt.Fprintf(out, "Metric:     %s\n", header.Metric)
	fmt.Fprintf(out, "Dimensions: %d\n", header.Dimensions)
	fmt.Fprintf(out, "Chunks:     %d\n", header.Count)
	return nil
}
