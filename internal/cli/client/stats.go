package client

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/domain"
)

// StatsCmd creates the stats command.
func StatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show index, provider and memory statistics",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}
}

func runStats(cmd *cobra.Command, args []string) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get(cmd.Context(), "/stats")
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	var stats domain.Stats
	if err := decodeData(resp, &stats); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputJSON(cmd) {
		return printJSON(out, stats)
	}

	headingColor.Fprintln(out, "Index")
	fmt.Fprintf(out, "  Documents:  %d\n", stats.IndexedDocuments)
	fmt.Fprintf(out, "  Chunks:     %d\n", stats.IndexedChunks)
	fmt.Fprintf(out, "  Dimensions: %d\n", stats.Dimensions)
	headingColor.Fprintln(out, "Providers")
	fmt.Fprintf(out, "  Embeddings: %s\n", stats.EmbeddingProvider)
	fmt.Fprintf(out, "  LLM:        %s\n", stats.LLMProvider)
	headingColor.Fprintln(out, "Memory")
	if stats.MemoryEnabled {
		fmt.Fprintf(out, "  Active conversations: %d (max history %d)\n", stats.ActiveConversations, stats.MaxHistory)
	} else {
		warnColor.Fprintln(out, "  disabled")
	}

	if len(stats.Telemetry) > 0 {
		headingColor.Fprintln(out, "Counters")
		names := make([]string, 0, len(stats.Telemetry))
		for name := range stats.Telemetry {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "  %-24s %d\n", name, stats.Telemetry[name])
		}
	}
	return nil
}
