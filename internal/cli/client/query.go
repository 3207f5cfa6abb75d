package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/domain"
)

// QueryRequest represents the query API request.
type QueryRequest struct {
	Query          string `json:"query"`
	UserID         string `json:"user_id,omitempty"`
	ChannelID      string `json:"channel_id,omitempty"`
	IncludeSources bool   `json:"include_sources"`
}

// QueryCmd creates the query command.
func QueryCmd() *cobra.Command {
	var (
		userID    string
		channelID string
		noSources bool
	)

	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Ask the documentation a question",
		Long: `Asks devdocd a question. Answers are grounded in the indexed documentation.
Give --user (or set user_id with 'devdoc init') to keep a conversation going.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, strings.Join(args, " "), userID, channelID, !noSources)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID for conversation memory")
	cmd.Flags().StringVar(&channelID, "channel", "", "Channel ID recorded with the query")
	cmd.Flags().BoolVar(&noSources, "no-sources", false, "Do not list source documents")

	return cmd
}

func runQuery(cmd *cobra.Command, question, userID, channelID string, includeSources bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	if userID == "" {
		if globalConfig, err := LoadGlobalConfig(); err == nil && globalConfig != nil {
			userID = globalConfig.UserID
		}
	}

	resp, err := api.Post(cmd.Context(), "/query", QueryRequest{
		Query:          question,
		UserID:         userID,
		ChannelID:      channelID,
		IncludeSources: includeSources,
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	var result domain.QueryResult
	if err := decodeData(resp, &result); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputJSON(cmd) {
		return printJSON(out, result)
	}

	fmt.Fprintln(out, result.Answer)
	if len(result.Sources) > 0 {
		fmt.Fprintln(out)
		headingColor.Fprintln(out, "Sources:")
		for i, src := range result.Sources {
			sourceColor.Fprintf(out, "%d. %s", i+1, src.Source)
			faintColor.Fprintf(out, " (%.2f)\n", src.Score)
		}
	}
	faintColor.Fprintf(out, "\nAnswered in %s\n", result.ProcessingTime.Round(time.Millisecond))
	return nil
}
