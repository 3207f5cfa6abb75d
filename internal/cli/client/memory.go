package client

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

// MemoryCmd creates the memory command group.
func MemoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Manage conversation memory",
	}

	cmd.AddCommand(MemoryClearCmd())

	return cmd
}

// MemoryClearCmd creates the memory clear command.
func MemoryClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <user-id>",
		Short: "Forget a user's conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMemoryClear(cmd, args[0])
		},
	}
}

type clearMemoryResponse struct {
	Status string `json:"status"`
	UserID string `json:"user_id"`
}

func runMemoryClear(cmd *cobra.Command, userID string) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Delete(cmd.Context(), "/memory/"+url.PathEscape(userID))
	if err != nil {
		return fmt.Errorf("failed to clear memory: %w", err)
	}

	var result clearMemoryResponse
	if err := decodeData(resp, &result); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputJSON(cmd) {
		return printJSON(out, result)
	}
	sourceColor.Fprintf(out, "Conversation memory cleared for %s\n", result.UserID)
	return nil
}
