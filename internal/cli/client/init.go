package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// InitCmd creates the init command, which stores CLI defaults.
func InitCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Save the server URL and user ID for later commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, userID)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "Default user ID for conversation memory")

	return cmd
}

func runInit(cmd *cobra.Command, userID string) error {
	globalConfig, err := LoadGlobalConfig()
	if err != nil {
		return err
	}
	if globalConfig == nil {
		globalConfig = &GlobalConfig{}
	}

	if serverURL, _ := cmd.Flags().GetString("server"); serverURL != "" {
		globalConfig.ServerURL = serverURL
	}
	if userID != "" {
		globalConfig.UserID = userID
	}

	// Check the server answers before saving it.
	api := NewAPIClientWithConfig(orDefault(globalConfig.ServerURL, defaultServerURL))
	if _, err := api.Get(cmd.Context(), "/health"); err != nil {
		warnColor.Fprintf(cmd.OutOrStdout(), "warning: server not reachable: %v\n", err)
	}

	if err := SaveGlobalConfig(globalConfig); err != nil {
		return err
	}

	path, _ := GetConfigPath()
	fmt.Fprintf(cmd.OutOrStdout(), "Saved configuration to %s\n", path)
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
