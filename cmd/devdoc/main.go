package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/cli"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/cli/client"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "devdoc",
		Short: "Dev-Doc-AI CLI - ask your documentation questions",
		Long: `devdoc talks to a running devdocd server.

Environment variables:
  DEVDOC_API_URL   Server base URL (default: http://localhost:8080)`,
		Version:      version,
		SilenceUsage: true,
	}

	client.AddGlobalFlags(rootCmd)
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.InitCmd())
	rootCmd.AddCommand(client.QueryCmd())
	rootCmd.AddCommand(client.MemoryCmd())
	rootCmd.AddCommand(client.StatsCmd())
	rootCmd.AddCommand(client.IngestCmd())

	if cli.HandleHelpJSON(rootCmd, os.Args[1:], os.Stdout) {
		return
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
