package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/cli"
	"github.com/aditya-singh004/Dev-Doc-AI/internal/cli/daemon"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "devdocd",
		Short: "Dev-Doc-AI daemon",
		Long: `devdocd serves the documentation assistant API and maintains its index.

Configuration is read from DEVDOC_* environment variables and a .env file.`,
		Version: version,
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(daemon.ServeCmd(version))
	rootCmd.AddCommand(daemon.IngestCmd())
	rootCmd.AddCommand(daemon.IndexCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if cli.HandleHelpJSON(rootCmd, os.Args[1:], os.Stdout) {
		return
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
