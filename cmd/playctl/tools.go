package main

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	pmcp "github.com/ormasoftchile/playctl/pkg/mcp"
	"github.com/ormasoftchile/playctl/pkg/report"
	"github.com/ormasoftchile/playctl/pkg/shell"
)

// --- shell ---

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive prompt for list, describe and run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return shell.New(svc, cmd.OutOrStdout()).Run(cmd.Context())
	},
}

// --- mcp ---

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve playctl tools over MCP on stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries the protocol.
		svc.Options = report.Options{}
		svc.Logger.Printf("mcp: serving on stdio")
		return server.ServeStdio(pmcp.NewServer(version, svc))
	},
}

// --- schema ---

var schemaCmd = &cobra.Command{
	Use:       "schema KIND",
	Short:     "Print the JSON Schema of a --json report (" + strings.Join(report.SchemaKinds, ", ") + ")",
	Args:      cobra.ExactArgs(1),
	ValidArgs: report.SchemaKinds,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := report.Schema(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(schemaCmd)
}
