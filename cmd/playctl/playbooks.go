package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/playctl/pkg/commands"
	"github.com/ormasoftchile/playctl/pkg/picker"
)

// --- list ---

var (
	listWhere string
	listJSON  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List playbooks with their ordinals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := svc.List(listWhere, listJSON)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

// --- describe ---

var describeJSON bool

var describeCmd = &cobra.Command{
	Use:   "describe TOKEN...",
	Short: "Show each playbook's declared name and templated variables",
	Long: `Show each playbook's declared name and the variables its first play
references as "{{ name }}" templates. With --verbose, print the raw file.

A TOKEN is a file name, an ordinal (2) or an inclusive range (2-4).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := svc.Describe(args, describeJSON)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

// --- run ---

var (
	runDryRun bool
	runPick   bool
	runJSON   bool
)

var runCmd = &cobra.Command{
	Use:   "run TOKEN...",
	Short: "Run playbooks with the engine",
	Long: `Run the selected playbooks one at a time in ordinal order. A playbook that
exits non-zero is reported as Failed and the rest still run.

A file-name TOKEN may carry extra variables: deploy.yaml,REGION=eu,TIER=web.
A variable named after the file (e.g. "deploy.yaml=REGION=us") in the
environment adds more; values given on the command line win.`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		if !runPick {
			return errors.New("no playbooks selected (pass TOKENs or use --pick)")
		}
		picked, err := pick()
		if err != nil {
			return err
		}
		args = picked
	}

	out, err := svc.Run(cmd.Context(), args, commands.RunOptions{DryRun: runDryRun, JSON: runJSON})
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func pick() ([]string, error) {
	if !isTerminal(os.Stdin) {
		return nil, errors.New("--pick needs an interactive terminal")
	}
	items, err := svc.ListItems("")
	if err != nil {
		return nil, err
	}
	return picker.Pick(items, os.Stdin, os.Stderr)
}

func init() {
	listCmd.Flags().StringVar(&listWhere, "where", "", `Filter expression, e.g. 'len(vars) > 0 && file startsWith "deploy"'`)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")

	describeCmd.Flags().BoolVar(&describeJSON, "json", false, "Output as JSON")

	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Print the engine commands without running them")
	runCmd.Flags().BoolVar(&runPick, "pick", false, "Choose playbooks interactively when no TOKEN is given")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Output results as structured JSON")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(runCmd)
}
