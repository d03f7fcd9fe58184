package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ormasoftchile/playctl/pkg/commands"
	"github.com/ormasoftchile/playctl/pkg/config"
	"github.com/ormasoftchile/playctl/pkg/report"
	"github.com/ormasoftchile/playctl/pkg/runlog"
	"github.com/ormasoftchile/playctl/pkg/selector"
)

// Version is set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var (
	flagVerbose     bool
	flagPlaybookDir string
	flagInventory   string
	flagEngine      string
	flagConfig      string
	flagLogFile     string
)

// svc is built by the root PersistentPreRunE and shared by every subcommand.
var svc *commands.Service

var rootCmd = &cobra.Command{
	Use:   "playctl",
	Short: "Enumerate, inspect and run a directory of playbooks",
	Long: `playctl indexes the playbooks in a directory, lets you refer to them by
file name, ordinal or ordinal range, and runs them with an external engine
(ansible-playbook by default).`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if svc != nil {
			svc.Logger.Close()
		}
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.BoolVarP(&flagVerbose, "verbose", "v", false, "Show declared names, raw contents and live engine output")
	f.StringVar(&flagPlaybookDir, "playbook-dir", "playbooks/", "Directory holding the playbooks (env "+config.EnvPlaybookDir+")")
	f.StringVar(&flagInventory, "inventory", "inventory.yaml", "Inventory passed to the engine with -i (env "+config.EnvInventory+")")
	f.StringVar(&flagEngine, "engine", "ansible-playbook", "Engine binary (env "+config.EnvEngine+")")
	f.StringVar(&flagConfig, "config", "", "TOML config file (default "+config.DefaultFile+" when present)")
	f.StringVar(&flagLogFile, "log-file", "", "Write a rotating diagnostic log to this file (env "+config.EnvLogFile+")")

	rootCmd.AddCommand(versionCmd)
}

// setup layers defaults, the config file, the environment and explicitly set
// flags, in that order, and builds the shared service.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, os.LookupEnv)
	if err != nil {
		return err
	}
	logger, err := runlog.New(cfg.LogFile)
	if err != nil {
		return err
	}
	logger.Printf("%s: playbook_dir=%s inventory=%s engine=%s verbose=%v",
		cmd.Name(), cfg.PlaybookDir, cfg.Inventory, cfg.Engine, cfg.Verbose)

	tty := isTerminal(os.Stdout)
	svc = &commands.Service{
		Config:  cfg,
		Env:     selector.ProcessEnv{},
		Logger:  logger,
		Stdout:  cmd.OutOrStdout(),
		Options: report.Options{Color: tty, Render: tty},
	}
	return nil
}

func loadConfig(cmd *cobra.Command, lookup func(string) (string, bool)) (config.Config, error) {
	cfg, err := config.Load(flagConfig, lookup)
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("playbook-dir") {
		cfg.PlaybookDir = flagPlaybookDir
	}
	if flags.Changed("inventory") {
		cfg.Inventory = flagInventory
	}
	if flags.Changed("engine") {
		cfg.Engine = flagEngine
	}
	if flags.Changed("verbose") {
		cfg.Verbose = flagVerbose
	}
	if flags.Changed("log-file") {
		cfg.LogFile = flagLogFile
	}
	return cfg, nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// --- version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// No settings are needed to print the version.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "playctl %s (build: %s)\n", version, commit)
	},
}
