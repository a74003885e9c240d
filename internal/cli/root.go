// Package cli wires the application together and exposes the command
// tree.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AisKreme/brot-backer/internal/clock"
	"github.com/AisKreme/brot-backer/internal/config"
	"github.com/AisKreme/brot-backer/internal/display"
	"github.com/AisKreme/brot-backer/internal/domain"
	"github.com/AisKreme/brot-backer/internal/engine"
	"github.com/AisKreme/brot-backer/internal/logger"
	"github.com/AisKreme/brot-backer/internal/prompt"
	"github.com/AisKreme/brot-backer/internal/settlement"
	"github.com/AisKreme/brot-backer/internal/storage"
	"github.com/AisKreme/brot-backer/internal/tracker"
)

var (
	flagConfig  string
	flagDataDir string
	flagVerbose bool
)

// app bundles the wired components behind the commands. Input and
// output are held as the domain ports so command flows are testable
// with scripted fakes.
type app struct {
	cfg        config.Config
	log        *logger.Logger
	engine     *engine.Engine
	tracker    *tracker.Tracker
	settlement *settlement.Service
	flours     domain.FlourStore
	console    domain.Notifier
	input      domain.OperatorInput
	closeLog   func()
}

// configPath resolves the config file location: the --config flag
// wins, then BROTBACKER_CONFIG (settable via .env), then the default.
func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	if env := os.Getenv("BROTBACKER_CONFIG"); env != "" {
		return env
	}
	return config.DefaultPath
}

// dataDirOverride resolves the data directory override: the
// --data-dir flag wins, then BROTBACKER_DATA_DIR. Empty means no
// override.
func dataDirOverride() string {
	if flagDataDir != "" {
		return flagDataDir
	}
	return os.Getenv("BROTBACKER_DATA_DIR")
}

// newApp loads the config and builds the component graph.
func newApp() (*app, error) {
	cfg, err := config.Load(configPath())
	if err != nil {
		return nil, err
	}
	if dir := dataDirOverride(); dir != "" {
		cfg.DataDir = dir
	}

	level := logger.LevelNormal
	if flagVerbose {
		level = logger.LevelVerbose
	}

	log, closeLog, err := openLogger(cfg.LogFile, level)
	if err != nil {
		return nil, err
	}

	clk := clock.NewSystem()
	console := display.NewConsole(os.Stdout)
	input := prompt.NewTerminal(os.Stdin, os.Stdout)

	recipes := storage.NewRecipeFile(cfg.RecipesPath(), clk, log)
	processes := storage.NewProcessFile(cfg.ProcessesPath(), clk, log)
	flours := storage.NewFlourFile(cfg.FloursPath(), clk, log)

	eng := engine.New(recipes, processes, clk, log,
		engine.WithDefaultScale(cfg.DefaultScaleFactor))
	trk := tracker.New(clk, input, console, console, log,
		tracker.WithPollInterval(cfg.PollInterval()))
	stl := settlement.New(flours, clk, input, console, log)

	return &app{
		cfg:        cfg,
		log:        log,
		engine:     eng,
		tracker:    trk,
		settlement: stl,
		flours:     flours,
		console:    console,
		input:      input,
		closeLog:   closeLog,
	}, nil
}

// openLogger sets up file logging; "stderr" keeps logs on the console.
func openLogger(dest string, level logger.Level) (*logger.Logger, func(), error) {
	if dest == "" || dest == "stderr" {
		return logger.New(level, os.Stderr), func() {}, nil
	}
	if dir := filepath.Dir(dest); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating log dir: %w", err)
		}
	}
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return logger.New(level, f), func() { f.Close() }, nil
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "brotbacker",
		Short:         "Guided bread baking: plan, track, and settle baking runs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default "+config.DefaultPath+", env BROTBACKER_CONFIG)")
	root.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "override the data directory (env BROTBACKER_DATA_DIR)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")

	root.AddCommand(newBakeCmd())
	root.AddCommand(newInventoryCmd())
	root.AddCommand(newInitCmd())

	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Fehler:", err)
		return 1
	}
	return 0
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath()
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Konfiguration:", path)
			return nil
		},
	}
}
