package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"aigov/internal/config"
	"aigov/internal/logging"
	"aigov/internal/model"
	"aigov/internal/scoring"
	"aigov/internal/store"
	"aigov/internal/version"
)

var (
	// rootFlag is the workspace root holding .aigov/ and the reports tree.
	rootFlag string

	// formatFlag selects the command output format.
	formatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "aigov",
	Short: "aigov - AI governance registry",
	Long: `aigov maintains an inventory of AI systems, computes deterministic risk
tiers, tracks lifecycle risks, and produces hash-verifiable evidence packages
for audit and compliance review.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("aigov version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", ".", "Workspace root directory")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "json", "Output format (json, human)")
}

// mustLoadConfig loads the application config or exits.
func mustLoadConfig() *config.Config {
	cfg, err := config.LoadConfig(rootFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// newLogger builds the command logger from the app config, stderr only.
func newLogger(cfg *config.Config) *logging.Logger {
	return logging.New(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  logging.Level(cfg.Logging.Level),
	})
}

// mustOpenStore opens the registry database or exits.
func mustOpenStore(cfg *config.Config, logger *logging.Logger) *store.SQLite {
	st, err := store.Open(resolvePath(cfg.DataDir), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening registry: %v\n", err)
		os.Exit(1)
	}
	return st
}

// mustLoadScoring loads the scoring configuration or exits.
func mustLoadScoring(cfg *config.Config) scoring.Config {
	path := cfg.ScoringConfigPath
	if path != "" {
		path = resolvePath(path)
	}
	sc, err := scoring.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading scoring config: %v\n", err)
		os.Exit(1)
	}
	return sc
}

// resolvePath joins relative paths onto the workspace root.
func resolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(rootFlag, p)
}

// mustParseID parses a UUID argument or exits.
func mustParseID(arg string) uuid.UUID {
	id, err := uuid.Parse(arg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid id %q: %v\n", arg, err)
		os.Exit(1)
	}
	return id
}

func fail(action string, err error) {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", action, err)
	os.Exit(1)
}

func errUsage(msg string) error {
	return fmt.Errorf("%s", msg)
}

// listTargets resolves the systems a command operates on: every system when
// all is set, otherwise the single system named by args[0].
func listTargets(st store.SystemStore, args []string, all bool) []model.SystemMetadata {
	if all {
		systems, err := st.ListSystems()
		if err != nil {
			fail("listing systems", err)
		}
		return systems
	}
	sys, err := st.GetSystem(mustParseID(args[0]))
	if err != nil {
		fail("loading system", err)
	}
	return []model.SystemMetadata{sys}
}
