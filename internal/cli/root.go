// Package cli wires the mcpwarden commands. Everything the engine
// needs is constructed here, once, from flags; no ambient state.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcpwarden/mcpwarden/internal/config"
	"github.com/mcpwarden/mcpwarden/internal/pinning"
)

var (
	storageRoot string
	packsDir    string
	logPath     string
	backend     string
	window      int
)

var rootCmd = &cobra.Command{
	Use:   "mcpwarden",
	Short: "mcpwarden - security scanner for MCP tool metadata",
	Long: `mcpwarden inspects the tools, prompts, and resources declared by MCP
servers and flags signs of manipulation: hidden instructions, behavioral
tampering, data exfiltration, privilege escalation, and multi-step toxic
agent flows. It pins descriptions between scans to catch silent rug-pull
edits, and cross-references descriptions across servers to catch tool
shadowing.

mcpwarden only reasons over declared metadata. It never executes the
tools it inspects.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&storageRoot, "storage", "", "Storage root for pin/whitelist stores (default: ~/.mcpwarden/store)")
	rootCmd.PersistentFlags().StringVar(&packsDir, "packs", "", "Directory of YAML signature packs (default: ~/.mcpwarden/packs)")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "Path to audit log file (default: ~/.mcpwarden/audit.jsonl)")
	rootCmd.PersistentFlags().StringVar(&backend, "store", config.BackendFile, "Pin store backend: file or badger")
	rootCmd.PersistentFlags().IntVar(&window, "window", 0, "History window for sequence analysis (default 100)")
}

func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	return config.Load(storageRoot, packsDir, logPath, backend, window)
}

// openStore selects the pin store backend from config.
func openStore(cfg *config.Config) (pinning.Store, error) {
	switch cfg.Backend {
	case config.BackendBadger:
		return pinning.OpenBadgerStore(cfg.StorageRoot)
	default:
		return pinning.OpenFileStore(cfg.StorageRoot)
	}
}

// warnf reports soft failures (pin persist errors and the like) without
// interrupting the scan.
func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}
