package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcpwarden/mcpwarden/internal/pinning"
	"github.com/mcpwarden/mcpwarden/internal/policy"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show mcpwarden status — store, packs, audit log",
	Long: `Check the mcpwarden profile: which pin store backend is configured,
how many baselines it holds, which signature packs are installed, and
whether the audit log exists.

  mcpwarden status`,
	RunE: statusCommand,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fmt.Println("═══════════════════════════════════════════════════════")
	fmt.Println("  mcpwarden Status")
	fmt.Println("═══════════════════════════════════════════════════════")
	fmt.Println()

	binPath, err := os.Executable()
	if err != nil {
		binPath = "unknown"
	}
	fmt.Printf("  Binary:    %s (%s)\n", binPath, Version)
	fmt.Printf("  Config:    %s\n", cfg.ConfigDir)
	fmt.Println()

	fmt.Println("─── Pin Store ─────────────────────────────────────────")
	store, err := openStore(cfg)
	if err != nil {
		fmt.Printf("  ⚠  %s backend at %s: %v\n", cfg.Backend, cfg.StorageRoot, err)
	} else {
		pinner := pinning.NewPinner(store, nil)
		records, recErr := pinner.Records()
		if recErr != nil {
			fmt.Printf("  ⚠  %s backend at %s: %v\n", cfg.Backend, cfg.StorageRoot, recErr)
		} else {
			fmt.Printf("  ✅ %s backend at %s (%d baseline(s))\n", cfg.Backend, cfg.StorageRoot, len(records))
		}
		store.Close()
	}
	fmt.Println()

	fmt.Println("─── Signature Packs ───────────────────────────────────")
	_, infos, err := policy.LoadPacks(cfg.PacksDir)
	if err != nil {
		fmt.Printf("  ⚠  %s: %v\n", cfg.PacksDir, err)
	} else if len(infos) == 0 {
		fmt.Println("  ⬚  No signature packs installed")
	} else {
		enabled := 0
		for _, info := range infos {
			if info.Enabled {
				enabled++
			}
		}
		fmt.Printf("  ✅ %d installed, %d enabled (%s)\n", len(infos), enabled, cfg.PacksDir)
		for _, info := range infos {
			mark := "✅"
			if !info.Enabled {
				mark = "⬚ "
			}
			fmt.Printf("     %s %s (%d signatures)\n", mark, info.Name, info.SignatureCount)
		}
	}
	fmt.Println()

	fmt.Println("─── Audit Log ─────────────────────────────────────────")
	info, err := os.Stat(cfg.LogPath)
	if err != nil {
		fmt.Printf("  ⬚  %s (not yet created — will start on first scan)\n", cfg.LogPath)
	} else {
		sizeKB := info.Size() / 1024
		if sizeKB == 0 {
			fmt.Printf("  ✅ %s (<1 KB)\n", cfg.LogPath)
		} else {
			fmt.Printf("  ✅ %s (%d KB)\n", cfg.LogPath, sizeKB)
		}
	}
	fmt.Println()

	return nil
}
