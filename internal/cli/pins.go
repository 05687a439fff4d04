package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcpwarden/mcpwarden/internal/pinning"
)

var pinsCmd = &cobra.Command{
	Use:   "pins",
	Short: "List pinned entity baselines",
	Long: `List every pinned baseline in the store: the entity's composite key,
the digest of its last-seen description, whether the last scan verified
it, and when it was last observed.

  mcpwarden pins`,
	RunE: pinsCommand,
}

func init() {
	rootCmd.AddCommand(pinsCmd)
}

func pinsCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open pin store: %w", err)
	}
	defer store.Close()

	pinner := pinning.NewPinner(store, warnf)
	records, err := pinner.Records()
	if err != nil {
		return fmt.Errorf("list pins: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No pinned baselines yet. Run a scan first.")
		return nil
	}

	keys := make([]string, 0, len(records))
	for key := range records {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		rec := records[key]
		mark := "✓"
		if !rec.Verified {
			mark = "✗"
		}
		fmt.Printf("%s %-40s %s  %s\n", mark, key, shortDigest(rec.Digest), rec.Timestamp.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("\n%d pinned baseline(s)\n", len(records))
	return nil
}

func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12] + "…"
	}
	return strings.TrimSpace(digest)
}
