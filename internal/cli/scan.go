package cli

import (
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/mcpwarden/mcpwarden/internal/inventory"
	"github.com/mcpwarden/mcpwarden/internal/logger"
	"github.com/mcpwarden/mcpwarden/internal/pinning"
	"github.com/mcpwarden/mcpwarden/internal/policy"
)

var (
	scanNoPin    bool
	scanSelftest bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <inventory.yaml> [more inventories...]",
	Short: "Scan MCP server inventories for poisoned entities and toxic flows",
	Long: `Scan one or more inventory snapshots. Each snapshot lists the tools,
prompts, and resources declared by a set of MCP servers. Every entity is
evaluated by the full detector set, checked against its pinned baseline,
and the batch as a whole is checked for toxic agent flows and
cross-server references.

  mcpwarden scan servers.yaml
  mcpwarden scan --selftest`,
	Args: func(cmd *cobra.Command, args []string) error {
		if scanSelftest {
			return nil
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: scanCommand,
}

func init() {
	scanCmd.Flags().BoolVar(&scanNoPin, "no-pin", false, "Skip pin baseline checks and updates")
	scanCmd.Flags().BoolVar(&scanSelftest, "selftest", false, "Run the built-in detection self-test instead of scanning inventories")
	rootCmd.AddCommand(scanCmd)
}

func scanCommand(cmd *cobra.Command, args []string) error {
	if scanSelftest {
		return selftestCommand()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var pinner *pinning.Pinner
	if !scanNoPin {
		store, err := openStore(cfg)
		if err != nil {
			return fmt.Errorf("open pin store: %w", err)
		}
		defer store.Close()
		pinner = pinning.NewPinner(store, warnf)
	}

	signatures, packInfos, err := policy.LoadPacks(cfg.PacksDir)
	if err != nil {
		return fmt.Errorf("load signature packs: %w", err)
	}
	for _, info := range packInfos {
		if info.Enabled {
			fmt.Printf("pack %s (%d signatures)\n", info.Name, info.SignatureCount)
		}
	}

	audit, err := logger.New(cfg.LogPath)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer audit.Close()

	engine := policy.NewEngine(policy.Config{
		ExtraSignatures: signatures,
		HistoryWindow:   cfg.Window,
		Pinner:          pinner,
	})

	clean := true
	for _, path := range args {
		batch, err := inventory.Load(path)
		if err != nil {
			return err
		}
		report := engine.ScanBatch(batch)
		printReport(path, report)
		auditReport(audit, report)
		if !report.Verified() {
			clean = false
		}
	}

	if !clean {
		return fmt.Errorf("scan found issues")
	}
	fmt.Println("All entities verified.")
	return nil
}

func printReport(path string, report policy.BatchReport) {
	fmt.Printf("\n=== %s\n", path)
	for _, er := range report.Entities {
		if er.Result.Verified {
			fmt.Printf("  ✓ %s/%s (%s)\n", er.Server, er.Entity.Name, er.Entity.Kind)
			continue
		}
		fmt.Printf("  ✗ %s/%s (%s) — %d issue(s), max severity %s\n",
			er.Server, er.Entity.Name, er.Entity.Kind,
			len(er.Result.Issues), er.Result.MaxSeverity())
		for _, issue := range er.Result.Issues {
			fmt.Printf("      [%s/%s] %s\n", issue.Kind, issue.Severity, issue.Message)
		}
		if er.Pinning != nil && er.Pinning.Changed {
			for _, msg := range er.Pinning.Messages {
				fmt.Printf("      [pinning] %s\n", msg)
			}
		}
	}

	if !report.Sequence.Verified {
		fmt.Println("  sequence analysis:")
		for _, issue := range report.Sequence.Issues {
			fmt.Printf("      [%s/%s] %s\n", issue.Kind, issue.Severity, issue.Message)
		}
	}

	if report.CrossRef.Found {
		fmt.Println("  cross-server references:")
		for _, source := range report.CrossRef.Sources {
			fmt.Printf("      %s\n", source)
		}
	}
}

func auditReport(audit *logger.AuditLogger, report policy.BatchReport) {
	now := time.Now().UTC().Format(time.RFC3339)
	for _, er := range report.Entities {
		event := logger.ScanEvent{
			Timestamp:  now,
			Server:     er.Server,
			EntityKind: string(er.Entity.Kind),
			EntityName: er.Entity.Name,
			Verified:   er.Result.Verified,
			Severity:   string(er.Result.MaxSeverity()),
			Snippet:    snippet(er.Entity.Description),
		}
		for _, issue := range er.Result.Issues {
			event.IssueKinds = append(event.IssueKinds, string(issue.Kind))
		}
		if er.Pinning != nil {
			event.Changed = er.Pinning.Changed
		}
		if err := audit.Log(event); err != nil {
			fmt.Fprintf(os.Stderr, "warning: audit log: %v\n", err)
		}
	}
}

func snippet(description string) string {
	const max = 120
	if len(description) <= max {
		return description
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(description[cut]) {
		cut--
	}
	return description[:cut] + "..."
}
