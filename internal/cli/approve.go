package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcpwarden/mcpwarden/internal/approval"
	"github.com/mcpwarden/mcpwarden/internal/entity"
	"github.com/mcpwarden/mcpwarden/internal/inventory"
	"github.com/mcpwarden/mcpwarden/internal/pinning"
	"github.com/mcpwarden/mcpwarden/internal/policy"
	"github.com/mcpwarden/mcpwarden/internal/xref"
)

var (
	approveKind string
	approveYes  bool
)

var approveCmd = &cobra.Command{
	Use:   "approve <inventory.yaml> <server> <entity-name>",
	Short: "Whitelist the current description of an entity",
	Long: `Approve the current description of one entity so future scans accept
it even though it differs from the pinned baseline. The digest is taken
from the inventory snapshot; approval applies to that exact content and
a later edit trips drift detection again.

Run interactively; without a terminal the prompt auto-denies. Use --yes
in scripts after reviewing the change by other means.

  mcpwarden approve servers.yaml github fetch_issue`,
	Args: cobra.ExactArgs(3),
	RunE: approveCommand,
}

func init() {
	approveCmd.Flags().StringVar(&approveKind, "kind", "", "Entity kind (tool, prompt, resource); required when the name is ambiguous")
	approveCmd.Flags().BoolVar(&approveYes, "yes", false, "Approve without the interactive prompt")
	rootCmd.AddCommand(approveCmd)
}

func approveCommand(cmd *cobra.Command, args []string) error {
	path, server, name := args[0], args[1], args[2]

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

	batch, err := inventory.Load(path)
	if err != nil {
		return err
	}
	target, err := findEntity(batch, server, name, entity.Kind(approveKind))
	if err != nil {
		return err
	}

	digest := pinning.Digest(target.Description)

	if !approveYes {
		prompt := approval.Prompt{
			Server:      server,
			Kind:        string(target.Kind),
			Name:        target.Name,
			Digest:      digest,
			Description: target.Description,
		}
		records, err := pinner.Records()
		if err == nil {
			if rec, ok := records[pinning.PinKey(server, target.Kind, target.Name)]; ok && rec.Digest != digest {
				prompt.Previous = rec.Description
			}
		}
		engine := policy.NewEngine(policy.Config{})
		for _, issue := range engine.EvaluateEntity(target).Issues {
			prompt.Issues = append(prompt.Issues,
				fmt.Sprintf("[%s/%s] %s", issue.Kind, issue.Severity, issue.Message))
		}

		result := approval.Ask(prompt)
		if !result.Approved {
			return fmt.Errorf("not approved (%s)", result.UserAction)
		}
	}

	if err := pinner.Approve(target.Kind, target.Name, digest); err != nil {
		return fmt.Errorf("record approval: %w", err)
	}
	fmt.Printf("Approved %s %q with digest %s\n", target.Kind, target.Name, digest)
	return nil
}

// findEntity resolves one entity in a loaded batch. kind narrows the
// search when the same name appears as both a tool and a prompt.
func findEntity(batch []xref.ServerEntities, server, name string, kind entity.Kind) (entity.Entity, error) {
	var matches []entity.Entity
	for _, group := range batch {
		if group.Server != server {
			continue
		}
		for _, ent := range group.Entities {
			if ent.Name != name {
				continue
			}
			if kind != "" && ent.Kind != kind {
				continue
			}
			matches = append(matches, ent)
		}
	}
	switch len(matches) {
	case 0:
		return entity.Entity{}, fmt.Errorf("no entity %q on server %q in the inventory", name, server)
	case 1:
		return matches[0], nil
	default:
		return entity.Entity{}, fmt.Errorf("entity name %q on server %q is ambiguous; pass --kind", name, server)
	}
}
