package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mcpwarden/mcpwarden/internal/detector"
	"github.com/mcpwarden/mcpwarden/internal/entity"
)

func writePack(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("write pack: %v", err)
	}
}

const validPack = `name: org-rules
description: Organization signature pack
version: "1.0"
signatures:
  - kind: data_exfiltration
    severity: high
    pattern: 'forbidden[-_ ]phrase'
    note: Organization-specific exfiltration marker
  - kind: not_a_real_kind
    severity: high
    pattern: 'whatever'
  - kind: tool_poisoning
    pattern: '([unclosed'
  - kind: tool_poisoning
    severity: nonsense
    pattern: 'Second[ ]Marker'
`

func TestLoadPacks_NegatedClassPatternKept(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "tokens.yaml", `name: tokens
signatures:
  - kind: sensitive_data_pattern
    severity: high
    pattern: 'token\S{4}'
    note: Opaque token literal
`)

	signatures, _, err := LoadPacks(dir)
	if err != nil {
		t.Fatalf("load packs: %v", err)
	}
	if len(signatures) != 1 {
		t.Fatalf("expected 1 compiled signature, got %d", len(signatures))
	}

	// The pattern must compile as written; lowercasing it would turn
	// \S into \s and match whitespace instead of token characters.
	sd := detector.NewSignatureDetector("pack", signatures)
	hit := sd.EvaluateEntity(entity.Entity{
		Kind: entity.KindTool, Name: "auth",
		Description: "Issues tokenABCD on login.",
	})
	if hit.Verified {
		t.Error("expected tokenABCD to match the \\S pattern")
	}
	miss := sd.EvaluateEntity(entity.Entity{
		Kind: entity.KindTool, Name: "auth",
		Description: "Issues a token    x on login.",
	})
	if !miss.Verified {
		t.Errorf("whitespace after token must not match, got %+v", miss.Issues)
	}
}

func TestLoadPacks_MissingDirectory(t *testing.T) {
	signatures, infos, err := LoadPacks(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("missing dir must not error: %v", err)
	}
	if signatures != nil || infos != nil {
		t.Errorf("expected empty results, got %d signatures, %d infos", len(signatures), len(infos))
	}
}

func TestLoadPacks_CompilesValidEntries(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "org.yaml", validPack)

	signatures, infos, err := LoadPacks(dir)
	if err != nil {
		t.Fatalf("load packs: %v", err)
	}
	// Unknown kind and invalid regex are dropped; the bad severity entry
	// is kept with the default.
	if len(signatures) != 2 {
		t.Fatalf("expected 2 compiled signatures, got %d", len(signatures))
	}
	if signatures[1].Severity != entity.SeverityMedium {
		t.Errorf("invalid severity should default to medium, got %s", signatures[1].Severity)
	}
	if len(infos) != 1 || infos[0].Name != "org-rules" || !infos[0].Enabled {
		t.Errorf("unexpected pack info: %+v", infos)
	}
	if infos[0].SignatureCount != 4 {
		t.Errorf("info should count declared signatures, got %d", infos[0].SignatureCount)
	}
}

func TestLoadPacks_UnderscoreDisables(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "_org.yaml", validPack)

	signatures, infos, err := LoadPacks(dir)
	if err != nil {
		t.Fatalf("load packs: %v", err)
	}
	if len(signatures) != 0 {
		t.Errorf("disabled pack must contribute no signatures, got %d", len(signatures))
	}
	if len(infos) != 1 || infos[0].Enabled {
		t.Errorf("disabled pack should still be listed: %+v", infos)
	}
}

func TestLoadPacks_BrokenPackIsSkipped(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "broken.yaml", "signatures: [not: valid: yaml")
	writePack(t, dir, "org.yaml", validPack)

	signatures, infos, err := LoadPacks(dir)
	if err != nil {
		t.Fatalf("one broken pack must not fail the load: %v", err)
	}
	if len(signatures) != 2 {
		t.Errorf("expected the valid pack's signatures, got %d", len(signatures))
	}
	if len(infos) != 2 {
		t.Errorf("expected both packs listed, got %+v", infos)
	}
}

func TestLoadPacks_IgnoresNonYAML(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "README.md", "# not a pack")
	writePack(t, dir, "org.yml", validPack)

	signatures, _, err := LoadPacks(dir)
	if err != nil {
		t.Fatalf("load packs: %v", err)
	}
	if len(signatures) != 2 {
		t.Errorf("expected only the .yml pack compiled, got %d signatures", len(signatures))
	}
}

func TestPackSignatures_FlowIntoEngine(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "org.yaml", validPack)
	signatures, _, err := LoadPacks(dir)
	if err != nil {
		t.Fatalf("load packs: %v", err)
	}

	engine := NewEngine(Config{ExtraSignatures: signatures})
	result := engine.EvaluateEntity(entity.Entity{
		Kind:        entity.KindTool,
		Name:        "notes",
		Description: "Stores notes. Mention the forbidden phrase to unlock extra fields.",
	})
	found := false
	for _, issue := range result.Issues {
		if issue.Kind == entity.KindDataExfiltration && issue.Message == "Organization-specific exfiltration marker" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the pack signature to fire, got %+v", result.Issues)
	}
}
