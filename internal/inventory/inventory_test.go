package inventory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mcpwarden/mcpwarden/internal/entity"
)

const yamlSnapshot = `servers:
  - name: github
    tools:
      - name: create_issue
        description: Create an issue.
        inputSchema: '{"type":"object","properties":{"title":{"type":"string"}}}'
    prompts:
      - name: summarize
        description: Summarize a thread.
  - name: files
    resources:
      - name: readme
        uri: file:///workspace/README.md
`

func writeSnapshot(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_YAML(t *testing.T) {
	batch, err := Load(writeSnapshot(t, "servers.yaml", yamlSnapshot))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("expected 2 servers, got %d", len(batch))
	}

	github := batch[0]
	if github.Server != "github" || len(github.Entities) != 2 {
		t.Fatalf("unexpected first group: %+v", github)
	}
	tool := github.Entities[0]
	if tool.Kind != entity.KindTool || tool.Name != "create_issue" {
		t.Errorf("expected tool kind set by the loader, got %+v", tool)
	}
	if len(tool.InputSchema) == 0 {
		t.Error("expected the raw schema carried through")
	}
	if prompt := github.Entities[1]; prompt.Kind != entity.KindPrompt {
		t.Errorf("expected prompt kind, got %s", prompt.Kind)
	}

	resource := batch[1].Entities[0]
	if resource.Kind != entity.KindResource || resource.ResourceURI != "file:///workspace/README.md" {
		t.Errorf("unexpected resource: %+v", resource)
	}
}

func TestLoad_JSON(t *testing.T) {
	content := `{"servers":[{"name":"github","tools":[{"name":"create_issue","description":"Create an issue."}]}]}`
	batch, err := Load(writeSnapshot(t, "servers.json", content))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(batch) != 1 || batch[0].Entities[0].Kind != entity.KindTool {
		t.Errorf("unexpected batch: %+v", batch)
	}
}

func TestLoad_EmptyServerName(t *testing.T) {
	if _, err := Load(writeSnapshot(t, "bad.yaml", "servers:\n  - tools:\n      - name: x\n")); err == nil {
		t.Fatal("expected an error for a server with no name")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
