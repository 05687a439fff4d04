// Package inventory loads scan batches from snapshot files. The live
// connector that speaks MCP to remote servers sits outside this module;
// what arrives here is its serialized output: per-server lists of
// tools, prompts, and resources. The loader is the producer in the data
// model: it sets each entity's Kind explicitly, and nothing downstream
// re-infers it.
package inventory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mcpwarden/mcpwarden/internal/entity"
	"github.com/mcpwarden/mcpwarden/internal/xref"
)

// File is the on-disk snapshot format, YAML or JSON.
type File struct {
	Servers []Server `yaml:"servers" json:"servers"`
}

// Server is one namespace's declared entities.
type Server struct {
	Name      string `yaml:"name" json:"name"`
	Tools     []Item `yaml:"tools,omitempty" json:"tools,omitempty"`
	Prompts   []Item `yaml:"prompts,omitempty" json:"prompts,omitempty"`
	Resources []Item `yaml:"resources,omitempty" json:"resources,omitempty"`
}

// Item is one declared capability. InputSchema is carried as a raw JSON
// string so snapshots can embed schemas verbatim.
type Item struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	InputSchema string `yaml:"inputSchema,omitempty" json:"inputSchema,omitempty"`
	URI         string `yaml:"uri,omitempty" json:"uri,omitempty"`
}

// Load reads one snapshot file into a scan batch.
func Load(path string) ([]xref.ServerEntities, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}

	var file File
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		err = json.Unmarshal(data, &file)
	} else {
		err = yaml.Unmarshal(data, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("parse inventory %s: %w", path, err)
	}

	batch := make([]xref.ServerEntities, 0, len(file.Servers))
	for _, srv := range file.Servers {
		if srv.Name == "" {
			return nil, fmt.Errorf("inventory %s: server with empty name", path)
		}
		group := xref.ServerEntities{Server: srv.Name}
		group.Entities = append(group.Entities, convert(srv.Tools, entity.KindTool)...)
		group.Entities = append(group.Entities, convert(srv.Prompts, entity.KindPrompt)...)
		group.Entities = append(group.Entities, convert(srv.Resources, entity.KindResource)...)
		batch = append(batch, group)
	}
	return batch, nil
}

func convert(items []Item, kind entity.Kind) []entity.Entity {
	out := make([]entity.Entity, 0, len(items))
	for _, item := range items {
		e := entity.Entity{
			Kind:        kind,
			Name:        item.Name,
			Description: item.Description,
			ResourceURI: item.URI,
		}
		if item.InputSchema != "" {
			e.InputSchema = json.RawMessage(item.InputSchema)
		}
		out = append(out, e)
	}
	return out
}
