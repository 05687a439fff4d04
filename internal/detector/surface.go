package detector

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/mcpwarden/mcpwarden/internal/entity"
)

// Surface is the normalized text a detector matches against. Lower holds
// the case-folded concatenation of name, description, resource URI, and
// canonicalized schema text; Raw preserves the original runes for the
// invisible-character scan. Schema field names are kept separately for
// the exfiltration field-name heuristic.
type Surface struct {
	Lower        string
	Raw          string
	SchemaFields []string
}

// BuildSurface canonicalizes an entity into a matchable surface. A
// malformed schema degrades to matching its raw bytes; it never fails.
func BuildSurface(e entity.Entity) Surface {
	parts := []string{e.Name}
	if e.Description != "" {
		parts = append(parts, e.Description)
	}
	if e.ResourceURI != "" {
		parts = append(parts, e.ResourceURI)
	}

	var fields []string
	if len(e.InputSchema) > 0 {
		text, names := canonicalizeSchema(e.InputSchema)
		if text != "" {
			parts = append(parts, text)
		}
		fields = names
	}

	raw := strings.Join(parts, "\n")
	return Surface{
		Lower:        strings.ToLower(raw),
		Raw:          raw,
		SchemaFields: fields,
	}
}

// canonicalizeSchema flattens a JSON schema into deterministic text:
// property names, titles, and description strings in sorted key order.
// Invalid JSON falls back to the raw bytes so hidden instructions inside
// a broken schema still get matched.
func canonicalizeSchema(schema []byte) (text string, fieldNames []string) {
	var node any
	if err := json.Unmarshal(schema, &node); err != nil {
		return string(schema), nil
	}
	var sb strings.Builder
	walkSchema(node, false, &sb, &fieldNames)
	sort.Strings(fieldNames)
	return strings.TrimSpace(sb.String()), fieldNames
}

func walkSchema(node any, underProperties bool, sb *strings.Builder, fields *[]string) {
	switch v := node.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if underProperties {
				*fields = append(*fields, k)
				sb.WriteString(k)
				sb.WriteByte(' ')
			}
			if k == "description" || k == "title" {
				if s, ok := v[k].(string); ok {
					sb.WriteString(s)
					sb.WriteByte(' ')
				}
			}
			walkSchema(v[k], k == "properties", sb, fields)
		}
	case []any:
		for _, item := range v {
			walkSchema(item, false, sb, fields)
		}
	}
}
