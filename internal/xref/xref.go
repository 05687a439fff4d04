// Package xref finds textual leakage between otherwise-isolated
// namespaces: an entity whose description names another server, or
// another server's entity, signals cross-origin coupling or
// tool-shadowing. The detector runs once per scan batch and reports at
// the batch level, not per entity.
//
// Cost is O(servers × entities × tokens × |flagged set|) edit-distance
// computations: fine for tens of servers and low hundreds of tools,
// not for large registries (that would want a BK-tree or similar index).
package xref

import (
	"sort"
	"strings"

	"github.com/mcpwarden/mcpwarden/internal/entity"
)

const (
	// minTokenLength bounds false positives from incidental short-token
	// collisions; tokens shorter than this never match, even verbatim.
	minTokenLength = 5

	// maxEditDistance tolerates typo and pluralization variants.
	maxEditDistance = 2
)

// ServerEntities groups one namespace's entities for a scan batch.
type ServerEntities struct {
	Server   string
	Entities []entity.Entity
}

// Result is the single batch-level outcome. Sources are recorded as
// "entityName:token", deduplicated and sorted.
type Result struct {
	Found   bool     `json:"found"`
	Sources []string `json:"sources,omitempty"`
}

// Detect compares every entity description in the batch against the
// names belonging to every other namespace.
func Detect(batch []ServerEntities) Result {
	var result Result
	seen := map[string]bool{}

	for i, group := range batch {
		flagged := flaggedSet(batch, i)
		if len(flagged) == 0 {
			continue
		}
		for _, e := range group.Entities {
			for _, token := range strings.Fields(e.Description) {
				token = strings.ToLower(strings.Trim(token, `.,;:!?'"()[]{}`))
				if len(token) < minTokenLength {
					continue
				}
				if !matchesFlagged(token, flagged) {
					continue
				}
				source := e.Name + ":" + token
				if !seen[source] {
					seen[source] = true
					result.Sources = append(result.Sources, source)
				}
			}
		}
	}

	sort.Strings(result.Sources)
	result.Found = len(result.Sources) > 0
	return result
}

// flaggedSet collects the lowercase names of every other server plus
// every other server's entity names.
func flaggedSet(batch []ServerEntities, self int) map[string]bool {
	flagged := map[string]bool{}
	for i, group := range batch {
		if i == self {
			continue
		}
		flagged[strings.ToLower(group.Server)] = true
		for _, e := range group.Entities {
			flagged[strings.ToLower(e.Name)] = true
		}
	}
	return flagged
}

// matchesFlagged accepts an exact member immediately; otherwise it
// takes the minimum edit distance over the set.
func matchesFlagged(token string, flagged map[string]bool) bool {
	if flagged[token] {
		return true
	}
	for name := range flagged {
		if distance(token, name) <= maxEditDistance {
			return true
		}
	}
	return false
}
