package detector

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/mcpwarden/mcpwarden/internal/entity"
)

// Signature pairs a compiled pattern with the issue it raises when the
// pattern matches an entity surface. Signatures match against the
// lowercased surface, so patterns are written in lowercase.
type Signature struct {
	Kind     entity.IssueKind
	Severity entity.Severity
	Pattern  *regexp.Regexp
	Note     string
}

// sig is shorthand for building the package tables.
func sig(kind entity.IssueKind, sev entity.Severity, pattern, note string) Signature {
	return Signature{
		Kind:     kind,
		Severity: sev,
		Pattern:  regexp.MustCompile(pattern),
		Note:     note,
	}
}

// MatchAll evaluates every signature against the surface and returns one
// issue per distinct matched span. Within a category the enumeration is
// exhaustive (all matches of all signatures), deduplicated by span so
// overlapping patterns do not double-report the same text.
func MatchAll(signatures []Signature, s Surface) []entity.Issue {
	var issues []entity.Issue
	seen := map[string]bool{}
	for _, signature := range signatures {
		locs := signature.Pattern.FindAllStringIndex(s.Lower, -1)
		for _, loc := range locs {
			spanKey := fmt.Sprintf("%s:%d-%d", signature.Kind, loc[0], loc[1])
			if seen[spanKey] {
				continue
			}
			seen[spanKey] = true
			issues = append(issues, entity.Issue{
				Kind:     signature.Kind,
				Message:  signature.Note,
				Severity: signature.Severity,
				Details: map[string]string{
					// Match offsets are positions in the folded surface;
					// they are not valid in Raw, whose byte length can
					// differ after case folding.
					"snippet": snippetAround(s.Lower, loc[0], 80),
				},
			})
		}
	}
	return issues
}

// snippetAround extracts context around a byte offset, capped at maxLen
// and aligned to rune boundaries.
func snippetAround(text string, idx, maxLen int) string {
	start := idx - 20
	if start < 0 {
		start = 0
	}
	end := idx + maxLen
	if end > len(text) {
		end = len(text)
	}
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	snippet := text[start:end]
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(text) {
		snippet = snippet + "..."
	}
	return snippet
}
