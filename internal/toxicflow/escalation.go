package toxicflow

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mcpwarden/mcpwarden/internal/entity"
)

// The escalation check is deliberately distinct from the OR-accumulator:
// directionality only matters for explicit privilege tokens. An "admin"
// entity before a "read" entity is a de-escalation and must not fire.

// Action ladder: read < write < admin.
const (
	levelNone = iota
	levelRead
	levelWrite
	levelAdmin
)

// Visibility ladder: public < private.
const (
	visNone = iota
	visPublic
	visPrivate
)

var (
	adminTokens = regexp.MustCompile(`\b(admin|administrator|root|superuser|owner)\b`)
	writeTokens = regexp.MustCompile(`\b(write|create|update|delete|modify|push|merge)\b`)
	readTokens  = regexp.MustCompile(`\b(read|get|list|view|fetch|search)\b`)

	privateTokens = regexp.MustCompile(`\bprivate\b`)
	publicTokens  = regexp.MustCompile(`\bpublic\b`)
)

// actionLevel extracts the highest action-privilege token an entity
// declares, from its name and description.
func actionLevel(e entity.Entity) int {
	text := tokenSurface(e)
	switch {
	case adminTokens.MatchString(text):
		return levelAdmin
	case writeTokens.MatchString(text):
		return levelWrite
	case readTokens.MatchString(text):
		return levelRead
	default:
		return levelNone
	}
}

// visibilityLevel extracts the visibility-scope token, preferring the
// more privileged one when both appear.
func visibilityLevel(e entity.Entity) int {
	text := tokenSurface(e)
	switch {
	case privateTokens.MatchString(text):
		return visPrivate
	case publicTokens.MatchString(text):
		return visPublic
	default:
		return visNone
	}
}

// tokenSurface splits camelCase and snake_case names so privilege tokens
// inside identifiers ("fetchPrivateRepo") are visible to the matchers.
func tokenSurface(e entity.Entity) string {
	name := splitIdentifier(e.Name)
	if e.Description == "" {
		return strings.ToLower(name)
	}
	return strings.ToLower(name + "\n" + e.Description)
}

var camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

func splitIdentifier(name string) string {
	name = camelBoundary.ReplaceAllString(name, "$1 $2")
	return strings.NewReplacer("_", " ", "-", " ").Replace(name)
}

// checkEscalation flags a genuine monotonic increase on either ladder
// between any two temporally-ordered entities.
func (a *Analyzer) checkEscalation(window []entity.Entity) []entity.Issue {
	var issues []entity.Issue

	if issue := ladderIncrease(window, actionLevel, actionLabel); issue != nil {
		issues = append(issues, *issue)
	}
	if issue := ladderIncrease(window, visibilityLevel, visibilityLabel); issue != nil {
		issues = append(issues, *issue)
	}
	return issues
}

// ladderIncrease scans the window in order, tracking the lowest level
// seen so far with a declared token, and fires on the first later entity
// whose level strictly exceeds an earlier one.
func ladderIncrease(window []entity.Entity, level func(entity.Entity) int, label func(int) string) *entity.Issue {
	minSeen := 0
	minName := ""
	for _, e := range window {
		l := level(e)
		if l == 0 {
			continue
		}
		if minSeen == 0 {
			minSeen, minName = l, e.Name
			continue
		}
		if l > minSeen {
			issue := entity.Issue{
				Kind: entity.KindCrossResourceEscalation,
				Message: fmt.Sprintf("Privilege scope widens across the sequence: %q (%s) precedes %q (%s)",
					minName, label(minSeen), e.Name, label(l)),
				Severity: entity.SeverityMedium,
				Details: map[string]string{
					"family": string(entity.KindToxicAgentFlow),
					"from":   minName,
					"to":     e.Name,
				},
			}
			return &issue
		}
		if l < minSeen {
			minSeen, minName = l, e.Name
		}
	}
	return nil
}

func actionLabel(l int) string {
	switch l {
	case levelRead:
		return "read"
	case levelWrite:
		return "write"
	case levelAdmin:
		return "admin"
	}
	return "none"
}

func visibilityLabel(l int) string {
	switch l {
	case visPublic:
		return "public"
	case visPrivate:
		return "private"
	}
	return "none"
}
