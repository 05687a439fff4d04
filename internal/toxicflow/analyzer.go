// Package toxicflow detects attack chains that are invisible at
// single-call granularity: sequences of individually benign entities
// that in combination move data from privileged sources to public
// sinks. The analyzer is stateless across invocations: it receives the
// full history window each call and recomputes from scratch. Bounding
// the window (DefaultWindow) is the caller's responsibility.
package toxicflow

import (
	"fmt"

	"github.com/mcpwarden/mcpwarden/internal/detector"
	"github.com/mcpwarden/mcpwarden/internal/entity"
)

// DefaultWindow is the history bound callers are expected to apply.
const DefaultWindow = 100

// Analyzer runs the three sequence detectors: the two OR-accumulator
// combination checks, the order-sensitive privilege-token escalation
// check, and the content-processing → privileged-action check.
type Analyzer struct {
	detector.NoEntity
}

// NewAnalyzer constructs the sequence analyzer.
func NewAnalyzer() *Analyzer { return &Analyzer{} }

func (a *Analyzer) Name() string { return "toxicflow" }

// EvaluateSequence inspects an ordered window of entities, oldest first.
func (a *Analyzer) EvaluateSequence(window []entity.Entity) entity.ScanResult {
	if len(window) == 0 {
		return entity.NewScanResult(nil)
	}

	evidence := make([]Evidence, len(window))
	for i, e := range window {
		evidence[i] = Classify(e)
	}

	var issues []entity.Issue
	issues = append(issues, a.checkAccumulated(window, evidence)...)
	issues = append(issues, a.checkEscalation(window)...)
	issues = append(issues, a.checkIndirectInjection(window, evidence)...)
	return entity.NewScanResult(issues)
}

// checkAccumulated folds the evidence categories with a per-category OR
// across the whole window and evaluates the fixed combinations. The fold
// is deliberately order-insensitive: real attacks interleave benign
// calls between escalation steps, so once any entity contributes
// evidence for a category it stays contributed.
func (a *Analyzer) checkAccumulated(window []entity.Entity, evidence []Evidence) []entity.Issue {
	var acc Evidence
	contributors := map[string][]string{}
	for i, ev := range evidence {
		name := window[i].Name
		if ev.PublicAccess {
			acc.PublicAccess = true
			contributors["public"] = append(contributors["public"], name)
		}
		if ev.ContentProcessing {
			acc.ContentProcessing = true
			contributors["content"] = append(contributors["content"], name)
		}
		if ev.PrivateAccess {
			acc.PrivateAccess = true
			contributors["private"] = append(contributors["private"], name)
		}
		if ev.Exfiltration {
			acc.Exfiltration = true
			contributors["exfiltration"] = append(contributors["exfiltration"], name)
		}
	}

	var issues []entity.Issue
	if acc.PublicAccess && acc.PrivateAccess && acc.Exfiltration {
		issues = append(issues, flowIssue(
			entity.KindPrivEscToxicFlow,
			fmt.Sprintf("Sequence combines public access (%s), private access (%s), and an exfiltration channel (%s)",
				first(contributors["public"]), first(contributors["private"]), first(contributors["exfiltration"])),
		))
	}
	if acc.ContentProcessing && acc.PrivateAccess && acc.Exfiltration {
		issues = append(issues, flowIssue(
			entity.KindContentToxicFlow,
			fmt.Sprintf("Sequence combines untrusted-content processing (%s), private access (%s), and an exfiltration channel (%s)",
				first(contributors["content"]), first(contributors["private"]), first(contributors["exfiltration"])),
		))
	}
	return issues
}

// checkIndirectInjection flags a content-processing entity followed,
// anywhere later in the window and not necessarily adjacently, by a
// privileged-action entity.
func (a *Analyzer) checkIndirectInjection(window []entity.Entity, evidence []Evidence) []entity.Issue {
	firstContent := -1
	for i, ev := range evidence {
		if ev.ContentProcessing {
			firstContent = i
			break
		}
	}
	if firstContent < 0 {
		return nil
	}
	for j := firstContent + 1; j < len(window); j++ {
		if evidence[j].PrivateAccess || actionLevel(window[j]) >= levelWrite {
			return []entity.Issue{{
				Kind: entity.KindIndirectPromptInjection,
				Message: fmt.Sprintf("Untrusted-content entity %q is followed by privileged-action entity %q",
					window[firstContent].Name, window[j].Name),
				Severity: entity.SeverityHigh,
				Details: map[string]string{
					"family":     string(entity.KindToxicAgentFlow),
					"source":     window[firstContent].Name,
					"privileged": window[j].Name,
				},
			}}
		}
	}
	return nil
}

func flowIssue(kind entity.IssueKind, msg string) entity.Issue {
	return entity.Issue{
		Kind:     kind,
		Message:  msg,
		Severity: entity.SeverityHigh,
		Details:  map[string]string{"family": string(entity.KindToxicAgentFlow)},
	}
}

func first(names []string) string {
	if len(names) == 0 {
		return "?"
	}
	return names[0]
}
