// Package entity defines the records the detection engine reasons over:
// the tools, prompts, and resources an MCP server declares, and the
// issues detectors raise against them. Entities are produced once by a
// connector and never mutated downstream; every detector returns freshly
// constructed results.
package entity

import "encoding/json"

// Kind discriminates what an entity is. It is set by the producer of the
// entity list and never inferred from field presence.
type Kind string

const (
	KindTool     Kind = "tool"
	KindPrompt   Kind = "prompt"
	KindResource Kind = "resource"
)

// Entity describes one capability declared by an MCP server. Only
// declared metadata is inspected, never runtime behavior.
type Entity struct {
	Kind        Kind            `json:"kind"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
	ResourceURI string          `json:"resourceUri,omitempty"`
}

// Severity ranks how bad an issue is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// IssueKind is the stable taxonomy tag attached to every issue.
// Downstream reporting relies on these exact strings.
type IssueKind string

const (
	KindPromptInjection       IssueKind = "prompt_injection"
	KindToolPoisoning         IssueKind = "tool_poisoning"
	KindCrossOriginEscalation IssueKind = "cross_origin_escalation"
	KindDataExfiltration      IssueKind = "data_exfiltration"
	KindContextManipulation   IssueKind = "context_manipulation"
	KindPrivilegeEscalation   IssueKind = "privilege_escalation"
	KindToxicAgentFlow        IssueKind = "toxic_agent_flow"
	KindSensitiveDataPattern  IssueKind = "sensitive_data_pattern"
	KindEncodedExfiltration   IssueKind = "encoded_data_exfiltration"
	KindSteganographyExfil    IssueKind = "steganography_exfiltration"
)

// Sub-kinds of the toxic_agent_flow family. Issues carry the sub-kind
// as their Kind and name the family in Details["family"].
const (
	KindPrivEscToxicFlow        IssueKind = "privilege_escalation_toxic_flow"
	KindContentToxicFlow        IssueKind = "content_processing_toxic_flow"
	KindCrossResourceEscalation IssueKind = "cross_resource_escalation"
	KindIndirectPromptInjection IssueKind = "indirect_prompt_injection"
)

// Issue is a single finding raised by one detector invocation.
type Issue struct {
	Kind     IssueKind         `json:"kind"`
	Message  string            `json:"message"`
	Severity Severity          `json:"severity"`
	Details  map[string]string `json:"details,omitempty"`
}

// ScanResult is what every detector returns.
// Invariant: Verified is true exactly when Issues is empty.
type ScanResult struct {
	Verified bool    `json:"verified"`
	Issues   []Issue `json:"issues"`
}

// NewScanResult builds a ScanResult from issues, keeping the
// verified/issues invariant in one place.
func NewScanResult(issues []Issue) ScanResult {
	return ScanResult{Verified: len(issues) == 0, Issues: issues}
}

// Merge folds another result into this one, preserving issue order and
// re-deriving the verified flag.
func (r ScanResult) Merge(other ScanResult) ScanResult {
	return NewScanResult(append(r.Issues, other.Issues...))
}

// severityRank orders severities for aggregation (high > medium > low).
func severityRank(s Severity) int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// MaxSeverity returns the highest severity among the result's issues,
// or "" for a verified result.
func (r ScanResult) MaxSeverity() Severity {
	var best Severity
	for _, is := range r.Issues {
		if severityRank(is.Severity) > severityRank(best) {
			best = is.Severity
		}
	}
	return best
}
