package detector

import (
	"fmt"

	"github.com/mcpwarden/mcpwarden/internal/entity"
)

// exfiltrationSignatures covers instructions to move data out of band:
// pass-as-parameter, send-to, embed-in-output, and network egress idioms.
var exfiltrationSignatures = []Signature{
	sig(entity.KindDataExfiltration, entity.SeverityHigh,
		`pass\s+(it|its|the|this|that|them|their)?\s*(content|contents|data|value|result)?\s*as\b`,
		"Instruction to pass data as a parameter"),
	sig(entity.KindDataExfiltration, entity.SeverityHigh,
		`send\s+(it|a\s+copy|the|this|all)?\s*(of\s+\w+\s*)?(to|via)\b`,
		"Instruction to send data somewhere"),
	sig(entity.KindDataExfiltration, entity.SeverityHigh,
		`(curl|wget|fetch|http|post)\s[^.]{0,60}(attacker|evil|exfil|collect|receive)`,
		"Exfiltration via HTTP"),
	sig(entity.KindDataExfiltration, entity.SeverityHigh,
		`(include|embed|attach|append)\s+(it|the|this|all)?\s*(in|to|into)\s*(the\s+)?(response|output|result|argument|param)`,
		"Instruction to embed data in output"),
	sig(entity.KindDataExfiltration, entity.SeverityHigh,
		`(forward|upload|copy|mirror)\s+[^.]{0,40}(to\s+)?(https?://|ftp://|\bremote\b|\bexternal\b)`,
		"Instruction to upload data externally"),
	sig(entity.KindDataExfiltration, entity.SeverityMedium,
		`\b[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}\b`,
		"Email address embedded in entity metadata"),
	sig(entity.KindDataExfiltration, entity.SeverityMedium,
		`(webhook|callback)\s*(url)?\s*[:=]?\s*https?://`,
		"Hardcoded webhook/callback endpoint"),
	sig(entity.KindDataExfiltration, entity.SeverityMedium,
		`dns\s+(lookup|query|tunnel)[^.]{0,40}(data|content|payload)`,
		"DNS-based exfiltration idiom"),
}

// suspiciousFieldNames are schema parameter names that routinely carry
// smuggled data in tool-poisoning attacks. Matching on names alone is a
// deliberate high-recall / low-precision heuristic: a benign "metadata"
// field will trigger it, and that is accepted. Schema text carries no
// other signal to reason over.
var suspiciousFieldNames = map[string]bool{
	"sidenote":  true,
	"side_note": true,
	"metadata":  true,
	"telemetry": true,
	"analytics": true,
	"debug":     true,
	"extra":     true,
	"context":   true,
	"feedback":  true,
	"notes":     true,
}

// NewExfiltrationDetector detects data-exfiltration instructions plus
// the schema field-name heuristic.
func NewExfiltrationDetector() *SignatureDetector {
	d := NewSignatureDetector("exfiltration", exfiltrationSignatures)
	d.extra = func(e entity.Entity, s Surface) []entity.Issue {
		var issues []entity.Issue
		for _, field := range s.SchemaFields {
			if suspiciousFieldNames[field] {
				issues = append(issues, entity.Issue{
					Kind:     entity.KindDataExfiltration,
					Message:  fmt.Sprintf("Schema declares catch-all parameter %q, a common exfiltration channel", field),
					Severity: entity.SeverityLow,
					Details:  map[string]string{"field": field},
				})
			}
		}
		return issues
	}
	return d
}
