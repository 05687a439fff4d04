package detector

import "github.com/mcpwarden/mcpwarden/internal/entity"

// sensitiveSignatures covers two shapes of sensitive data appearing in
// entity metadata: references to credential material locations, and
// literal secrets that match well-known token formats. Patterns are
// written against the case-folded surface.
var sensitiveSignatures = []Signature{
	// Sensitive file and directory references
	sig(entity.KindSensitiveDataPattern, entity.SeverityHigh,
		`~/?\.(ssh|aws|gnupg|kube|config/gcloud)`,
		"References sensitive dotfile directory"),
	sig(entity.KindSensitiveDataPattern, entity.SeverityHigh,
		`id_rsa|id_ed25519|id_ecdsa`, "References SSH private key filename"),
	sig(entity.KindSensitiveDataPattern, entity.SeverityHigh,
		`authorized_keys`, "References SSH authorized_keys"),
	sig(entity.KindSensitiveDataPattern, entity.SeverityHigh,
		`/etc/shadow|/etc/passwd`, "References system auth files"),
	sig(entity.KindSensitiveDataPattern, entity.SeverityMedium,
		`mcp\.json`, "References MCP configuration file"),
	sig(entity.KindSensitiveDataPattern, entity.SeverityMedium,
		`\.env\b`, "References .env file"),
	sig(entity.KindSensitiveDataPattern, entity.SeverityMedium,
		`\b(credentials?|access.?keys?|secret.?keys?)\b`,
		"References credential keywords"),
	sig(entity.KindSensitiveDataPattern, entity.SeverityMedium,
		`\bapi.?(key|token)s?\b|\bbearer.?tokens?\b`,
		"References API key/token"),
	sig(entity.KindSensitiveDataPattern, entity.SeverityMedium,
		`browser\s+(cookies?|history|passwords?)`,
		"References browser credential stores"),

	// Literal secret shapes (the surface is lowercased, so token
	// prefixes that are uppercase in the wild are matched folded)
	sig(entity.KindSensitiveDataPattern, entity.SeverityHigh,
		`\bakia[0-9a-z]{16}\b`, "AWS access key ID literal"),
	sig(entity.KindSensitiveDataPattern, entity.SeverityHigh,
		`\bgh[pousr]_[a-z0-9]{36}\b`, "GitHub token literal"),
	sig(entity.KindSensitiveDataPattern, entity.SeverityHigh,
		`-----begin (rsa |ec |dsa |openssh |pgp )?private key-----`,
		"Embedded private key block"),
	sig(entity.KindSensitiveDataPattern, entity.SeverityHigh,
		`xox[baprs]-[0-9]{10,13}-[0-9]{10,13}[a-z0-9-]*`,
		"Slack token literal"),
	sig(entity.KindSensitiveDataPattern, entity.SeverityHigh,
		`\b[sr]k_live_[0-9a-z]{24}\b`, "Stripe live key literal"),
	sig(entity.KindSensitiveDataPattern, entity.SeverityMedium,
		`(password|passwd|pwd|secret)\s*[=:]\s*['"]?[^\s'"]{8,}`,
		"Inline password assignment"),
	sig(entity.KindSensitiveDataPattern, entity.SeverityMedium,
		`https?://[^:/\s]+:[^@\s]+@`, "Basic-auth credentials in URL"),
}

// NewSensitiveDetector detects sensitive-data shapes: credential file
// references and literal secret formats.
func NewSensitiveDetector() *SignatureDetector {
	return NewSignatureDetector("sensitive", sensitiveSignatures)
}
