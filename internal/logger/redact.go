package logger

import "regexp"

// secretPatterns covers the token formats most likely to appear in a
// poisoned description that references real credentials.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9]{36}`),
	regexp.MustCompile(`xox[baprs]-[0-9]{10,13}-[0-9]{10,13}[a-zA-Z0-9-]*`),
	regexp.MustCompile(`[sr]k_live_[0-9a-zA-Z]{24}`),
	regexp.MustCompile(`-----BEGIN (RSA |EC |DSA |OPENSSH |PGP )?PRIVATE KEY-----`),
	regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_-]{20,}`),
	regexp.MustCompile(`(?i)(api_key|apikey|secret_key|access_token|auth_token|password|passwd)\s*[=:]\s*['"]?[^\s'"]{8,}['"]?`),
	regexp.MustCompile(`https?://[^:/\s]+:[^@\s]+@`),
}

const redactedPlaceholder = "[REDACTED]"

// Redact replaces recognizable secrets in audit snippets.
func Redact(input string) string {
	result := input
	for _, pattern := range secretPatterns {
		result = pattern.ReplaceAllString(result, redactedPlaceholder)
	}
	return result
}
