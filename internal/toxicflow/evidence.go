package toxicflow

import (
	"regexp"

	"github.com/mcpwarden/mcpwarden/internal/entity"
)

// Evidence is the per-entity classification the analyzer folds across a
// window. The four categories are independent booleans: one entity can
// contribute several.
type Evidence struct {
	PublicAccess      bool
	ContentProcessing bool
	PrivateAccess     bool
	Exfiltration      bool
}

// The category tables mirror the entity-detector signature style but
// answer a different question: not "is this entity malicious" but "what
// role could this entity play in a chain".
var (
	publicAccessPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bpublic\b`),
		regexp.MustCompile(`\bunauthenticated\b`),
		regexp.MustCompile(`\banonymous\b`),
		regexp.MustCompile(`world.?readable`),
		regexp.MustCompile(`open\s+(access|dataset|registry)`),
		regexp.MustCompile(`\b(list|search|browse)\s+(issues?|repos?|repositories|packages?)\b`),
	}

	contentProcessingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(parse|summari[sz]e|analy[sz]e|process|render|extract)\b`),
		regexp.MustCompile(`\bread\s+(the\s+)?(issue|comment|email|message|document|page|file)s?\b`),
		regexp.MustCompile(`\bfetch\s+(the\s+)?(url|page|content|body)\b`),
		regexp.MustCompile(`\b(markdown|html|untrusted)\s+(content|input|body)\b`),
	}

	privateAccessPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bprivate\b`),
		regexp.MustCompile(`\bconfidential\b`),
		regexp.MustCompile(`\binternal[- ]only\b`),
		regexp.MustCompile(`\brestricted\b`),
		regexp.MustCompile(`\bsecrets?\b`),
		regexp.MustCompile(`\bcredentials?\b`),
		regexp.MustCompile(`\b(personal|user)\s+data\b`),
	}

	exfiltrationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bsend\b`),
		regexp.MustCompile(`\bupload\b`),
		regexp.MustCompile(`\bpost\s+(to|data)\b`),
		regexp.MustCompile(`\bpublish\b`),
		regexp.MustCompile(`\bshare\b`),
		regexp.MustCompile(`create\s+(a\s+)?(pull\s+request|pr|issue|comment|gist)`),
		regexp.MustCompile(`\bemail\s+(to|the)\b`),
		regexp.MustCompile(`\bwebhook\b`),
	}
)

// Classify buckets one entity into the four evidence categories based on
// its name and description. Identifier names are split on camelCase and
// snake_case boundaries first so "listPublicIssues" carries its tokens.
// An absent description contributes nothing.
func Classify(e entity.Entity) Evidence {
	text := tokenSurface(e)
	return Evidence{
		PublicAccess:      matchesAny(publicAccessPatterns, text),
		ContentProcessing: matchesAny(contentProcessingPatterns, text),
		PrivateAccess:     matchesAny(privateAccessPatterns, text),
		Exfiltration:      matchesAny(exfiltrationPatterns, text),
	}
}

func matchesAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
