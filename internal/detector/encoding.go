package detector

import (
	"fmt"

	"github.com/mcpwarden/mcpwarden/internal/entity"
)

// encodingSignatures covers encoded-payload shapes: instructions to
// encode data before moving it, and literal blobs large enough to be
// carrying a payload rather than an example.
var encodingSignatures = []Signature{
	sig(entity.KindEncodedExfiltration, entity.SeverityHigh,
		`encode\s+(it|the|this|data)?\s*(as|in|to|with)\s*(base64|base32|hex|rot13)`,
		"Instruction to encode data before sending"),
	sig(entity.KindEncodedExfiltration, entity.SeverityHigh,
		`(base64|base32)\s*(-d|--decode|decode)`,
		"Decode step for a smuggled payload"),
	sig(entity.KindEncodedExfiltration, entity.SeverityMedium,
		`\b[a-z0-9+/]{80,}={0,2}\b`,
		"Long base64-like blob in entity metadata"),
	sig(entity.KindEncodedExfiltration, entity.SeverityMedium,
		`\b(?:[0-9a-f]{2}){40,}\b`,
		"Long hex blob in entity metadata"),
	sig(entity.KindEncodedExfiltration, entity.SeverityMedium,
		`data:[a-z]+/[a-z0-9.+-]+;base64,`,
		"Inline base64 data URI"),
	sig(entity.KindEncodedExfiltration, entity.SeverityMedium,
		`\\u00[0-9a-f]{2}\\u00[0-9a-f]{2}`,
		"Escaped-unicode obfuscation run"),
}

// invisibleRuneCategory classifies characters that can smuggle hidden
// instructions past human review: invisible to display, present to the
// model.
func invisibleRuneCategory(r rune) string {
	switch r {
	case '\u200B', // ZERO WIDTH SPACE
		'\u200C', // ZERO WIDTH NON-JOINER
		'\u200D', // ZERO WIDTH JOINER
		'\uFEFF', // ZERO WIDTH NO-BREAK SPACE (BOM)
		'\u2060', // WORD JOINER
		'\u180E', // MONGOLIAN VOWEL SEPARATOR
		'\u200E', // LEFT-TO-RIGHT MARK
		'\u200F': // RIGHT-TO-LEFT MARK
		return "zero-width"
	case '\u202A', // LEFT-TO-RIGHT EMBEDDING
		'\u202B', // RIGHT-TO-LEFT EMBEDDING
		'\u202C', // POP DIRECTIONAL FORMATTING
		'\u202D', // LEFT-TO-RIGHT OVERRIDE
		'\u202E', // RIGHT-TO-LEFT OVERRIDE
		'\u2066', // LEFT-TO-RIGHT ISOLATE
		'\u2067', // RIGHT-TO-LEFT ISOLATE
		'\u2068', // FIRST STRONG ISOLATE
		'\u2069': // POP DIRECTIONAL ISOLATE
		return "bidi-override"
	}
	if r >= 0xE0001 && r <= 0xE007F {
		return "tag-char"
	}
	return ""
}

// NewEncodingDetector detects encoded-payload shapes and invisible
// Unicode steganography in entity metadata.
func NewEncodingDetector() *SignatureDetector {
	d := NewSignatureDetector("encoding", encodingSignatures)
	d.extra = func(e entity.Entity, s Surface) []entity.Issue {
		counts := map[string]int{}
		first := map[string]rune{}
		for _, r := range s.Raw {
			cat := invisibleRuneCategory(r)
			if cat == "" {
				continue
			}
			if counts[cat] == 0 {
				first[cat] = r
			}
			counts[cat]++
		}
		var issues []entity.Issue
		for _, cat := range []string{"zero-width", "bidi-override", "tag-char"} {
			n := counts[cat]
			if n == 0 {
				continue
			}
			issues = append(issues, entity.Issue{
				Kind:     entity.KindSteganographyExfil,
				Message:  fmt.Sprintf("%d invisible %s character(s) hidden in entity metadata", n, cat),
				Severity: entity.SeverityHigh,
				Details: map[string]string{
					"category":  cat,
					"codepoint": fmt.Sprintf("U+%04X", first[cat]),
					"count":     fmt.Sprintf("%d", n),
				},
			})
		}
		return issues
	}
	return d
}
