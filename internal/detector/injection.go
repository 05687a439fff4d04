package detector

import "github.com/mcpwarden/mcpwarden/internal/entity"

// injectionSignatures covers the three injection families: hidden markup
// tags, instruction-override phrasing, and jailbreak phrasing. Patterns
// are lowercase because surfaces are case-folded before matching.
var injectionSignatures = []Signature{
	// Hidden-tag injection
	sig(entity.KindPromptInjection, entity.SeverityHigh,
		`<\s*important\s*>`, "Hidden <IMPORTANT> tag in entity metadata"),
	sig(entity.KindPromptInjection, entity.SeverityHigh,
		`<\s*system\s*>`, "Hidden <SYSTEM> tag in entity metadata"),
	sig(entity.KindPromptInjection, entity.SeverityHigh,
		`<\s*instructions?\s*>`, "Hidden <INSTRUCTION> tag in entity metadata"),
	sig(entity.KindPromptInjection, entity.SeverityHigh,
		`<\s*secret\s*>`, "Hidden <SECRET> tag in entity metadata"),
	sig(entity.KindPromptInjection, entity.SeverityHigh,
		`<\s*hidden\s*>`, "Hidden <HIDDEN> tag in entity metadata"),
	sig(entity.KindPromptInjection, entity.SeverityMedium,
		`<!--[\s\S]*?(instruction|ignore|must|secret)[\s\S]*?-->`,
		"HTML comment carrying instructions"),

	// Instruction override
	sig(entity.KindPromptInjection, entity.SeverityHigh,
		`ignore\s+(all\s+|any\s+)?(previous|prior|above|earlier)\s+(instructions?|prompts?|rules?)`,
		"Instruction override: ignore previous instructions"),
	sig(entity.KindPromptInjection, entity.SeverityHigh,
		`disregard\s+(all\s+|any\s+)?(previous|prior|system)`,
		"Instruction override: disregard prior guidance"),
	sig(entity.KindPromptInjection, entity.SeverityHigh,
		`override\s+(all\s+)?(previous|system|safety)`,
		"Instruction override: override system instructions"),
	sig(entity.KindPromptInjection, entity.SeverityHigh,
		`ignore\s+(all\s+)?safety`, "Instruction override: ignore safety"),
	sig(entity.KindPromptInjection, entity.SeverityMedium,
		`new\s+instructions?\s*:`, "Inline replacement instructions"),

	// Jailbreak phrasing
	sig(entity.KindPromptInjection, entity.SeverityMedium,
		`\bdo\s+anything\s+now\b`, "Jailbreak phrasing: DAN"),
	sig(entity.KindPromptInjection, entity.SeverityMedium,
		`(without|no)\s+(any\s+)?(restrictions?|limitations?|filters?)`,
		"Jailbreak phrasing: remove restrictions"),
	sig(entity.KindPromptInjection, entity.SeverityMedium,
		`developer\s+mode`, "Jailbreak phrasing: developer mode"),
	sig(entity.KindPromptInjection, entity.SeverityMedium,
		`jailbr[eo]ak`, "Jailbreak phrasing: explicit jailbreak reference"),

	// Coercive pre-conditions
	sig(entity.KindPromptInjection, entity.SeverityHigh,
		`you\s+must\s+(first|always)\s+(read|fetch|call|run)`,
		"Coercive pre-condition instruction"),
	sig(entity.KindPromptInjection, entity.SeverityHigh,
		`before\s+using\s+this\s+tool[^.]{0,60}\bread\b`,
		"Pre-condition instruction to read files"),
	sig(entity.KindPromptInjection, entity.SeverityMedium,
		`otherwise\s+the\s+tool\s+will\s+not\s+work`,
		"Fake pre-condition threat"),
}

// NewInjectionDetector detects prompt injection hidden in descriptions
// and schemas: hidden tags, override phrasing, jailbreak idioms.
func NewInjectionDetector() *SignatureDetector {
	return NewSignatureDetector("injection", injectionSignatures)
}
