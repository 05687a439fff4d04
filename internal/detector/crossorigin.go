package detector

import "github.com/mcpwarden/mcpwarden/internal/entity"

// crossOriginSignatures flags descriptions that reach across tool or
// server boundaries: shadowing another tool's behavior, redirecting its
// traffic, or declaring side effects on entities this server does not own.
var crossOriginSignatures = []Signature{
	sig(entity.KindCrossOriginEscalation, entity.SeverityHigh,
		`(important\s+)?side\s+effects?\s+on\s+(the\s+)?`,
		"Describes side effects on other tools"),
	sig(entity.KindCrossOriginEscalation, entity.SeverityHigh,
		`when\s+this\s+tool\s+is\s+(available|present|installed)[^.]{0,80}\bmust\b`,
		"Conditional override when this tool is present"),
	sig(entity.KindCrossOriginEscalation, entity.SeverityHigh,
		`(mcp_tool_|tool_)\w+\s+(must|should|will)\s+`,
		"Direct instruction aimed at another tool"),
	sig(entity.KindCrossOriginEscalation, entity.SeverityHigh,
		`send\s+all\s+(emails?|messages?|requests?|data)\s+to\b`,
		"Instruction to redirect all traffic"),
	sig(entity.KindCrossOriginEscalation, entity.SeverityMedium,
		`instead\s+of\s+(the\s+)?(original|official|built-?in)\s+(tool|server)`,
		"Tool shadowing: replace the original tool"),
	sig(entity.KindCrossOriginEscalation, entity.SeverityMedium,
		`(all\s+)?other\s+(tools?|servers?)\s+(are|is)\s+(deprecated|broken|unsafe)`,
		"Disparaging other tools to capture their calls"),
	sig(entity.KindCrossOriginEscalation, entity.SeverityMedium,
		`always\s+(use|prefer|call)\s+this\s+tool\s+(first|instead)`,
		"Priority capture over sibling tools"),
}

// NewCrossOriginDetector detects cross-service reference and shadowing
// phrasing in a single entity. Batch-level fuzzy cross-referencing
// between namespaces lives in the xref package.
func NewCrossOriginDetector() *SignatureDetector {
	return NewSignatureDetector("crossorigin", crossOriginSignatures)
}
