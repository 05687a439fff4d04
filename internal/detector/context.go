package detector

import "github.com/mcpwarden/mcpwarden/internal/entity"

// contextSignatures covers manipulation of the agent's conversational
// frame: authority claims, manufactured urgency, stealth instructions,
// and role/context resets.
var contextSignatures = []Signature{
	// Authority / urgency manipulation
	sig(entity.KindContextManipulation, entity.SeverityMedium,
		`(very\s+){2,}important`, "Emphatic coercion (repeated emphasis)"),
	sig(entity.KindContextManipulation, entity.SeverityMedium,
		`(urgent|immediately|right\s+now)[^.]{0,40}(must|required|mandatory)`,
		"Manufactured urgency"),
	sig(entity.KindContextManipulation, entity.SeverityMedium,
		`(as|by)\s+(your\s+)?(administrator|developer|creator|owner)`,
		"False authority claim"),
	sig(entity.KindContextManipulation, entity.SeverityMedium,
		`this\s+is\s+an?\s+(official|authorized|verified)\s+(request|instruction)`,
		"False authorization claim"),
	sig(entity.KindContextManipulation, entity.SeverityMedium,
		`the\s+application\s+will\s+crash`, "Fake crash threat to coerce behavior"),
	sig(entity.KindContextManipulation, entity.SeverityMedium,
		`all\s+data\s+will\s+be\s+lost`, "Fake data-loss threat to coerce behavior"),
	sig(entity.KindContextManipulation, entity.SeverityMedium,
		`(could|might|will)\s+(upset|scare|confuse|alarm|worry)\s+the\s+user`,
		"Social engineering around the user's reaction"),

	// Stealth instructions
	sig(entity.KindContextManipulation, entity.SeverityHigh,
		`do\s+not\s+(mention|tell|inform|reveal|show|display|say)`,
		"Instruction to hide behavior from the user"),
	sig(entity.KindContextManipulation, entity.SeverityHigh,
		`don'?t\s+(mention|tell|inform|reveal|show|display|say)`,
		"Instruction to hide behavior from the user"),
	sig(entity.KindContextManipulation, entity.SeverityMedium,
		`(mere|just\s+an?|simply\s+an?)\s+(implementation|technical)\s+(detail|requirement)`,
		"Minimizing suspicious behavior as implementation detail"),

	// Role / context reset
	sig(entity.KindContextManipulation, entity.SeverityHigh,
		`(forget|reset|clear)\s+(your\s+)?(context|memory|conversation|history)`,
		"Context reset instruction"),
	sig(entity.KindContextManipulation, entity.SeverityHigh,
		`you\s+are\s+(now|no\s+longer)\s+`, "Role reassignment phrasing"),
	sig(entity.KindContextManipulation, entity.SeverityMedium,
		`(pretend|act\s+as\s+if)\s+(you|the\s+assistant)`,
		"Role-play reframing"),
	sig(entity.KindContextManipulation, entity.SeverityMedium,
		`start\s+a\s+new\s+(session|conversation)`, "Session reset instruction"),
}

// NewContextDetector detects context and role manipulation: authority or
// urgency pressure, stealth instructions, and conversational resets.
func NewContextDetector() *SignatureDetector {
	return NewSignatureDetector("context", contextSignatures)
}
