package detector

import "github.com/mcpwarden/mcpwarden/internal/entity"

// escalationSignatures covers privilege-escalation commands and grant
// idioms appearing in entity metadata.
var escalationSignatures = []Signature{
	sig(entity.KindPrivilegeEscalation, entity.SeverityHigh,
		`\bsudo\s+`, "References sudo invocation"),
	sig(entity.KindPrivilegeEscalation, entity.SeverityHigh,
		`\bchmod\s+(\+s|4[0-7]{3}|u\+s)`, "Setuid permission change"),
	sig(entity.KindPrivilegeEscalation, entity.SeverityHigh,
		`\bchown\s+root\b`, "Ownership transfer to root"),
	sig(entity.KindPrivilegeEscalation, entity.SeverityHigh,
		`run\s+as\s+(root|administrator|admin)`, "Run-as-root instruction"),
	sig(entity.KindPrivilegeEscalation, entity.SeverityHigh,
		`(grant|give|assign)\s+(me\s+|it\s+|yourself\s+)?(admin|root|elevated|full)\s+(access|privileges?|permissions?|rights)`,
		"Privilege grant instruction"),
	sig(entity.KindPrivilegeEscalation, entity.SeverityMedium,
		`(escalate|elevate)\s+(your\s+|the\s+)?privileges?`,
		"Explicit privilege escalation"),
	sig(entity.KindPrivilegeEscalation, entity.SeverityMedium,
		`(bypass|disable|skip)\s+(the\s+)?(auth|authentication|authorization|permission)`,
		"Authentication bypass instruction"),
	sig(entity.KindPrivilegeEscalation, entity.SeverityMedium,
		`add\s+(me|user|yourself)\s+to\s+(the\s+)?(sudoers|wheel|admin)`,
		"Sudoers/admin group modification"),
	sig(entity.KindPrivilegeEscalation, entity.SeverityMedium,
		`\bsetcap\s+`, "Capability grant via setcap"),
	sig(entity.KindPrivilegeEscalation, entity.SeverityMedium,
		`--privileged\b`, "Privileged container flag"),
}

// NewEscalationDetector detects privilege-escalation commands and
// authority-grant idioms.
func NewEscalationDetector() *SignatureDetector {
	return NewSignatureDetector("escalation", escalationSignatures)
}
