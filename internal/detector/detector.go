// Package detector implements the stateless signature-matching layer.
// Each risk category owns an ordered table of signatures evaluated
// against a normalized surface built from an entity's name, description,
// and canonicalized input schema. Matching is case-insensitive and
// exhaustive: every distinct match within a category is reported, not
// just the first, so the audit trail is complete.
package detector

import "github.com/mcpwarden/mcpwarden/internal/entity"

// Detector is the interface every detection layer implements. A detector
// that only understands one of the two granularities treats the other as
// a no-op returning an empty (verified) result.
type Detector interface {
	// Name returns the detector's identifier (e.g., "injection", "toxicflow").
	Name() string

	// EvaluateEntity inspects a single entity's declared metadata.
	EvaluateEntity(e entity.Entity) entity.ScanResult

	// EvaluateSequence inspects an ordered window of entities.
	EvaluateSequence(window []entity.Entity) entity.ScanResult
}

// NoSequence is embedded by entity-only detectors.
type NoSequence struct{}

func (NoSequence) EvaluateSequence([]entity.Entity) entity.ScanResult {
	return entity.NewScanResult(nil)
}

// NoEntity is embedded by sequence-only detectors.
type NoEntity struct{}

func (NoEntity) EvaluateEntity(entity.Entity) entity.ScanResult {
	return entity.NewScanResult(nil)
}

// SignatureDetector is the generic category detector: a name plus an
// ordered signature table. All built-in entity detectors are instances
// of this, optionally extended with category-specific checks.
type SignatureDetector struct {
	NoSequence
	name       string
	signatures []Signature
	// extra runs after signature matching for checks a regex table
	// cannot express (schema heuristics, shell parsing, rune scanning).
	extra func(e entity.Entity, s Surface) []entity.Issue
}

// NewSignatureDetector builds a detector from a signature table.
func NewSignatureDetector(name string, signatures []Signature) *SignatureDetector {
	return &SignatureDetector{name: name, signatures: signatures}
}

func (d *SignatureDetector) Name() string { return d.name }

// Append adds signatures to the end of the table (used by signature packs).
func (d *SignatureDetector) Append(sigs ...Signature) {
	d.signatures = append(d.signatures, sigs...)
}

// EvaluateEntity matches every signature in the table against the
// entity's surface. Absence of a description yields no evidence, never
// an error.
func (d *SignatureDetector) EvaluateEntity(e entity.Entity) entity.ScanResult {
	surface := BuildSurface(e)
	issues := MatchAll(d.signatures, surface)
	if d.extra != nil {
		issues = append(issues, d.extra(e, surface)...)
	}
	return entity.NewScanResult(issues)
}
