// Package policy composes the detector set, the sequence analyzer, the
// pinning store, and the cross-reference detector into the single
// decision point callers consult. The engine holds no ambient state:
// everything it uses is passed in at construction.
package policy

import (
	"fmt"

	"github.com/mcpwarden/mcpwarden/internal/detector"
	"github.com/mcpwarden/mcpwarden/internal/entity"
	"github.com/mcpwarden/mcpwarden/internal/pinning"
	"github.com/mcpwarden/mcpwarden/internal/toxicflow"
	"github.com/mcpwarden/mcpwarden/internal/xref"
)

// Config assembles an engine. Zero values select the built-in detector
// set plus the sequence analyzer, the default history window, and no
// pinning.
type Config struct {
	// Detectors overrides the detector set. Nil means detector.Builtin()
	// plus the toxic-flow analyzer.
	Detectors []detector.Detector

	// ExtraSignatures are operator-supplied signature-pack tuples,
	// evaluated after the built-in tables.
	ExtraSignatures []detector.Signature

	// HistoryWindow bounds sequence evaluation to the most recent N
	// entities. Zero means toxicflow.DefaultWindow.
	HistoryWindow int

	// Pinner enables drift detection when non-nil.
	Pinner *pinning.Pinner
}

// Engine runs entity and sequence detectors and aggregates results.
// Detection is pure and synchronous; evaluations for different
// entities or sequences are safe to run concurrently. The pinning
// store is the only shared mutable state and expects a single writer.
type Engine struct {
	detectors []detector.Detector
	window    int
	pinner    *pinning.Pinner
}

// NewEngine builds an engine from explicit configuration.
func NewEngine(cfg Config) *Engine {
	detectors := cfg.Detectors
	if detectors == nil {
		detectors = append(detector.Builtin(), toxicflow.NewAnalyzer())
	} else {
		// Copy so appending pack signatures below cannot write into the
		// caller's backing array.
		detectors = append([]detector.Detector(nil), detectors...)
	}
	if len(cfg.ExtraSignatures) > 0 {
		detectors = append(detectors,
			detector.NewSignatureDetector("custom", cfg.ExtraSignatures))
	}
	window := cfg.HistoryWindow
	if window <= 0 {
		window = toxicflow.DefaultWindow
	}
	return &Engine{detectors: detectors, window: window, pinner: cfg.Pinner}
}

// EvaluateEntity runs every detector against one entity. Detectors are
// isolated: a panic in one category's matching is converted into a
// finding about the detector itself rather than suppressing the others.
func (e *Engine) EvaluateEntity(ent entity.Entity) entity.ScanResult {
	var issues []entity.Issue
	for _, d := range e.detectors {
		result := runIsolated(d.Name(), func() entity.ScanResult {
			return d.EvaluateEntity(ent)
		})
		issues = append(issues, result.Issues...)
	}
	return entity.NewScanResult(issues)
}

// EvaluateSequence runs the sequence-capable detectors over the history
// window, bounded to the most recent HistoryWindow entities.
func (e *Engine) EvaluateSequence(history []entity.Entity) entity.ScanResult {
	if len(history) > e.window {
		history = history[len(history)-e.window:]
	}
	var issues []entity.Issue
	for _, d := range e.detectors {
		result := runIsolated(d.Name(), func() entity.ScanResult {
			return d.EvaluateSequence(history)
		})
		issues = append(issues, result.Issues...)
	}
	return entity.NewScanResult(issues)
}

// runIsolated confines a detector fault to that detector's result.
func runIsolated(name string, fn func() entity.ScanResult) (result entity.ScanResult) {
	defer func() {
		if r := recover(); r != nil {
			result = entity.NewScanResult([]entity.Issue{{
				Kind:     entity.KindToolPoisoning,
				Message:  fmt.Sprintf("detector %q failed on this input: %v", name, r),
				Severity: entity.SeverityLow,
				Details:  map[string]string{"detector": name},
			}})
		}
	}()
	return fn()
}

// EntityReport is the per-entity slice of a batch scan.
type EntityReport struct {
	Server  string            `json:"server"`
	Entity  entity.Entity     `json:"entity"`
	Result  entity.ScanResult `json:"result"`
	Pinning *pinning.Result   `json:"pinning,omitempty"`
}

// BatchReport aggregates one scan batch: per-entity results, the
// sequence evaluation over the batch in order, and the batch-level
// cross-reference result.
type BatchReport struct {
	Entities []EntityReport    `json:"entities"`
	Sequence entity.ScanResult `json:"sequence"`
	CrossRef xref.Result       `json:"crossRef"`
}

// Verified reports whether the whole batch came back clean.
func (r BatchReport) Verified() bool {
	for _, er := range r.Entities {
		if !er.Result.Verified {
			return false
		}
	}
	return r.Sequence.Verified && !r.CrossRef.Found
}

// ScanBatch evaluates every entity in the batch, consults and advances
// the pinning baseline per entity, folds the whole batch in order
// through the sequence detectors, and runs the cross-reference detector
// once.
func (e *Engine) ScanBatch(batch []xref.ServerEntities) BatchReport {
	var report BatchReport
	var history []entity.Entity

	for _, group := range batch {
		for _, ent := range group.Entities {
			er := EntityReport{
				Server: group.Server,
				Entity: ent,
				Result: e.EvaluateEntity(ent),
			}
			if e.pinner != nil {
				pin := e.pinner.CheckAndUpdate(group.Server, ent, er.Result.Verified)
				er.Pinning = &pin
				// A changed digest overrides whatever the entity
				// detectors concluded, unless the operator approved the
				// new content.
				if pin.Changed && !pin.Whitelisted {
					er.Result = er.Result.Merge(entity.NewScanResult([]entity.Issue{{
						Kind:     entity.KindToolPoisoning,
						Message:  fmt.Sprintf("description of %q changed since the pinned baseline", ent.Name),
						Severity: entity.SeverityHigh,
						Details:  map[string]string{"previousTimestamp": pin.PreviousTimestamp.String()},
					}}))
				}
			}
			report.Entities = append(report.Entities, er)
			history = append(history, ent)
		}
	}

	report.Sequence = e.EvaluateSequence(history)
	report.CrossRef = xref.Detect(batch)
	return report
}
