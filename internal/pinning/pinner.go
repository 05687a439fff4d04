package pinning

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mcpwarden/mcpwarden/internal/entity"
)

// PinRecord is the stored baseline for one entity. It always reflects
// the most recent scan, overwritten on every sighting regardless of
// outcome, so drift detection is single-step: any one change is caught,
// slow multi-scan drift that never differs from its immediate
// predecessor is not.
type PinRecord struct {
	Digest      string      `json:"digest"`
	Kind        entity.Kind `json:"kind"`
	Verified    bool        `json:"verified"`
	Timestamp   time.Time   `json:"timestamp"`
	Description string      `json:"description,omitempty"`
}

// Result is what one CheckAndUpdate call reports.
type Result struct {
	Changed             bool      `json:"changed"`
	FirstSeen           bool      `json:"firstSeen"`
	Whitelisted         bool      `json:"whitelisted"`
	Messages            []string  `json:"messages,omitempty"`
	PreviousDescription string    `json:"previousDescription,omitempty"`
	PreviousTimestamp   time.Time `json:"previousTimestamp,omitempty"`
}

// Pinner maintains the pin baseline and the operator whitelist on top
// of a Store. Logf receives soft-failure notices (a failed persist is
// logged and non-fatal); it defaults to a no-op.
type Pinner struct {
	store Store
	logf  func(format string, args ...any)
}

// NewPinner wraps a store. logf may be nil.
func NewPinner(store Store, logf func(format string, args ...any)) *Pinner {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Pinner{store: store, logf: logf}
}

// PinKey is the composite key a pin record is stored under.
func PinKey(server string, kind entity.Kind, name string) string {
	return server + "::" + string(kind) + "::" + name
}

func whitelistKey(kind entity.Kind, name string) string {
	return string(kind) + "::" + name
}

// CheckAndUpdate compares the entity's current description digest
// against the stored baseline and unconditionally advances the baseline
// to this scan's observation. A first sighting is recorded but never
// reported as a change. Store faults degrade to "no drift detectable
// this scan" instead of failing the scan.
func (p *Pinner) CheckAndUpdate(server string, e entity.Entity, verified bool) Result {
	var result Result
	digest := Digest(e.Description)
	key := PinKey(server, e.Kind, e.Name)

	previous, err := p.loadRecord(key)
	switch {
	case err == ErrNotFound:
		result.FirstSeen = true
	case err != nil:
		p.logf("pinning: load %s: %v (treating as first sighting)", key, err)
		result.FirstSeen = true
	case previous.Digest != digest:
		result.Changed = true
		result.PreviousDescription = previous.Description
		result.PreviousTimestamp = previous.Timestamp
		result.Messages = append(result.Messages, fmt.Sprintf(
			"description of %s %q on server %q changed since last scan at %s",
			e.Kind, e.Name, server, previous.Timestamp.Format(time.RFC3339)))
		result.Whitelisted = p.IsApproved(e.Kind, e.Name, digest)
		if result.Whitelisted {
			result.Messages = append(result.Messages, "new digest matches an operator-approved whitelist entry")
		}
	}

	record := PinRecord{
		Digest:      digest,
		Kind:        e.Kind,
		Verified:    verified,
		Timestamp:   time.Now().UTC(),
		Description: e.Description,
	}
	if err := p.saveRecord(key, record); err != nil {
		// Soft fail: drift detection is silently degraded, the scan is not.
		p.logf("pinning: persist %s: %v", key, err)
	}
	return result
}

// Approve records an operator-approved digest for an entity. Whitelist
// entries have a lifecycle independent of pin records and are created
// only by explicit operator action.
func (p *Pinner) Approve(kind entity.Kind, name, digest string) error {
	return p.store.Put(BucketWhitelist, whitelistKey(kind, name), []byte(digest))
}

// IsApproved reports whether digest is the operator-approved digest for
// the entity.
func (p *Pinner) IsApproved(kind entity.Kind, name, digest string) bool {
	stored, err := p.store.Get(BucketWhitelist, whitelistKey(kind, name))
	if err != nil {
		return false
	}
	return string(stored) == digest
}

// Records returns all pin records keyed by their composite key, for the
// pins listing command.
func (p *Pinner) Records() (map[string]PinRecord, error) {
	out := make(map[string]PinRecord)
	err := p.store.ForEach(BucketPins, func(key, value []byte) error {
		var rec PinRecord
		if err := json.Unmarshal(value, &rec); err != nil {
			return fmt.Errorf("decode pin record %s: %w", key, err)
		}
		out[string(key)] = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Pinner) loadRecord(key string) (PinRecord, error) {
	var rec PinRecord
	raw, err := p.store.Get(BucketPins, key)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, fmt.Errorf("decode pin record: %w", err)
	}
	return rec, nil
}

func (p *Pinner) saveRecord(key string, rec PinRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode pin record: %w", err)
	}
	return p.store.Put(BucketPins, key, raw)
}
