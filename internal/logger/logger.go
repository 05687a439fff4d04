// Package logger writes the scan audit trail: one JSON line per entity
// decision. Description snippets pass through secret redaction before
// they hit disk, so a scan of a poisoned tool does not itself leak the
// credentials the tool was trying to harvest.
package logger

import (
	"encoding/json"
	"os"
	"sync"
)

// ScanEvent is one audit record.
type ScanEvent struct {
	Timestamp  string   `json:"timestamp"`
	Server     string   `json:"server"`
	EntityKind string   `json:"entity_kind"`
	EntityName string   `json:"entity_name"`
	Verified   bool     `json:"verified"`
	IssueKinds []string `json:"issue_kinds,omitempty"`
	Severity   string   `json:"severity,omitempty"`
	Changed    bool     `json:"changed,omitempty"`
	Snippet    string   `json:"snippet,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// AuditLogger appends JSONL events to a single file.
type AuditLogger struct {
	file *os.File
	mu   sync.Mutex
}

// New opens (or creates) the audit log for appending.
func New(path string) (*AuditLogger, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	return &AuditLogger{file: file}, nil
}

// Log redacts and appends one event.
func (l *AuditLogger) Log(event ScanEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	event.Snippet = Redact(event.Snippet)
	if event.Error != "" {
		event.Error = Redact(event.Error)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = l.file.Write(data)
	return err
}

func (l *AuditLogger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
