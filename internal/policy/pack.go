package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mcpwarden/mcpwarden/internal/detector"
	"github.com/mcpwarden/mcpwarden/internal/entity"
)

// SignaturePack is an operator-authored YAML file of extra signature
// tuples merged into the engine at construction. Packs whose filename
// starts with "_" are present but disabled.
type SignaturePack struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Version     string          `yaml:"version"`
	Author      string          `yaml:"author"`
	Signatures  []PackSignature `yaml:"signatures"`
}

// PackSignature is one data-driven (kind, pattern, severity) tuple.
// Patterns match against the case-folded entity surface.
type PackSignature struct {
	Kind     string `yaml:"kind"`
	Severity string `yaml:"severity"`
	Pattern  string `yaml:"pattern"`
	Note     string `yaml:"note"`
}

// PackInfo summarizes one pack file for listing.
type PackInfo struct {
	Name           string
	Description    string
	Version        string
	Enabled        bool
	Path           string
	SignatureCount int
}

// validKinds is the stable issue-kind taxonomy packs may emit into.
var validKinds = map[entity.IssueKind]bool{
	entity.KindPromptInjection:       true,
	entity.KindToolPoisoning:         true,
	entity.KindCrossOriginEscalation: true,
	entity.KindDataExfiltration:      true,
	entity.KindContextManipulation:   true,
	entity.KindPrivilegeEscalation:   true,
	entity.KindSensitiveDataPattern:  true,
	entity.KindEncodedExfiltration:   true,
	entity.KindSteganographyExfil:    true,
}

// LoadPacks reads every .yaml/.yml file in dir and compiles the enabled
// packs' signatures. A missing directory means no packs. A pack that
// fails to parse is reported in the infos and skipped; one broken pack
// must not take down the scan.
func LoadPacks(dir string) ([]detector.Signature, []PackInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read packs directory: %w", err)
	}

	var signatures []detector.Signature
	var infos []PackInfo

	for _, entry := range entries {
		if entry.IsDir() || !isYAMLFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		baseName := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		enabled := !strings.HasPrefix(baseName, "_")

		pack, err := loadPack(path)
		if err != nil {
			infos = append(infos, PackInfo{Name: baseName, Enabled: enabled, Path: path})
			continue
		}

		info := PackInfo{
			Name:           pack.Name,
			Description:    pack.Description,
			Version:        pack.Version,
			Enabled:        enabled,
			Path:           path,
			SignatureCount: len(pack.Signatures),
		}
		if info.Name == "" {
			info.Name = baseName
		}
		infos = append(infos, info)

		if !enabled {
			continue
		}
		signatures = append(signatures, compilePack(pack)...)
	}

	return signatures, infos, nil
}

func loadPack(path string) (*SignaturePack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pack SignaturePack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parse pack %s: %w", path, err)
	}
	return &pack, nil
}

// compilePack turns pack tuples into compiled signatures, dropping
// entries with an unknown kind or an invalid pattern.
func compilePack(pack *SignaturePack) []detector.Signature {
	var out []detector.Signature
	for _, ps := range pack.Signatures {
		kind := entity.IssueKind(ps.Kind)
		if !validKinds[kind] {
			continue
		}
		// Compile the pattern as written; lowercasing it would flip
		// negated classes like \S and \W into their complements.
		re, err := regexp.Compile("(?i:" + ps.Pattern + ")")
		if err != nil {
			continue
		}
		severity := entity.Severity(ps.Severity)
		switch severity {
		case entity.SeverityLow, entity.SeverityMedium, entity.SeverityHigh:
		default:
			severity = entity.SeverityMedium
		}
		note := ps.Note
		if note == "" {
			note = fmt.Sprintf("Custom signature from pack %q", pack.Name)
		}
		out = append(out, detector.Signature{
			Kind:     kind,
			Severity: severity,
			Pattern:  re,
			Note:     note,
		})
	}
	return out
}

func isYAMLFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
