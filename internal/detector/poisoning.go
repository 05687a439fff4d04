package detector

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/mcpwarden/mcpwarden/internal/entity"
)

// poisoningSignatures covers behavioral-tampering idioms: code
// execution, network/filesystem side effects, and obfuscation tricks
// that have no business in a tool description.
var poisoningSignatures = []Signature{
	// Command / code-execution idiom
	sig(entity.KindToolPoisoning, entity.SeverityHigh,
		`\brm\s+-[a-z]*rf?\b`, "Destructive recursive delete idiom"),
	sig(entity.KindToolPoisoning, entity.SeverityHigh,
		`(curl|wget)\s[^|;&]{0,80}\|\s*(ba|z|da)?sh\b`,
		"Pipe-to-shell download idiom"),
	sig(entity.KindToolPoisoning, entity.SeverityHigh,
		`\beval\s*\(`, "Dynamic code evaluation"),
	sig(entity.KindToolPoisoning, entity.SeverityHigh,
		`\b(os\.system|subprocess\.|child_process|popen)\b`,
		"Embedded process-spawn API reference"),
	sig(entity.KindToolPoisoning, entity.SeverityMedium,
		`(execute|run)\s+(the\s+following|this)\s+(command|script|code)`,
		"Instruction to execute embedded code"),
	sig(entity.KindToolPoisoning, entity.SeverityHigh,
		`(send|forward|deliver)\s+a\s+(copy|duplicate)\s+(of\s+[^.]{0,40})?to\b`,
		"Covert duplicate-delivery instruction"),

	// Network / filesystem idiom
	sig(entity.KindToolPoisoning, entity.SeverityHigh,
		`/dev/tcp/`, "Bash network redirection device"),
	sig(entity.KindToolPoisoning, entity.SeverityHigh,
		`\bnc\s+(-[a-z]+\s+)*\d{1,3}(\.\d{1,3}){3}`,
		"Netcat connection to literal address"),
	sig(entity.KindToolPoisoning, entity.SeverityMedium,
		`(scp|rsync|sftp)\s+[^ ]+\s+\w+@`,
		"File transfer to remote host"),
	sig(entity.KindToolPoisoning, entity.SeverityMedium,
		`(write|append|modify)\s+(to\s+)?/etc/`,
		"System configuration write"),
	sig(entity.KindToolPoisoning, entity.SeverityMedium,
		`crontab|/etc/cron|systemctl\s+enable`,
		"Persistence mechanism reference"),

	// Obfuscation idiom
	sig(entity.KindToolPoisoning, entity.SeverityMedium,
		`\brev\s*\|`, "Reversed-string obfuscation"),
	sig(entity.KindToolPoisoning, entity.SeverityMedium,
		`\$\{ifs\}`, "IFS whitespace obfuscation"),
	sig(entity.KindToolPoisoning, entity.SeverityMedium,
		`('\+'|"\+"){2,}`, "String-concatenation command building"),
	sig(entity.KindToolPoisoning, entity.SeverityLow,
		`\\x[0-9a-f]{2}\\x[0-9a-f]{2}`, "Hex-escape obfuscation run"),
}

// shellInterpreters and downloaders drive the parsed-command check.
var shellInterpreters = map[string]bool{
	"sh": true, "bash": true, "zsh": true, "dash": true, "ksh": true,
}

var downloaders = map[string]bool{
	"curl": true, "wget": true,
}

// NewPoisoningDetector detects behavioral-tampering idioms. Beyond the
// signature table it parses command-looking lines with a real shell
// parser, which catches pipelines regex misses once flags are reordered
// or quoted.
func NewPoisoningDetector() *SignatureDetector {
	d := NewSignatureDetector("poisoning", poisoningSignatures)
	d.extra = func(e entity.Entity, s Surface) []entity.Issue {
		return scanEmbeddedCommands(e.Description)
	}
	return d
}

// scanEmbeddedCommands extracts command-looking lines from a description
// and parses them as shell. A line that fails to parse is simply not a
// command, never an error.
func scanEmbeddedCommands(description string) []entity.Issue {
	if description == "" {
		return nil
	}
	var issues []entity.Issue
	parser := syntax.NewParser()
	for _, line := range strings.Split(description, "\n") {
		line = strings.Trim(line, "`$ \t")
		if !looksLikeCommand(line) {
			continue
		}
		file, err := parser.Parse(strings.NewReader(line), "")
		if err != nil {
			continue
		}
		issues = append(issues, inspectParsedLine(file, line)...)
	}
	return issues
}

// looksLikeCommand is a cheap pre-filter so prose is not fed to the
// shell parser.
func looksLikeCommand(line string) bool {
	if line == "" || len(line) > 500 {
		return false
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	head := fields[0]
	if shellInterpreters[head] || downloaders[head] {
		return true
	}
	switch head {
	case "rm", "nc", "chmod", "python", "python3", "eval", "base64":
		return true
	}
	return strings.Contains(line, "|") && (strings.Contains(line, "curl") ||
		strings.Contains(line, "wget") || strings.Contains(line, "base64"))
}

// inspectParsedLine walks one parsed shell line and flags dangerous
// executables and download→execute pipelines.
func inspectParsedLine(file *syntax.File, line string) []entity.Issue {
	var execs []string
	syntax.Walk(file, func(node syntax.Node) bool {
		call, ok := node.(*syntax.CallExpr)
		if !ok || len(call.Args) == 0 {
			return true
		}
		if lit := call.Args[0].Lit(); lit != "" {
			execs = append(execs, lit)
		}
		return true
	})

	var issues []entity.Issue
	sawDownloader := false
	for _, exe := range execs {
		switch {
		case downloaders[exe]:
			sawDownloader = true
		case shellInterpreters[exe] && sawDownloader:
			issues = append(issues, entity.Issue{
				Kind:     entity.KindToolPoisoning,
				Message:  "Download-then-execute pipeline embedded in description",
				Severity: entity.SeverityHigh,
				Details:  map[string]string{"command": line},
			})
		case exe == "nc" || exe == "ncat":
			issues = append(issues, entity.Issue{
				Kind:     entity.KindToolPoisoning,
				Message:  fmt.Sprintf("Embedded command invokes %s", exe),
				Severity: entity.SeverityHigh,
				Details:  map[string]string{"command": line},
			})
		case exe == "rm":
			issues = append(issues, entity.Issue{
				Kind:     entity.KindToolPoisoning,
				Message:  "Embedded command deletes files",
				Severity: entity.SeverityMedium,
				Details:  map[string]string{"command": line},
			})
		}
	}
	return issues
}
