// Package approval runs the interactive confirmation flow for
// whitelisting a changed entity description. Non-interactive sessions
// auto-deny: a whitelist entry is only ever created by a human at a
// terminal.
package approval

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

type Result struct {
	Approved   bool
	UserAction string
}

// Prompt carries everything the operator needs to judge a description
// change before approving its digest.
type Prompt struct {
	Server      string
	Kind        string
	Name        string
	Digest      string
	Description string
	Previous    string
	Issues      []string
}

func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func Ask(p Prompt) Result {
	if !IsInteractive() {
		return Result{
			Approved:   false,
			UserAction: "auto_deny_non_interactive",
		}
	}

	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "╔══════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(os.Stderr, "║              ⚠️  APPROVAL REQUIRED                            ║")
	fmt.Fprintln(os.Stderr, "╚══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintf(os.Stderr, "Entity:  %s %q on server %q\n", p.Kind, p.Name, p.Server)
	fmt.Fprintf(os.Stderr, "Digest:  %s\n", p.Digest)
	fmt.Fprintln(os.Stderr, "")

	if p.Previous != "" {
		fmt.Fprintln(os.Stderr, "Previous description:")
		printIndented(p.Previous)
		fmt.Fprintln(os.Stderr, "")
	}
	fmt.Fprintln(os.Stderr, "Current description:")
	printIndented(p.Description)
	fmt.Fprintln(os.Stderr, "")

	if len(p.Issues) > 0 {
		fmt.Fprintln(os.Stderr, "Detector findings on the current description:")
		for _, issue := range p.Issues {
			fmt.Fprintf(os.Stderr, "  • %s\n", issue)
		}
		fmt.Fprintln(os.Stderr, "")
	}

	fmt.Fprintln(os.Stderr, "Options:")
	fmt.Fprintln(os.Stderr, "  [a] Approve - whitelist this digest; future scans accept it")
	fmt.Fprintln(os.Stderr, "  [d] Deny - keep flagging this change")
	fmt.Fprintln(os.Stderr, "")

	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Fprint(os.Stderr, "Your choice [a/d]: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return Result{
				Approved:   false,
				UserAction: "error_reading_input",
			}
		}

		input = strings.TrimSpace(strings.ToLower(input))

		switch input {
		case "a", "approve", "yes", "y":
			return Result{
				Approved:   true,
				UserAction: "approve",
			}
		case "d", "deny", "no", "n":
			return Result{
				Approved:   false,
				UserAction: "deny",
			}
		default:
			fmt.Fprintln(os.Stderr, "Invalid input. Please enter 'a' to approve or 'd' to deny.")
		}
	}
}

func printIndented(text string) {
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(os.Stderr, "    %s\n", line)
	}
}
