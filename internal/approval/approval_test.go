package approval

import "testing"

func TestAsk_AutoDeniesWithoutTerminal(t *testing.T) {
	// Test processes have no TTY on stdin, so the prompt must refuse
	// rather than hang.
	result := Ask(Prompt{
		Server: "github",
		Kind:   "tool",
		Name:   "create_issue",
		Digest: "abc123",
	})
	if result.Approved {
		t.Fatal("non-interactive approval must auto-deny")
	}
	if result.UserAction != "auto_deny_non_interactive" {
		t.Errorf("expected auto_deny_non_interactive, got %q", result.UserAction)
	}
}
