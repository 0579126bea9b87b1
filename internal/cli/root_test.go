package cli

import "testing"

func TestIsNestedDetectsMuxkitEnv(t *testing.T) {
	t.Setenv("MUXKIT", "123")
	t.Setenv("TMUX", "")
	if !isNested() {
		t.Fatalf("isNested() = false, want true with MUXKIT set")
	}
}

func TestIsNestedDetectsTmuxEnv(t *testing.T) {
	t.Setenv("MUXKIT", "")
	t.Setenv("TMUX", "/tmp/tmux-0/default,123,0")
	if !isNested() {
		t.Fatalf("isNested() = false, want true with TMUX set")
	}
}

func TestIsNestedFalseWhenUnset(t *testing.T) {
	t.Setenv("MUXKIT", "")
	t.Setenv("TMUX", "")
	if isNested() {
		t.Fatalf("isNested() = true, want false with neither set")
	}
}

func TestNestingRefusedIsNonZeroExit(t *testing.T) {
	err := nestingRefused()
	ue, ok := err.(*usageError)
	if !ok {
		t.Fatalf("nestingRefused() did not return *usageError")
	}
	if ue.code == 0 {
		t.Fatalf("nestingRefused() exit code = 0, want non-zero")
	}
}
