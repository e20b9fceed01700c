package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// fakeEditor installs a shell script as $EDITOR.
func fakeEditor(t *testing.T, body string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake editor is a POSIX shell script")
	}
	scriptPath := filepath.Join(t.TempDir(), "fake-editor.sh")
	if err := os.WriteFile(scriptPath, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	if err := os.Chmod(scriptPath, 0o755); err != nil {
		t.Fatalf("chmod script: %v", err)
	}
	t.Setenv("EDITOR", scriptPath)
}

func TestOpenEditor_Success(t *testing.T) {
	d := t.TempDir()
	marker := filepath.Join(d, "marker.txt")
	fakeEditor(t, "printf 'ok' > \""+marker+"\"\nexit 0\n")

	if err := OpenEditor(filepath.Join(d, "dummy.txt")); err != nil {
		t.Fatalf("OpenEditor failed: %v", err)
	}
	b, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("marker not written: %v", err)
	}
	if strings.TrimSpace(string(b)) != "ok" {
		t.Fatalf("unexpected marker content: %q", string(b))
	}
}

func TestOpenEditor_Failure(t *testing.T) {
	fakeEditor(t, "exit 1\n")
	if err := OpenEditor(filepath.Join(t.TempDir(), "dummy.txt")); err == nil {
		t.Fatalf("expected error from failing editor, got nil")
	}
}

func TestOpenEditor_ArgumentsInEditorVariable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	d := t.TempDir()
	marker := filepath.Join(d, "marker.txt")
	t.Setenv("EDITOR", "sh -c 'printf \"$0\" > "+marker+"'")
	target := filepath.Join(d, "target.txt")
	if err := OpenEditor(target); err != nil {
		t.Fatalf("OpenEditor failed: %v", err)
	}
	b, _ := os.ReadFile(marker)
	if string(b) != target {
		t.Fatalf("expected editor to receive %s, got %q", target, string(b))
	}
}

func TestEditText(t *testing.T) {
	fakeEditor(t, "printf 'echo edited\\n' >> \"$1\"\n")
	out, err := EditText("# header\n")
	if err != nil {
		t.Fatalf("EditText: %v", err)
	}
	if out != "# header\necho edited\n" {
		t.Fatalf("unexpected edited text: %q", out)
	}
}

func TestConfirmReader(t *testing.T) {
	var sb strings.Builder
	if !ConfirmReader("delete?", strings.NewReader("Yes\n"), &sb) {
		t.Fatalf("expected yes")
	}
	if ConfirmReader("delete?", strings.NewReader("\n"), &sb) {
		t.Fatalf("expected default no")
	}
	if !strings.Contains(sb.String(), "[y/N]") {
		t.Fatalf("prompt not written: %q", sb.String())
	}
}

func TestPromptReader(t *testing.T) {
	if got := PromptReader("name", strings.NewReader("  bob \n")); got != "bob" {
		t.Fatalf("expected trimmed answer, got %q", got)
	}
}
