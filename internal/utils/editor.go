package utils

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/kballard/go-shellquote"
)

// editorCommand splits $EDITOR so values such as "code --wait" work. On
// Windows if $EDITOR is not set it falls back to notepad; elsewhere to vi.
func editorCommand() ([]string, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		if runtime.GOOS == "windows" {
			return []string{"notepad"}, nil
		}
		return []string{"vi"}, nil
	}
	words, err := shellquote.Split(editor)
	if err != nil {
		return nil, fmt.Errorf("parse $EDITOR: %w", err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("parse $EDITOR: empty command")
	}
	return words, nil
}

// OpenEditor opens the given file in the user's preferred editor.
func OpenEditor(path string) error {
	words, err := editorCommand()
	if err != nil {
		return err
	}
	cmd := exec.Command(words[0], append(words[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("open editor: %w", err)
	}
	return nil
}

// EditText writes initial to a temporary file, opens it in the editor and
// returns the saved contents.
func EditText(initial string) (string, error) {
	f, err := os.CreateTemp("", "devflow-*.sh")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	defer func() { _ = os.Remove(path) }()
	if _, err := f.WriteString(initial); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	if err := OpenEditor(path); err != nil {
		return "", err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read edited file: %w", err)
	}
	return string(b), nil
}
