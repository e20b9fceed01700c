package executor

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// mergeEnv overlays each map in order on top of base. Later overlays win.
func mergeEnv(base []string, overlays ...map[string]string) []string {
	merged := map[string]string{}
	for _, ov := range overlays {
		for k, v := range ov {
			if strings.TrimSpace(k) == "" {
				continue
			}
			merged[k] = v
		}
	}
	if len(merged) == 0 {
		return base
	}

	out := make([]string, 0, len(base)+len(merged))
	for _, kv := range base {
		k, _, _ := strings.Cut(kv, "=")
		if _, ok := merged[k]; ok {
			continue
		}
		out = append(out, kv)
	}
	for k, v := range merged {
		out = append(out, k+"="+v)
	}
	return out
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, p[1:]), nil
}

// resolveDir picks the command's own directory, then the caller default.
// An empty result means the child inherits our working directory.
func resolveDir(commandDir, defaultDir string) (string, error) {
	dir := strings.TrimSpace(commandDir)
	if dir == "" {
		dir = strings.TrimSpace(defaultDir)
	}
	if dir == "" {
		return "", nil
	}
	dir, err := expandHome(dir)
	if err != nil {
		return "", err
	}
	return filepath.Abs(dir)
}

// decodeOutput turns captured bytes into text, replacing invalid UTF-8
// sequences with U+FFFD instead of failing.
func decodeOutput(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	if utf8.Valid(b) {
		return string(b)
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "\uFFFD")
	}
	return string(out)
}
