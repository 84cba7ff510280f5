package shared

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands a leading "~" in the given path to the current user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// PathCompletions returns directory entries completing the given path prefix.
//
// A prefix ending in a separator lists the directory itself; otherwise the
// parent directory is listed and filtered by the final path element. Used for
// the invalid-collection recovery flow, so unreadable directories yield an
// empty slice rather than an error.
func PathCompletions(prefix string) []string {
	expanded := ExpandPath(prefix)

	var parent, partial string
	if strings.HasSuffix(prefix, string(os.PathSeparator)) || prefix == "~" {
		parent = expanded
	} else {
		parent = filepath.Dir(expanded)
		partial = filepath.Base(expanded)
	}

	info, err := os.Stat(parent)
	if err != nil || !info.IsDir() {
		return []string{}
	}

	entries, err := os.ReadDir(parent)
	if err != nil {
		return []string{}
	}

	completions := []string{}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), partial) {
			completions = append(completions, filepath.Join(parent, entry.Name()))
		}
	}
	return completions
}
