package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// IsIgnoredDir reports whether a directory entry must be skipped while walking
// the problem repository: hidden directories (.git, .cache, ...) are always
// skipped, other names only if they appear in the denylist.
func IsIgnoredDir(name string, denylist []string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, ignored := range denylist {
		if name == ignored {
			return true
		}
	}
	return false
}

// ListSubdirs returns the names of the directories directly inside dir that
// are not ignored. Symlinks to directories count as directories. The order is
// the one returned by the file system.
func ListSubdirs(dir string, denylist []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if IsIgnoredDir(entry.Name(), denylist) {
			continue
		}
		if !entry.IsDir() {
			if entry.Type()&os.ModeSymlink == 0 {
				continue
			}
			// Follow the link to see where it points
			info, err := os.Stat(filepath.Join(dir, entry.Name()))
			if err != nil || !info.IsDir() {
				continue
			}
		}
		names = append(names, entry.Name())
	}
	return names, nil
}
