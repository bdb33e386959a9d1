package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// rootMarkers identify a data directory.
var rootMarkers = []string{".syllabus", ".git", "syllabus.db"}

// FindRoot walks up from startDir to the first directory holding a root
// marker (.syllabus, .git or syllabus.db) and returns its absolute path.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		for _, marker := range rootMarkers {
			if hasFile(dir, marker) {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("root not found")
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
