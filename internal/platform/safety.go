package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// DevDirName is the sandbox under os.TempDir used for dev and test runs.
const DevDirName = "syllabus-dev"

// IsDevRun reports whether the process was started by `go run` or `go test`.
// Both build their binaries under the system temp directory.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}

	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(os.TempDir())) {
		return true
	}

	return strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe")
}

// ResolveDataPath returns where data for userPath actually lives. With
// forceTemp set, paths outside the temp directory are re-rooted into the
// dev sandbox so experiments never touch a real data set.
func ResolveDataPath(userPath string, forceTemp bool) string {
	if !forceTemp {
		if userPath == "" {
			return "."
		}
		return userPath
	}

	clean := filepath.Clean(userPath)
	if rel, err := filepath.Rel(os.TempDir(), clean); err == nil && filepath.IsAbs(clean) && !strings.HasPrefix(rel, "..") {
		return clean
	}

	name := filepath.Base(clean)
	if userPath == "" || name == "." || name == string(os.PathSeparator) {
		name = "default"
	}

	return filepath.Join(os.TempDir(), DevDirName, name)
}
