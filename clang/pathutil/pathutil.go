package pathutil

import (
	"path/filepath"
)

// Canonical makes uri absolute relative to baseDir.
func Canonical(baseDir string, uri string) string {
	if filepath.IsAbs(uri) {
		return filepath.Clean(uri)
	}
	return filepath.Join(baseDir, uri)
}

// CanonicalAll applies Canonical to every uri.
func CanonicalAll(baseDir string, uris []string) []string {
	if len(uris) == 0 {
		return nil
	}
	ret := make([]string, len(uris))
	for i, uri := range uris {
		ret[i] = Canonical(baseDir, uri)
	}
	return ret
}
