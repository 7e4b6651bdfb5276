package fillreporttemplate

import (
	"fmt"
	"path/filepath"
	"strings"
)

// resolveWithin returns p as a clean path inside dir. Relative paths are
// taken from dir. Paths that leave dir, or dir itself, are rejected.
// Symbolic links are not followed.
func resolveWithin(dir, p string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("no directory configured for %q", p)
	}
	base, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(base, p)
	}
	p = filepath.Clean(p)

	rel, err := filepath.Rel(base, p)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q is outside %s", p, dir)
	}
	return p, nil
}
