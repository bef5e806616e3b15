package build

import (
	"path/filepath"
	"strings"
)

const defaultsName = "defaults"

// profile file extensions, in lookup order
var extensions = []string{".yaml", ".yml", ".json"}

// Paths helper for the defaults and profile files.
type Paths struct {
	Dir string // profile directory, e.g. ./profiles
}

// DefaultPath returns the path of the defaults file.
func (p Paths) DefaultPath() string {
	return filepath.Join(p.Dir, defaultsName+".yaml")
}

// Candidates returns the file paths tried for a profile, in order.
func (p Paths) Candidates(name string) []string {
	out := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		out = append(out, filepath.Join(p.Dir, name+ext))
	}
	return out
}

// validName rejects names that would escape the profile directory.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

// profileID strips a known extension; ok is false for other files.
func profileID(file string) (string, bool) {
	ext := filepath.Ext(file)
	for _, e := range extensions {
		if strings.EqualFold(ext, e) {
			return strings.TrimSuffix(file, ext), true
		}
	}
	return "", false
}
