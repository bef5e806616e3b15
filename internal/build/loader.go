package build

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/xtding233/dmgcalc/internal/damage"
)

// Loader reads profile files and merges defaults -> profile -> overrides.
// It is safe for concurrent use.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]Raw // key: profile name, or "$defaults"
}

var _ Resolver = (*Loader)(nil)

// NewLoader creates a loader for the given profile directory.
func NewLoader(dir string) *Loader {
	return &Loader{
		paths: Paths{Dir: dir},
		cache: make(map[string]Raw),
	}
}

// Dir returns the profile directory.
func (l *Loader) Dir() string { return l.paths.Dir }

// LoadRaw returns defaults merged with the named profile (without overrides).
// An empty name returns the defaults alone. The result must not be modified.
func (l *Loader) LoadRaw(name string) (Raw, error) {
	key := name
	if key == "" {
		key = "$defaults"
	} else if !validName(name) {
		return nil, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}

	l.mu.RLock()
	if cfg, ok := l.cache[key]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	def, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return nil, fmt.Errorf("read defaults: %w", err)
	}
	merged := def
	if name != "" {
		prof, err := l.readProfile(name)
		if err != nil {
			return nil, err
		}
		merged = Raw(merge(def, prof))
	}

	l.mu.Lock()
	l.cache[key] = merged
	l.mu.Unlock()
	return merged, nil
}

// Resolve merges defaults -> profile -> overrides, validates and coerces the result.
func (l *Loader) Resolve(name string, o Overrides) (Raw, damage.BuildConfig, error) {
	base, err := l.LoadRaw(name)
	if err != nil {
		return nil, damage.BuildConfig{}, err
	}
	merged := Raw(merge(base, o))
	if err := Validate(merged); err != nil {
		return nil, damage.BuildConfig{}, fmt.Errorf("profile %q: %w", name, err)
	}
	cfg, err := FromRaw(merged)
	if err != nil {
		return nil, damage.BuildConfig{}, err
	}
	return merged, cfg, nil
}

// Load is Resolve without the merged profile.
func (l *Loader) Load(name string, o Overrides) (damage.BuildConfig, error) {
	_, cfg, err := l.Resolve(name, o)
	return cfg, err
}

// List scans the profile directory. Files that cannot be read are skipped with
// a warning; the defaults file is not a profile.
func (l *Loader) List() ([]Profile, error) {
	entries, err := os.ReadDir(l.paths.Dir)
	if err != nil {
		return nil, fmt.Errorf("read profile dir: %w", err)
	}
	seen := make(map[string]bool)
	var out []Profile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		id, ok := profileID(e.Name())
		if !ok || id == defaultsName || seen[id] {
			continue
		}
		// first match in extension order wins, like readProfile
		path := l.firstExisting(id)
		if path == "" {
			path = filepath.Join(l.paths.Dir, e.Name())
		}
		raw, err := readYAML(path)
		if err != nil {
			slog.Warn("skipping unreadable profile", "path", path, "err", err)
			continue
		}
		seen[id] = true
		name, _ := raw["name"].(string)
		out = append(out, Profile{ID: id, Name: name, Path: path})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Invalidate clears the cache. Call after the watcher detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]Raw)
}

func (l *Loader) firstExisting(name string) string {
	for _, p := range l.paths.Candidates(name) {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (l *Loader) readProfile(name string) (Raw, error) {
	path := l.firstExisting(name)
	if path == "" {
		return nil, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}
	raw, err := readYAML(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %q: %w: %w", name, ErrInvalidProfile, err)
	}
	return raw, nil
}

// readYAML loads a YAML (or JSON) file into Raw. Missing files return an empty Raw, no error.
func readYAML(path string) (Raw, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Raw{}, nil
		}
		return nil, err
	}
	var raw Raw
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		raw = Raw{}
	}
	return raw, nil
}
