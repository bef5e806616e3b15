package build

import (
	"errors"

	"github.com/xtding233/dmgcalc/internal/damage"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidProfile  = errors.New("invalid profile")
)

// Raw is a profile as decoded from disk: flat camelCase keys
// (physAtk, talent4Level, module3Enabled, ...) plus an optional display "name".
type Raw map[string]any

// Overrides are applied on top of the merged profile, same keys as Raw.
type Overrides map[string]any

// Profile describes one profile file found in the profile directory.
type Profile struct {
	ID   string `json:"id"`   // file name without extension
	Name string `json:"name"` // display name from the file, may be empty
	Path string `json:"path"`
}

// Resolver turns a profile name plus overrides into an evaluator input.
type Resolver interface {
	// Returns the merged Raw profile and the coerced BuildConfig
	Resolve(name string, o Overrides) (Raw, damage.BuildConfig, error)
}
