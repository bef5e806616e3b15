// Package history keeps the result of the previous run so the next one can be compared.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xtding233/dmgcalc/internal/damage"
)

// Snapshot is the persisted part of a result.
type Snapshot struct {
	Timestamp      time.Time `json:"timestamp"`
	Profile        string    `json:"profile,omitempty"`
	NonCritDamage  float64   `json:"nonCritDamage"`
	CritDamage     float64   `json:"critDamage"`
	ExpectedDamage float64   `json:"expectedDamage"`
	CritRate       float64   `json:"critRate"`
}

// FromResult captures r at time now.
func FromResult(r damage.Result, profile string, now time.Time) Snapshot {
	return Snapshot{
		Timestamp:      now.UTC(),
		Profile:        profile,
		NonCritDamage:  r.NonCritDamage,
		CritDamage:     r.CritDamage,
		ExpectedDamage: r.ExpectedDamage,
		CritRate:       r.EffectiveCritRate,
	}
}

// Load reads the snapshot at path. A missing file returns nil, nil.
func Load(path string) (*Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode history %s: %w", path, err)
	}
	return &s, nil
}

// Save replaces the snapshot at path via a temp file and rename.
func Save(path string, s Snapshot) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".history-*")
	if err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(b, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// Delta is the change of one metric against the previous run.
type Delta struct {
	Previous float64 `json:"previous"`
	Current  float64 `json:"current"`
	Abs      float64 `json:"abs"`
	// Percent is nil when Previous is 0.
	Percent *float64 `json:"percent,omitempty"`
}

func newDelta(prev, cur float64) Delta {
	d := Delta{Previous: prev, Current: cur, Abs: cur - prev}
	if prev != 0 {
		p := d.Abs / prev * 100
		d.Percent = &p
	}
	return d
}

// String formats like "+12.3 (+1.50%)".
func (d Delta) String() string {
	sign := ""
	if d.Abs >= 0 {
		sign = "+"
	}
	s := fmt.Sprintf("%s%.1f", sign, d.Abs)
	if d.Percent != nil {
		s += fmt.Sprintf(" (%s%.2f%%)", sign, *d.Percent)
	}
	return s
}

// Diff compares two snapshots metric by metric.
type Diff struct {
	Since          time.Time `json:"since"`
	NonCritDamage  Delta     `json:"nonCritDamage"`
	CritDamage     Delta     `json:"critDamage"`
	ExpectedDamage Delta     `json:"expectedDamage"`
	CritRate       Delta     `json:"critRate"`
}

// Compare returns the change from prev to cur.
func Compare(cur, prev Snapshot) Diff {
	return Diff{
		Since:          prev.Timestamp,
		NonCritDamage:  newDelta(prev.NonCritDamage, cur.NonCritDamage),
		CritDamage:     newDelta(prev.CritDamage, cur.CritDamage),
		ExpectedDamage: newDelta(prev.ExpectedDamage, cur.ExpectedDamage),
		CritRate:       newDelta(prev.CritRate, cur.CritRate),
	}
}
