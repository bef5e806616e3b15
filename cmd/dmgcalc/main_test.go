package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/dmgcalc/internal/damage"
	"github.com/xtding233/dmgcalc/internal/history"
)

type harness struct {
	dir     string
	history string
	out     *bytes.Buffer
	errOut  *bytes.Buffer
	env     env
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	profiles := filepath.Join(dir, "profiles")
	require.NoError(t, os.MkdirAll(profiles, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(profiles, "defaults.yaml"), []byte("physAtk: 1000\nthunderSeal: 3\nactiveSkill: 1\nskill1Multi: 100\ncritDmg: 50\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(profiles, "main.yaml"), []byte("name: Main build\ncritRate: 40\n"), 0o644))

	// keep the real config file and environment out of the way
	t.Setenv("DMGCALC_CONFIG", filepath.Join(dir, "absent.yaml"))
	t.Setenv("DMGCALC_PROFILE_DIR", profiles)
	t.Setenv("DMGCALC_HISTORY_PATH", filepath.Join(dir, "history.json"))

	h := &harness{
		dir:     profiles,
		history: filepath.Join(dir, "history.json"),
		out:     &bytes.Buffer{},
		errOut:  &bytes.Buffer{},
	}
	clock := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	h.env = env{stdout: h.out, stderr: h.errOut, now: func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}}
	return h
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	h.out.Reset()
	h.errOut.Reset()
	return run(context.Background(), h.env, args)
}

func TestEvalWritesAndComparesHistory(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, "eval", "-profile", "main"))
	assert.Contains(t, h.out.String(), "Active skill: Iai Slash")
	assert.Contains(t, h.out.String(), "Double attack")
	assert.Contains(t, h.out.String(), "No history yet")

	first, err := history.Load(h.history)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "main", first.Profile)

	require.NoError(t, h.run(t, "eval", "-profile", "main", "-set", "physAtk=2000"))
	assert.Contains(t, h.out.String(), "Compared with last run")
	assert.Contains(t, h.out.String(), "Expected: +")

	second, err := history.Load(h.history)
	require.NoError(t, err)
	assert.InDelta(t, 2*first.ExpectedDamage, second.ExpectedDamage, 1e-6)
}

func TestEvalJSONSkipsHistory(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run(t, "eval", "-profile", "main", "-json"))

	var res damage.Result
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &res))
	assert.Equal(t, 40.0, res.EffectiveCritRate)

	_, err := os.Stat(h.history)
	assert.True(t, os.IsNotExist(err))
}

func TestEvalErrors(t *testing.T) {
	h := newHarness(t)
	assert.Error(t, h.run(t, "eval", "-profile", "ghost"))
	assert.Error(t, h.run(t, "eval", "-set", "novalue"))
	assert.Error(t, h.run(t, "eval", "-set", "thunderSeal=40", "-no-history"))
}

func TestOptimizeCommand(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run(t, "optimize", "-total", "9000", "-step", "100", "-min-crit", "30", "-workers", "2"))
	assert.Contains(t, h.out.String(), "Crit: 1487")
	assert.Contains(t, h.out.String(), "Evaluated: 76")

	require.NoError(t, h.run(t, "optimize", "-total", "100", "-min-crit", "30"))
	assert.Contains(t, h.out.String(), "budget below the crit floor")
}

func TestOptimizeScenarioFile(t *testing.T) {
	h := newHarness(t)
	p := filepath.Join(h.dir, "..", "scenario.yaml")
	require.NoError(t, os.WriteFile(p, []byte("phys_atk: 0\n"), 0o644))
	require.NoError(t, h.run(t, "optimize", "-total", "5000", "-step", "500", "-min-crit", "10", "-scenario", p))
	assert.Contains(t, h.out.String(), "Expected damage: 0.00")
}

func TestConvertCommand(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run(t, "convert", "-kind", "versatility", "-raw", "2501.1"))
	assert.Equal(t, "versatility 2501 -> 50.00%\n", h.out.String())

	require.NoError(t, h.run(t, "convert", "-kind", "crit", "-percent", "95"))
	assert.Contains(t, h.out.String(), "crit 95.00% -> 40122.9")

	attrs := filepath.Join(h.dir, "..", "panel.yaml")
	require.NoError(t, os.WriteFile(attrs, []byte("crit: 3648\nbaseHaste: 120\n"), 0o644))
	require.NoError(t, h.run(t, "convert", "-attrs", attrs))
	assert.Contains(t, h.out.String(), "Crit: 50.00%")
	assert.Contains(t, h.errOut.String(), "baseHaste")

	assert.Error(t, h.run(t, "convert", "-kind", "speed", "-raw", "1"))
	assert.Error(t, h.run(t, "convert", "-kind", "crit"))
}

func TestProfilesCommand(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run(t, "profiles"))
	assert.Equal(t, "1. main (Main build)\n", h.out.String())
}

func TestSimulateCommand(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run(t, "simulate", "-profile", "main", "-hits", "5", "-trials", "1000", "-seed", "4"))
	assert.Contains(t, h.out.String(), "1000 trials x 5 hits")
	assert.Contains(t, h.out.String(), "Observed crit rate")
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t)
	assert.Error(t, h.run(t))
	assert.Error(t, h.run(t, "launch"))
	assert.Contains(t, h.errOut.String(), "usage: dmgcalc")
}
