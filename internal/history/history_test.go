package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/dmgcalc/internal/damage"
)

func TestLoadMissing(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestLoadCorrupt(t *testing.T) {
	p := filepath.Join(t.TempDir(), "h.json")
	require.NoError(t, os.WriteFile(p, []byte("{"), 0o644))
	_, err := Load(p)
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "sub", "history.json")
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	res := damage.Result{NonCritDamage: 800, CritDamage: 1200, ExpectedDamage: 900, EffectiveCritRate: 25}

	require.NoError(t, Save(p, FromResult(res, "burst", now)))
	got, err := Load(p)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Timestamp.Equal(now))
	assert.Equal(t, "burst", got.Profile)
	assert.Equal(t, 900.0, got.ExpectedDamage)
	assert.Equal(t, 25.0, got.CritRate)

	// overwrite keeps a single record
	res.ExpectedDamage = 950
	require.NoError(t, Save(p, FromResult(res, "", now.Add(time.Minute))))
	got, err = Load(p)
	require.NoError(t, err)
	assert.Equal(t, 950.0, got.ExpectedDamage)

	entries, err := os.ReadDir(filepath.Dir(p))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestCompare(t *testing.T) {
	prev := Snapshot{NonCritDamage: 1000, CritDamage: 2000, ExpectedDamage: 0, CritRate: 20}
	cur := Snapshot{NonCritDamage: 1100, CritDamage: 1900, ExpectedDamage: 50, CritRate: 20}

	d := Compare(cur, prev)
	assert.Equal(t, 100.0, d.NonCritDamage.Abs)
	require.NotNil(t, d.NonCritDamage.Percent)
	assert.InDelta(t, 10.0, *d.NonCritDamage.Percent, 1e-12)
	assert.InDelta(t, -5.0, *d.CritDamage.Percent, 1e-12)
	assert.Nil(t, d.ExpectedDamage.Percent, "no percent against a zero base")
	assert.Equal(t, 0.0, d.CritRate.Abs)

	assert.Equal(t, "+100.0 (+10.00%)", d.NonCritDamage.String())
	assert.Equal(t, "-100.0 (-5.00%)", d.CritDamage.String())
	assert.Equal(t, "+50.0", d.ExpectedDamage.String())
	assert.Equal(t, "+0.0 (+0.00%)", d.CritRate.String())
}
