package rpc

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/xtding233/dmgcalc/internal/alloc"
	"github.com/xtding233/dmgcalc/internal/build"
	"github.com/xtding233/dmgcalc/internal/config"
	"github.com/xtding233/dmgcalc/internal/damage"
	"github.com/xtding233/dmgcalc/internal/service"
)

func startServer(t *testing.T) *Client {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "defaults.yaml"), []byte("physAtk: 1000\nthunderSeal: 1\nactiveSkill: 1\nskill1Multi: 100\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.yaml"), []byte("name: Main\ncritRate: 30\ncritDmg: 50\n"), 0o644))

	svc := service.New(build.NewLoader(dir), config.DefaultService())
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	Register(s, NewServer(svc))
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewClient(conn)
}

func TestEvaluateOverGRPC(t *testing.T) {
	c := startServer(t)

	var resp struct {
		Profile string        `json:"profile"`
		Result  damage.Result `json:"result"`
	}
	err := c.Call(context.Background(), "Evaluate", map[string]any{
		"profile":   "main",
		"overrides": map[string]any{"critRate": 60},
	}, &resp)
	require.NoError(t, err)

	want := damage.Evaluate(damage.BuildConfig{
		PhysAtk: 1000, ThunderSeal: 1, CritRate: 60, CritDmg: 50, ActiveSkill: 1,
		Skills: [3]damage.Skill{{Multi: 100}},
	})
	assert.Equal(t, "main", resp.Profile)
	assert.InDelta(t, want.ExpectedDamage, resp.Result.ExpectedDamage, 1e-6)
	assert.Equal(t, "Iai Slash", resp.Result.SkillName)
}

func TestOptimizeOverGRPC(t *testing.T) {
	c := startServer(t)
	var plan alloc.Plan
	err := c.Call(context.Background(), "Optimize", map[string]any{"totalPoints": 6000, "step": 100, "minCrit": 20}, &plan)
	require.NoError(t, err)
	assert.True(t, plan.Feasible)
	assert.Equal(t, 6000, plan.Best.Total())
}

func TestConvertAndListOverGRPC(t *testing.T) {
	c := startServer(t)

	var conv struct {
		Percent float64 `json:"percent"`
	}
	require.NoError(t, c.Call(context.Background(), "Convert", map[string]any{"kind": "versatility", "raw": 2501.1}, &conv))
	assert.InDelta(t, 50.0, conv.Percent, 1e-9)

	var list struct {
		Profiles []build.Profile `json:"profiles"`
	}
	require.NoError(t, c.Call(context.Background(), "ListProfiles", nil, &list))
	require.Len(t, list.Profiles, 1)
	assert.Equal(t, "Main", list.Profiles[0].Name)
}

func TestSimulateOverGRPC(t *testing.T) {
	c := startServer(t)
	var resp service.SimulateResponse
	err := c.Call(context.Background(), "Simulate", map[string]any{"profile": "main", "hits": 3, "trials": 100, "seed": 1}, &resp)
	require.NoError(t, err)
	assert.Equal(t, 100, resp.Trials)
	assert.Greater(t, resp.Stats.Mean, 0.0)
}

func TestErrorCodes(t *testing.T) {
	c := startServer(t)
	ctx := context.Background()

	cases := []struct {
		method string
		req    any
		code   codes.Code
	}{
		{"Evaluate", map[string]any{"profile": "ghost"}, codes.NotFound},
		{"Evaluate", map[string]any{"config": map[string]any{"activeSkill": 9}}, codes.InvalidArgument},
		{"Optimize", map[string]any{"totalPoints": -5}, codes.InvalidArgument},
		{"Convert", map[string]any{"kind": "nope", "raw": 1}, codes.InvalidArgument},
		{"Unknown", nil, codes.Unimplemented},
	}
	for _, tc := range cases {
		err := c.Call(ctx, tc.method, tc.req, nil)
		require.Error(t, err, tc.method)
		assert.Equal(t, tc.code, status.Code(err), "%s %v", tc.method, tc.req)
	}
}
