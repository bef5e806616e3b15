// dmgcalc evaluates build profiles, searches attribute allocations and converts
// raw attributes from the command line.
//
// Usage:
//
//	go run ./cmd/dmgcalc eval -profile normal80
//	go run ./cmd/dmgcalc eval -profile normal80 -set critRate=55 -set talent12=true
//	go run ./cmd/dmgcalc optimize -total 20000 -step 10 -min-crit 50
//	go run ./cmd/dmgcalc convert -kind crit -raw 3648
//	go run ./cmd/dmgcalc convert -attrs panel.yaml -pursuit
//	go run ./cmd/dmgcalc simulate -profile normal80 -hits 10 -trials 10000
//	go run ./cmd/dmgcalc profiles
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/xtding233/dmgcalc/internal/config"
)

const defaultConfigPath = "config/server.yaml"

// env carries process-level dependencies so commands can be tested.
type env struct {
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := env{stdout: os.Stdout, stderr: os.Stderr, now: time.Now}
	if err := run(ctx, e, os.Args[1:]); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

var commands = map[string]func(context.Context, env, config.Service, []string) error{
	"eval":     cmdEval,
	"optimize": cmdOptimize,
	"convert":  cmdConvert,
	"profiles": cmdProfiles,
	"simulate": cmdSimulate,
}

func run(ctx context.Context, e env, args []string) error {
	global := flag.NewFlagSet("dmgcalc", flag.ContinueOnError)
	global.SetOutput(e.stderr)
	configPath := global.String("config", "", "path to config (default "+defaultConfigPath+", or $DMGCALC_CONFIG)")
	global.Usage = func() {
		fmt.Fprintln(e.stderr, "usage: dmgcalc [-config path] <eval|optimize|convert|simulate|profiles> [flags]")
		global.PrintDefaults()
	}
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return errors.New("missing command")
	}

	name := global.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		global.Usage()
		return fmt.Errorf("unknown command %q", name)
	}

	cfg, err := config.LoadService(config.Path(*configPath, defaultConfigPath))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	return cmd(ctx, e, cfg, global.Args()[1:])
}

// setFlags collects repeated -set key=value flags.
type setFlags map[string]string

func (s setFlags) String() string {
	parts := make([]string, 0, len(s))
	for k, v := range s {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (s setFlags) Set(v string) error {
	k, val, ok := strings.Cut(v, "=")
	if !ok || strings.TrimSpace(k) == "" {
		return fmt.Errorf("want key=value, got %q", v)
	}
	s[strings.TrimSpace(k)] = strings.TrimSpace(val)
	return nil
}
