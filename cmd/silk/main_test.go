package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/silk/internal/config"
	silkerrors "github.com/vango-dev/silk/internal/errors"
	"github.com/vango-dev/silk/internal/replay"
)

func TestRunInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "deploy")

	path, err := runInit(dir, false)
	if err != nil {
		t.Fatalf("runInit: %v", err)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Serve.Port != config.DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Serve.Port, config.DefaultPort)
	}

	if _, err := runInit(dir, false); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second runInit = %v", err)
	}
	if _, err := runInit(dir, true); err != nil {
		t.Errorf("runInit with force: %v", err)
	}
}

func TestGlobalFlagsLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.ConfigFileName)
	data := `{"log": {"level": "warn"}, "replay": {"runs": 7}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	flags := globalFlags{configPath: path}
	cfg, logger, err := flags.load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Replay.Runs != 7 {
		t.Errorf("Replay.Runs = %d, want 7", cfg.Replay.Runs)
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug enabled at level warn")
	}

	flags.logLevel = "debug"
	if _, logger, err = flags.load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("--log-level did not override the file")
	}

	flags.logLevel = "loud"
	_, _, err = flags.load()
	var v *silkerrors.Violation
	if !errors.As(err, &v) || v.Code != "E142" {
		t.Errorf("bad level: err = %v, want E142", err)
	}

	flags = globalFlags{configPath: filepath.Join(dir, "missing.json")}
	_, _, err = flags.load()
	if !errors.As(err, &v) || v.Code != "E141" {
		t.Errorf("missing file: err = %v, want E141", err)
	}
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	want := map[string]bool{"init": true, "serve": true, "watch": true, "replay": true, "version": true}
	for _, cmd := range root.Commands() {
		delete(want, cmd.Name())
	}
	if len(want) > 0 {
		t.Errorf("missing commands: %v", want)
	}
	if root.PersistentFlags().Lookup("log-level") == nil {
		t.Error("no --log-level flag")
	}
}

func TestRunReplay(t *testing.T) {
	opts := replay.Options{Seed: 1, Runs: 4, Ops: 50, Regions: 3}
	if err := runReplay(context.Background(), opts); err != nil {
		t.Fatalf("runReplay: %v", err)
	}
}

func TestReplayCmdUsesFlags(t *testing.T) {
	dir := t.TempDir()
	path, err := runInit(dir, false)
	if err != nil {
		t.Fatal(err)
	}

	root := newRootCmd()
	root.SetArgs([]string{"replay", "--config", path, "--seed=3", "--runs=2", "--ops=20", "--groups=2"})
	if err := root.Execute(); err != nil {
		t.Fatalf("replay: %v", err)
	}
}
