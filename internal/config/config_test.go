package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/knah1d/gomokuAI/internal/game"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer func() { _ = os.Chdir(wd) }()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if cfg.Server.Addr != want.Server.Addr {
		t.Fatalf("expected default addr %q, got %q", want.Server.Addr, cfg.Server.Addr)
	}
	if cfg.AI.MaxDepth != want.AI.MaxDepth || cfg.Game.BoardSize != 10 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Weights != want.Weights {
		t.Fatalf("weight defaults not applied: %+v", cfg.Weights)
	}
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gomoku.yaml")
	data := []byte(`
server:
  addr: ":9999"
ai:
  max_depth: 4
  time_budget_ms: 750
game:
  mode: ai_vs_ai
weights:
  open4: 123456
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Fatalf("file addr not applied: %q", cfg.Server.Addr)
	}
	if cfg.AI.MaxDepth != 4 {
		t.Fatalf("file max_depth not applied: %d", cfg.AI.MaxDepth)
	}
	if cfg.Weights.Open4 != 123456 {
		t.Fatalf("file weight not applied: %d", cfg.Weights.Open4)
	}
	// Untouched keys keep their defaults.
	if cfg.AI.TTBuckets != Default().AI.TTBuckets {
		t.Fatalf("default tt_buckets lost: %d", cfg.AI.TTBuckets)
	}

	settings := cfg.GameSettings()
	if settings.BlackType != game.PlayerAI || settings.WhiteType != game.PlayerAI {
		t.Fatalf("ai_vs_ai mode not mapped: %+v", settings)
	}
	if settings.AITimeBudget != 750*time.Millisecond {
		t.Fatalf("time budget not mapped: %v", settings.AITimeBudget)
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for an explicitly named missing file")
	}
}

func TestGameSettingsHumanSecond(t *testing.T) {
	cfg := Default()
	cfg.Game.HumanPlayer = 2
	settings := cfg.GameSettings()
	if settings.BlackType != game.PlayerAI || settings.WhiteType != game.PlayerHuman {
		t.Fatalf("human_player=2 should put the human on white: %+v", settings)
	}
}
