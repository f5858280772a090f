package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lixenwraith/upi-engine/parameter"
)

var envKeys = []string{
	"UPI_CACHE_CAPACITY",
	"UPI_MAX_STEPS",
	"UPI_SEED",
	"UPI_AUDIO_ENABLED",
	"UPI_MASTER_VOLUME",
	"UPI_BPM",
	"UPI_SAMPLE_RATE",
	"UPI_VELOCITIES",
	"UPI_PRESET_FILE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

// TestDefaultConfig verifies default configuration
func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.Engine.CacheCapacity != 100 {
		t.Errorf("Expected default cache capacity 100, got %d", cfg.Engine.CacheCapacity)
	}
	if cfg.Engine.MaxSteps != 128 {
		t.Errorf("Expected default max steps 128, got %d", cfg.Engine.MaxSteps)
	}
	if !cfg.Audio.Enabled {
		t.Error("Expected default config to have Enabled=true")
	}
	if cfg.Audio.SampleRate != 44100 {
		t.Errorf("Expected default sample rate 44100, got %d", cfg.Audio.SampleRate)
	}
	if cfg.Audio.BPM != parameter.DefaultBPM {
		t.Errorf("Expected default BPM %d, got %d", parameter.DefaultBPM, cfg.Audio.BPM)
	}
}

// TestLoadDefaults verifies loading with no env vars and no file
func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("Expected defaults, got %+v", *cfg)
	}
}

// TestEnvOverrides verifies every UPI_* variable
func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("UPI_CACHE_CAPACITY", "7")
	t.Setenv("UPI_MAX_STEPS", "64")
	t.Setenv("UPI_SEED", "0x10")
	t.Setenv("UPI_AUDIO_ENABLED", "false")
	t.Setenv("UPI_MASTER_VOLUME", "25")
	t.Setenv("UPI_BPM", "90")
	t.Setenv("UPI_SAMPLE_RATE", "48000")
	t.Setenv("UPI_VELOCITIES", `{"normal":0.4,"accent":0.9}`)
	t.Setenv("UPI_PRESET_FILE", "/tmp/p.yaml")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Engine.CacheCapacity != 7 || cfg.Engine.MaxSteps != 64 || cfg.Engine.Seed != 16 {
		t.Errorf("Unexpected engine config %+v", cfg.Engine)
	}
	if cfg.Audio.Enabled || cfg.Audio.MasterVolume != 0.25 || cfg.Audio.BPM != 90 || cfg.Audio.SampleRate != 48000 {
		t.Errorf("Unexpected audio config %+v", cfg.Audio)
	}
	if cfg.Audio.NormalVelocity != 0.4 || cfg.Audio.AccentVelocity != 0.9 {
		t.Errorf("Unexpected velocities %+v", cfg.Audio)
	}
	if cfg.PresetFile != "/tmp/p.yaml" {
		t.Errorf("Expected preset file override, got %q", cfg.PresetFile)
	}
}

// TestEnvClamping verifies out-of-range values are clamped or ignored
func TestEnvClamping(t *testing.T) {
	tests := []struct {
		key, value string
		check      func(*Config) bool
	}{
		{"UPI_MASTER_VOLUME", "150", func(c *Config) bool { return c.Audio.MasterVolume == 1.0 }},
		{"UPI_MASTER_VOLUME", "-50", func(c *Config) bool { return c.Audio.MasterVolume == 0.0 }},
		{"UPI_MASTER_VOLUME", "loud", func(c *Config) bool { return c.Audio.MasterVolume == parameter.DefaultMasterVolume }},
		{"UPI_BPM", "1000", func(c *Config) bool { return c.Audio.BPM == parameter.MaxBPM }},
		{"UPI_MAX_STEPS", "500", func(c *Config) bool { return c.Engine.MaxSteps == parameter.MaxSteps }},
		{"UPI_CACHE_CAPACITY", "0", func(c *Config) bool { return c.Engine.CacheCapacity == parameter.ProgressiveCapacity }},
		{"UPI_SAMPLE_RATE", "-1", func(c *Config) bool { return c.Audio.SampleRate == parameter.AudioSampleRate }},
		{"UPI_AUDIO_ENABLED", "maybe", func(c *Config) bool { return c.Audio.Enabled }},
		{"UPI_VELOCITIES", "{broken", func(c *Config) bool { return c.Audio.AccentVelocity == parameter.AccentVelocity }},
	}
	for _, tt := range tests {
		clearEnv(t)
		t.Setenv(tt.key, tt.value)
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !tt.check(cfg) {
			t.Errorf("%s=%s: unexpected config %+v", tt.key, tt.value, *cfg)
		}
	}
}

// TestFileThenEnv verifies the YAML file is applied before the environment
func TestFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "upi.yaml")
	content := "engine:\n  cache_capacity: 12\naudio:\n  bpm: 100\n  enabled: false\npreset_file: mine.yaml\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("UPI_BPM", "140")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Engine.CacheCapacity != 12 || cfg.Audio.Enabled || cfg.PresetFile != "mine.yaml" {
		t.Errorf("Expected file values, got %+v", *cfg)
	}
	if cfg.Audio.BPM != 140 {
		t.Errorf("Expected env BPM 140 over file 100, got %d", cfg.Audio.BPM)
	}
	if cfg.Engine.MaxSteps != parameter.MaxSteps {
		t.Errorf("Expected untouched fields to keep defaults, got %d", cfg.Engine.MaxSteps)
	}
}

// TestLoadFileErrors verifies missing and malformed files
func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected ErrNotExist, got %v", err)
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("engine: [1, 2"), 0o644)
	if _, err := LoadFile(path); err == nil {
		t.Error("Expected YAML error")
	}
}

// TestSaveRoundTrip verifies Save output loads back
func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Audio.BPM = 96
	cfg.Engine.Seed = 42
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	back, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if *back != *cfg {
		t.Errorf("Expected %+v, got %+v", *cfg, *back)
	}
}
