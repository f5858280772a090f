// Package config resolves engine, audio and preset settings from defaults, a YAML file and UPI_* variables
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/upi-engine/parameter"
)

// EngineConfig bounds the parser and progressive cache
type EngineConfig struct {
	CacheCapacity int    `yaml:"cache_capacity"`
	MaxSteps      int    `yaml:"max_steps"`
	Seed          uint64 `yaml:"seed"`
}

// AudioConfig holds the click preview settings
type AudioConfig struct {
	Enabled        bool    `yaml:"enabled"`
	MasterVolume   float64 `yaml:"master_volume"` // 0.0-1.0
	BPM            int     `yaml:"bpm"`
	SampleRate     int     `yaml:"sample_rate"`
	NormalVelocity float64 `yaml:"normal_velocity"`
	AccentVelocity float64 `yaml:"accent_velocity"`
}

// Config is the resolved application configuration
type Config struct {
	Engine     EngineConfig `yaml:"engine"`
	Audio      AudioConfig  `yaml:"audio"`
	PresetFile string       `yaml:"preset_file"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			CacheCapacity: parameter.ProgressiveCapacity,
			MaxSteps:      parameter.MaxSteps,
			Seed:          parameter.DefaultSeed,
		},
		Audio: AudioConfig{
			Enabled:        true,
			MasterVolume:   parameter.DefaultMasterVolume,
			BPM:            parameter.DefaultBPM,
			SampleRate:     parameter.AudioSampleRate,
			NormalVelocity: parameter.NormalVelocity,
			AccentVelocity: parameter.AccentVelocity,
		},
		PresetFile: "presets.yaml",
	}
}

// Load resolves defaults, then the optional YAML file at path, then environment overrides
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

// LoadFile reads a YAML file over the defaults without consulting the environment
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.mergeFile(path); err != nil {
		return nil, err
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config %s: %w", path, os.ErrNotExist)
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("yaml unmarshal %s: %w", path, err)
	}
	log.Printf("config: loaded %s", path)
	return nil
}

// applyEnv overlays UPI_* variables; unparseable values are ignored
func (c *Config) applyEnv() {
	if capacity := os.Getenv("UPI_CACHE_CAPACITY"); capacity != "" {
		if val, err := strconv.Atoi(capacity); err == nil && val > 0 {
			c.Engine.CacheCapacity = val
		}
	}

	if maxSteps := os.Getenv("UPI_MAX_STEPS"); maxSteps != "" {
		if val, err := strconv.Atoi(maxSteps); err == nil {
			c.Engine.MaxSteps = val
		}
	}

	if seed := os.Getenv("UPI_SEED"); seed != "" {
		if val, err := strconv.ParseUint(seed, 0, 64); err == nil {
			c.Engine.Seed = val
		}
	}

	if enabled := os.Getenv("UPI_AUDIO_ENABLED"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			c.Audio.Enabled = val
		}
	}

	// Master volume is given as 0-100
	if volume := os.Getenv("UPI_MASTER_VOLUME"); volume != "" {
		if val, err := strconv.Atoi(volume); err == nil {
			c.Audio.MasterVolume = float64(val) / 100.0
		}
	}

	if bpm := os.Getenv("UPI_BPM"); bpm != "" {
		if val, err := strconv.Atoi(bpm); err == nil {
			c.Audio.BPM = val
		}
	}

	if sampleRate := os.Getenv("UPI_SAMPLE_RATE"); sampleRate != "" {
		if val, err := strconv.Atoi(sampleRate); err == nil && val > 0 {
			c.Audio.SampleRate = val
		}
	}

	// Velocities from JSON, e.g. {"normal":0.5,"accent":0.9}
	if velocities := os.Getenv("UPI_VELOCITIES"); velocities != "" {
		var v map[string]float64
		if err := json.Unmarshal([]byte(velocities), &v); err == nil {
			if n, ok := v["normal"]; ok {
				c.Audio.NormalVelocity = n
			}
			if a, ok := v["accent"]; ok {
				c.Audio.AccentVelocity = a
			}
		}
	}

	if presets := os.Getenv("UPI_PRESET_FILE"); presets != "" {
		c.PresetFile = presets
	}
}

// normalize clamps every field into its valid range
func (c *Config) normalize() {
	if c.Engine.CacheCapacity < 1 {
		c.Engine.CacheCapacity = parameter.ProgressiveCapacity
	}
	if c.Engine.MaxSteps < parameter.MinSteps || c.Engine.MaxSteps > parameter.MaxSteps {
		c.Engine.MaxSteps = parameter.MaxSteps
	}
	c.Audio.MasterVolume = clampUnit(c.Audio.MasterVolume)
	c.Audio.NormalVelocity = clampUnit(c.Audio.NormalVelocity)
	c.Audio.AccentVelocity = clampUnit(c.Audio.AccentVelocity)
	if c.Audio.BPM < parameter.MinBPM {
		c.Audio.BPM = parameter.MinBPM
	} else if c.Audio.BPM > parameter.MaxBPM {
		c.Audio.BPM = parameter.MaxBPM
	}
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = parameter.AudioSampleRate
	}
}

func clampUnit(v float64) float64 {
	if v < parameter.MinVolume {
		return parameter.MinVolume
	}
	if v > parameter.MaxVolume {
		return parameter.MaxVolume
	}
	return v
}

// Save writes c as YAML to path
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
