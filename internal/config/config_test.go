package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Graph:   GraphConfig{DataDir: ".", ClosePolicy: "boundary"},
		LLM:     LLMConfig{Model: "claude-haiku-4-5"},
		Thinker: ThinkerConfig{MaxCandidates: 40, MinSamples: 3, Temperature: 0.3},
		Selfplay: SelfplayConfig{
			Games:         1,
			MaxTurns:      60,
			HeroPolicy:    "random",
			MonsterPolicy: "llm",
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

func TestInit_Defaults(t *testing.T) {
	// A missing explicit file falls back to defaults
	err := Init(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	c := Get()
	assert.Equal(t, ".", c.Graph.DataDir)
	assert.Equal(t, "boundary", c.Graph.ClosePolicy)
	assert.Equal(t, "claude-haiku-4-5", c.LLM.Model)
	assert.Equal(t, 40, c.Thinker.MaxCandidates)
	assert.Equal(t, 3, c.Thinker.MinSamples)
	assert.InDelta(t, 0.3, c.Thinker.Temperature, 1e-9)
	assert.Equal(t, 1, c.Selfplay.Games)
	assert.Equal(t, 60, c.Selfplay.MaxTurns)
	assert.Equal(t, "random", c.Selfplay.HeroPolicy)
	assert.Equal(t, "llm", c.Selfplay.MonsterPolicy)
	assert.Equal(t, "info", c.Logging.Level)
}

func TestInit_FromFile(t *testing.T) {
	content := `
graph:
  data_dir: /var/lib/pma
  close_policy: departure
selfplay:
  games: 25
  monster_policy: random
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	require.NoError(t, Init(path))

	c := Get()
	assert.Equal(t, "/var/lib/pma", c.Graph.DataDir)
	assert.Equal(t, "departure", c.Graph.ClosePolicy)
	assert.Equal(t, 25, c.Selfplay.Games)
	assert.Equal(t, "random", c.Selfplay.MonsterPolicy)
	// Untouched keys keep their defaults
	assert.Equal(t, "claude-haiku-4-5", c.LLM.Model)
}

func TestInit_EnvOverride(t *testing.T) {
	t.Setenv("PMA_THINKER_MAX_CANDIDATES", "10")
	t.Setenv("PMA_LLM_MODEL", "claude-sonnet-4-5")

	require.NoError(t, Init(filepath.Join(t.TempDir(), "missing.yaml")))

	c := Get()
	assert.Equal(t, 10, c.Thinker.MaxCandidates)
	assert.Equal(t, "claude-sonnet-4-5", c.LLM.Model)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"empty data dir", func(c *Config) { c.Graph.DataDir = "" }, "graph.data_dir"},
		{"bad close policy", func(c *Config) { c.Graph.ClosePolicy = "never" }, "graph.close_policy"},
		{"empty model", func(c *Config) { c.LLM.Model = "" }, "llm.model"},
		{"zero candidates", func(c *Config) { c.Thinker.MaxCandidates = 0 }, "thinker.max_candidates"},
		{"zero min samples", func(c *Config) { c.Thinker.MinSamples = 0 }, "thinker.min_samples"},
		{"temperature too high", func(c *Config) { c.Thinker.Temperature = 1.5 }, "thinker.temperature"},
		{"negative temperature", func(c *Config) { c.Thinker.Temperature = -0.1 }, "thinker.temperature"},
		{"zero games", func(c *Config) { c.Selfplay.Games = 0 }, "selfplay.games"},
		{"zero max turns", func(c *Config) { c.Selfplay.MaxTurns = 0 }, "selfplay.max_turns"},
		{"bad hero policy", func(c *Config) { c.Selfplay.HeroPolicy = "greedy" }, "player policy"},
		{"bad monster policy", func(c *Config) { c.Selfplay.MonsterPolicy = "" }, "player policy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := Validate(c)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
