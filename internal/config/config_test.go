package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"

	"github.com/Faultbox/shoreline/internal/brush"
	"github.com/Faultbox/shoreline/pkg/heightfield"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test terrain defaults
	if cfg.Terrain.Resolution() != 129 {
		t.Errorf("expected resolution 129, got %d", cfg.Terrain.Resolution())
	}
	if cfg.Terrain.CellSpacing() != 0.5 {
		t.Errorf("expected cell spacing 0.5, got %f", cfg.Terrain.CellSpacing())
	}
	if cfg.Terrain.Origin() != (mgl32.Vec2{-32, -32}) {
		t.Errorf("expected origin (-32, -32), got %v", cfg.Terrain.Origin())
	}

	// Test mesher defaults
	if cfg.Mesher.Backend != BackendCPU {
		t.Errorf("expected backend cpu, got %s", cfg.Mesher.Backend)
	}

	// Test brush defaults
	if cfg.Brushes.Roughen.Curve != CurveExponential {
		t.Errorf("expected roughen curve exponential, got %s", cfg.Brushes.Roughen.Curve)
	}
	if cfg.Brushes.Smooth.Curve != CurveLinear {
		t.Errorf("expected smooth curve linear, got %s", cfg.Brushes.Smooth.Curve)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestFieldParams(t *testing.T) {
	cfg := Default()
	p := cfg.Terrain.FieldParams()

	f, err := heightfield.New(p)
	if err != nil {
		t.Fatalf("default field params rejected: %v", err)
	}
	if f.ChunkVertSpan() != 17 {
		t.Errorf("expected chunk span 17, got %d", f.ChunkVertSpan())
	}
	if f.Extent() != 64 {
		t.Errorf("expected extent 64, got %v", f.Extent())
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
terrain:
  size: 32
  density: 4
  chunk_count: 4
  min_height: -5
  max_height: 12
  islands:
    - {x: 1, z: -2, radius: 6, height: 3}

mesher:
  backend: kernel
  workers: 3

brushes:
  smooth:
    min_size: 1
    max_size: 8
    min_intensity: 0.1
    max_intensity: 0.9
    curve: linear
    size: 0.25
    intensity: 0.5

logging:
  level: "debug"
  log_file: "shoreline.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Terrain.Resolution() != 129 {
		t.Errorf("expected resolution 129, got %d", cfg.Terrain.Resolution())
	}
	if cfg.Terrain.MaxHeight != 12 {
		t.Errorf("expected max height 12, got %f", cfg.Terrain.MaxHeight)
	}
	// Untouched keys keep their defaults.
	if cfg.Terrain.InitialHeight != -10 {
		t.Errorf("expected default initial height -10, got %f", cfg.Terrain.InitialHeight)
	}

	want := []heightfield.Bump{{Center: mgl32.Vec2{1, -2}, Radius: 6, Height: 3}}
	if diff := cmp.Diff(want, cfg.Terrain.Bumps()); diff != "" {
		t.Errorf("islands mismatch (-want +got):\n%s", diff)
	}

	if cfg.Mesher.Backend != BackendKernel || cfg.Mesher.Workers != 3 {
		t.Errorf("expected kernel backend with 3 workers, got %+v", cfg.Mesher)
	}

	s := cfg.Brushes.Smooth.ToolSettings()
	if s.Size() != 2.75 {
		t.Errorf("expected smooth size 2.75, got %v", s.Size())
	}
	if cfg.Brushes.Raise != Default().Brushes.Raise {
		t.Error("expected raise brush to keep defaults")
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "shoreline.log" {
		t.Errorf("expected log file 'shoreline.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
terrain:
  size: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestLoadExplicitPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "custom.yaml")
	if err := os.WriteFile(configPath, []byte("terrain:\n  chunk_count: 16\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Terrain.ChunkCount != 16 {
		t.Errorf("expected chunk count 16, got %d", cfg.Terrain.ChunkCount)
	}

	if _, err := Load(filepath.Join(tmpDir, "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit path")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	// No config file exists - should return empty
	if path := FindConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile("shoreline.yaml", []byte("terrain:\n  size: 16\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	if path := FindConfigFile(); path == "" {
		t.Error("expected to find shoreline.yaml in current directory")
	}
}

func TestApplyOverrides(t *testing.T) {
	tests := []struct {
		name   string
		o      Overrides
		verify func(*testing.T, *Config)
	}{
		{
			name: "debug",
			o:    Overrides{Debug: true},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "mesher",
			o:    Overrides{Backend: BackendKernel, Workers: 2},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Mesher.Backend != BackendKernel || cfg.Mesher.Workers != 2 {
					t.Errorf("expected kernel backend with 2 workers, got %+v", cfg.Mesher)
				}
			},
		},
		{
			name: "terrain",
			o:    Overrides{Density: 1, ChunkCount: 4},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Terrain.Resolution() != 65 || cfg.Terrain.ChunkCount != 4 {
					t.Errorf("expected resolution 65 in 4 chunks, got %d in %d",
						cfg.Terrain.Resolution(), cfg.Terrain.ChunkCount)
				}
			},
		},
		{
			name: "zero values",
			o:    Overrides{},
			verify: func(t *testing.T, cfg *Config) {
				if diff := cmp.Diff(Default(), cfg); diff != "" {
					t.Errorf("empty overrides changed config (-want +got):\n%s", diff)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.ApplyOverrides(tt.o)
			tt.verify(t, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero size", func(c *Config) { c.Terrain.Size = 0 }},
		{"uneven chunks", func(c *Config) { c.Terrain.ChunkCount = 3 }},
		{"inverted range", func(c *Config) { c.Terrain.MinHeight = 30 }},
		{"unknown backend", func(c *Config) { c.Mesher.Backend = "opencl" }},
		{"negative workers", func(c *Config) { c.Mesher.Workers = -1 }},
		{"bad curve", func(c *Config) { c.Brushes.Level.Curve = "cubic" }},
		{"exponential from zero", func(c *Config) { c.Brushes.Raise.MinIntensity = 0 }},
		{"inverted size", func(c *Config) { c.Brushes.Smooth.MaxSize = 0.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestBrushRoundTrip(t *testing.T) {
	cfg := Default()
	for _, kind := range brush.Tools() {
		got := cfg.Brushes.Brush(kind).ToolSettings()
		if diff := cmp.Diff(brush.DefaultToolSettings(kind), got); diff != "" {
			t.Errorf("%s settings mismatch (-want +got):\n%s", kind, diff)
		}
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Terrain.Islands = []IslandConfig{{X: 3, Z: 4, Radius: 5, Height: 2}}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("config changed across save (-saved +loaded):\n%s", diff)
	}
}
