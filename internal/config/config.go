// Package config handles shoreline configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/shoreline/internal/brush"
	"github.com/Faultbox/shoreline/pkg/heightfield"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Mesher backends.
const (
	BackendCPU    = "cpu"
	BackendKernel = "kernel"
)

// Brush intensity curves.
const (
	CurveLinear      = "linear"
	CurveExponential = "exponential"
)

// Config holds all settings.
type Config struct {
	Terrain TerrainConfig `yaml:"terrain"`
	Mesher  MesherConfig  `yaml:"mesher"`
	Brushes BrushesConfig `yaml:"brushes"`
	Logging LoggingConfig `yaml:"logging"`
}

// TerrainConfig describes the height field.
type TerrainConfig struct {
	Size          int            `yaml:"size"`        // World units per side
	Density       int            `yaml:"density"`     // Cells per world unit
	ChunkCount    int            `yaml:"chunk_count"` // Chunks per side
	MinHeight     float32        `yaml:"min_height"`
	MaxHeight     float32        `yaml:"max_height"`
	InitialHeight float32        `yaml:"initial_height"`
	BorderBand    float32        `yaml:"border_band"` // World units kept at MinHeight by island generation
	Islands       []IslandConfig `yaml:"islands"`
}

// IslandConfig is one generated hill.
type IslandConfig struct {
	X      float32 `yaml:"x"`
	Z      float32 `yaml:"z"`
	Radius float32 `yaml:"radius"`
	Height float32 `yaml:"height"`
}

// MesherConfig selects how chunks are meshed.
type MesherConfig struct {
	Backend string `yaml:"backend"` // cpu or kernel
	Workers int    `yaml:"workers"` // 0 means one per CPU
}

// BrushConfig holds the slider ranges of one tool.
type BrushConfig struct {
	MinSize      float32 `yaml:"min_size"`
	MaxSize      float32 `yaml:"max_size"`
	MinIntensity float32 `yaml:"min_intensity"`
	MaxIntensity float32 `yaml:"max_intensity"`
	Curve        string  `yaml:"curve"`
	Size         float32 `yaml:"size"`      // Slider position in [0, 1]
	Intensity    float32 `yaml:"intensity"` // Slider position in [0, 1]
}

// BrushesConfig holds per-tool settings.
type BrushesConfig struct {
	Raise   BrushConfig `yaml:"raise"`
	Lower   BrushConfig `yaml:"lower"`
	Level   BrushConfig `yaml:"level"`
	Smooth  BrushConfig `yaml:"smooth"`
	Roughen BrushConfig `yaml:"roughen"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Terrain: TerrainConfig{
			Size:          64,
			Density:       2,
			ChunkCount:    8,
			MinHeight:     -10,
			MaxHeight:     20,
			InitialHeight: -10,
			BorderBand:    4,
		},
		Mesher: MesherConfig{
			Backend: BackendCPU,
			Workers: 0,
		},
		Brushes: BrushesConfig{
			Raise:   brushFromSettings(brush.DefaultToolSettings(brush.ToolRaise)),
			Lower:   brushFromSettings(brush.DefaultToolSettings(brush.ToolLower)),
			Level:   brushFromSettings(brush.DefaultToolSettings(brush.ToolLevel)),
			Smooth:  brushFromSettings(brush.DefaultToolSettings(brush.ToolSmooth)),
			Roughen: brushFromSettings(brush.DefaultToolSettings(brush.ToolRoughen)),
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Resolution returns the number of vertices per field side.
func (t TerrainConfig) Resolution() int {
	return t.Size*t.Density + 1
}

// CellSpacing returns the world distance between adjacent vertices.
func (t TerrainConfig) CellSpacing() float32 {
	return 1 / float32(t.Density)
}

// Origin returns the world position of vertex (0, 0); the field is centred.
func (t TerrainConfig) Origin() mgl32.Vec2 {
	half := float32(t.Size) / 2
	return mgl32.Vec2{-half, -half}
}

// FieldParams converts the terrain section into field parameters.
func (t TerrainConfig) FieldParams() heightfield.Params {
	return heightfield.Params{
		Resolution:  t.Resolution(),
		ChunkCount:  t.ChunkCount,
		MinHeight:   t.MinHeight,
		MaxHeight:   t.MaxHeight,
		CellSpacing: t.CellSpacing(),
		Origin:      t.Origin(),
		Initial:     t.InitialHeight,
	}
}

// Bumps converts the configured islands.
func (t TerrainConfig) Bumps() []heightfield.Bump {
	out := make([]heightfield.Bump, 0, len(t.Islands))
	for _, is := range t.Islands {
		out = append(out, heightfield.Bump{
			Center: mgl32.Vec2{is.X, is.Z},
			Radius: is.Radius,
			Height: is.Height,
		})
	}
	return out
}

// Brush returns the settings of one tool.
func (b *BrushesConfig) Brush(kind brush.ToolKind) *BrushConfig {
	switch kind {
	case brush.ToolRaise:
		return &b.Raise
	case brush.ToolLower:
		return &b.Lower
	case brush.ToolLevel:
		return &b.Level
	case brush.ToolSmooth:
		return &b.Smooth
	case brush.ToolRoughen:
		return &b.Roughen
	}
	return nil
}

// ToolSettings converts the brush section into sculptor settings.
func (b BrushConfig) ToolSettings() brush.ToolSettings {
	curve := brush.CurveLinear
	if strings.EqualFold(b.Curve, CurveExponential) {
		curve = brush.CurveExponential
	}
	return brush.ToolSettings{
		MinSize:        b.MinSize,
		MaxSize:        b.MaxSize,
		MinIntensity:   b.MinIntensity,
		MaxIntensity:   b.MaxIntensity,
		Curve:          curve,
		SizeValue:      b.Size,
		IntensityValue: b.Intensity,
	}
}

func brushFromSettings(s brush.ToolSettings) BrushConfig {
	curve := CurveLinear
	if s.Curve == brush.CurveExponential {
		curve = CurveExponential
	}
	return BrushConfig{
		MinSize:      s.MinSize,
		MaxSize:      s.MaxSize,
		MinIntensity: s.MinIntensity,
		MaxIntensity: s.MaxIntensity,
		Curve:        curve,
		Size:         s.SizeValue,
		Intensity:    s.IntensityValue,
	}
}

// Validate checks the config for values the terrain cannot be built from.
func (c *Config) Validate() error {
	t := c.Terrain
	if t.Size < 1 || t.Density < 1 {
		return fmt.Errorf("%w: size %d and density %d must be positive", ErrInvalidConfig, t.Size, t.Density)
	}
	if t.ChunkCount < 1 || (t.Resolution()-1)%t.ChunkCount != 0 {
		return fmt.Errorf("%w: %d cells per side do not split into %d chunks",
			ErrInvalidConfig, t.Resolution()-1, t.ChunkCount)
	}
	if !(t.MinHeight < t.MaxHeight) {
		return fmt.Errorf("%w: min_height %v must be below max_height %v", ErrInvalidConfig, t.MinHeight, t.MaxHeight)
	}

	switch c.Mesher.Backend {
	case BackendCPU, BackendKernel:
	default:
		return fmt.Errorf("%w: unknown mesher backend %q", ErrInvalidConfig, c.Mesher.Backend)
	}
	if c.Mesher.Workers < 0 {
		return fmt.Errorf("%w: workers %d", ErrInvalidConfig, c.Mesher.Workers)
	}

	for _, kind := range brush.Tools() {
		b := c.Brushes.Brush(kind)
		if b.MinSize <= 0 || b.MaxSize < b.MinSize {
			return fmt.Errorf("%w: %s size range [%v, %v]", ErrInvalidConfig, kind, b.MinSize, b.MaxSize)
		}
		if b.MaxIntensity < b.MinIntensity {
			return fmt.Errorf("%w: %s intensity range [%v, %v]", ErrInvalidConfig, kind, b.MinIntensity, b.MaxIntensity)
		}
		switch strings.ToLower(b.Curve) {
		case CurveLinear:
		case CurveExponential:
			if b.MinIntensity <= 0 {
				return fmt.Errorf("%w: %s exponential curve needs min_intensity > 0", ErrInvalidConfig, kind)
			}
		default:
			return fmt.Errorf("%w: %s curve %q", ErrInvalidConfig, kind, b.Curve)
		}
	}
	return nil
}
