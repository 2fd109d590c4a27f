package brush

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/shoreline/internal/logger"
	"github.com/Faultbox/shoreline/pkg/heightfield"
)

// ErrUnknownTool is returned when parsing an unrecognised tool name.
var ErrUnknownTool = errors.New("unknown tool")

// ToolKind selects the operator a Sculptor applies.
type ToolKind int

const (
	ToolRaise ToolKind = iota
	ToolLower
	ToolLevel
	ToolSmooth
	ToolRoughen

	toolCount
)

var toolNames = [toolCount]string{"raise", "lower", "level", "smooth", "roughen"}

func (k ToolKind) String() string {
	if k < 0 || k >= toolCount {
		return fmt.Sprintf("ToolKind(%d)", int(k))
	}
	return toolNames[k]
}

// ParseToolKind maps a tool name to its kind.
func ParseToolKind(name string) (ToolKind, error) {
	for k, n := range toolNames {
		if n == name {
			return ToolKind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTool, name)
}

// Tools returns every tool kind in slot order.
func Tools() []ToolKind {
	out := make([]ToolKind, toolCount)
	for k := range out {
		out[k] = ToolKind(k)
	}
	return out
}

// Curve maps an intensity slider value to an intensity.
type Curve int

const (
	CurveLinear Curve = iota
	CurveExponential
)

// ToolSettings holds the slider ranges and positions of one tool.
type ToolSettings struct {
	MinSize, MaxSize           float32 // World units (diameter)
	MinIntensity, MaxIntensity float32
	Curve                      Curve
	SizeValue                  float32 // Slider position in [0, 1]
	IntensityValue             float32 // Slider position in [0, 1]
}

// Size returns the brush diameter for the current slider position.
func (t ToolSettings) Size() float32 {
	return lerp(t.MinSize, t.MaxSize, mgl32.Clamp(t.SizeValue, 0, 1))
}

// Intensity returns the intensity for the current slider position.
func (t ToolSettings) Intensity() float32 {
	v := mgl32.Clamp(t.IntensityValue, 0, 1)
	if t.Curve == CurveExponential && t.MinIntensity > 0 {
		return t.MinIntensity * float32(math.Pow(float64(t.MaxIntensity/t.MinIntensity), float64(v)))
	}
	return lerp(t.MinIntensity, t.MaxIntensity, v)
}

// DefaultToolSettings returns the stock settings for kind.
func DefaultToolSettings(kind ToolKind) ToolSettings {
	switch kind {
	case ToolRaise, ToolLower:
		return ToolSettings{MinSize: 2, MaxSize: 40, MinIntensity: 0.5, MaxIntensity: 20,
			Curve: CurveExponential, SizeValue: 0.1, IntensityValue: 0.1}
	case ToolLevel:
		return ToolSettings{MinSize: 2, MaxSize: 40, MinIntensity: 0.5, MaxIntensity: 10,
			Curve: CurveLinear, SizeValue: 0.5, IntensityValue: 0.6}
	case ToolSmooth:
		return ToolSettings{MinSize: 2, MaxSize: 40, MinIntensity: 0.05, MaxIntensity: 1,
			Curve: CurveLinear, SizeValue: 0.5, IntensityValue: 0.6}
	case ToolRoughen:
		return ToolSettings{MinSize: 2, MaxSize: 40, MinIntensity: 0.5, MaxIntensity: 20,
			Curve: CurveExponential, SizeValue: 0.5, IntensityValue: 0.6}
	}
	return ToolSettings{}
}

// Sculptor drives the brushes from press/hold/release gestures.
// It is safe for concurrent use.
type Sculptor struct {
	mu       sync.Mutex
	field    *heightfield.Field
	grid     Rebuilder
	tool     ToolKind
	settings [toolCount]ToolSettings

	active bool
	level  float32
	seed   int64

	now func() time.Time
	log *zap.Logger
}

// NewSculptor creates a sculptor with default settings and the raise tool.
// g may be nil when no meshes need rebuilding.
func NewSculptor(f *heightfield.Field, g Rebuilder) *Sculptor {
	s := &Sculptor{
		field: f,
		grid:  g,
		now:   time.Now,
		log:   logger.Log,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	for k := range s.settings {
		s.settings[k] = DefaultToolSettings(ToolKind(k))
	}
	return s
}

// Tool returns the selected tool.
func (s *Sculptor) Tool() ToolKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tool
}

// SetTool selects a tool. An active gesture is ended.
func (s *Sculptor) SetTool(kind ToolKind) error {
	if kind < 0 || kind >= toolCount {
		return fmt.Errorf("%w: %v", ErrUnknownTool, kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tool = kind
	s.active = false
	return nil
}

// Settings returns the settings of kind.
func (s *Sculptor) Settings(kind ToolKind) ToolSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings[kind]
}

// SetSettings replaces the settings of kind.
func (s *Sculptor) SetSettings(kind ToolKind, t ToolSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[kind] = t
}

// SetSize moves the size slider of the selected tool.
func (s *Sculptor) SetSize(v float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[s.tool].SizeValue = mgl32.Clamp(v, 0, 1)
}

// SetIntensity moves the intensity slider of the selected tool.
func (s *Sculptor) SetIntensity(v float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[s.tool].IntensityValue = mgl32.Clamp(v, 0, 1)
}

// Resize nudges the size slider of the selected tool by delta.
func (s *Sculptor) Resize(delta float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &s.settings[s.tool]
	t.SizeValue = mgl32.Clamp(t.SizeValue+delta, 0, 1)
}

// Active reports whether a gesture is in progress.
func (s *Sculptor) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Level returns the target height captured by the last Begin.
func (s *Sculptor) Level() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

// Begin starts a gesture at a world position. It captures the level target
// and the noise seed and reports false when pos is outside the field.
func (s *Sculptor) Begin(pos mgl32.Vec2) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.field.Sample(pos)
	if !ok {
		s.active = false
		return false
	}
	s.active = true
	s.level = h
	s.seed = s.now().UnixNano()

	s.log.Debug("gesture started",
		zap.Stringer("tool", s.tool),
		zap.Float32("level", s.level),
		zap.Int64("seed", s.seed))
	return true
}

// Hold applies the selected tool at pos for dt seconds. Without an active
// gesture it does nothing.
func (s *Sculptor) Hold(pos mgl32.Vec2, dt float32) (heightfield.Rect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return heightfield.EmptyRect(), nil
	}
	t := s.settings[s.tool]
	st := Stroke{Center: pos, Radius: t.Size() / 2, Intensity: t.Intensity(), Dt: dt}

	switch s.tool {
	case ToolRaise:
		return Raise(s.field, s.grid, st)
	case ToolLower:
		return Lower(s.field, s.grid, st)
	case ToolLevel:
		return LowerToLevel(s.field, s.grid, st, Level{Target: s.level, AllowDown: true})
	case ToolSmooth:
		return Smooth(s.field, s.grid, st)
	case ToolRoughen:
		return Roughen(s.field, s.grid, st, s.seed)
	}
	return heightfield.EmptyRect(), fmt.Errorf("%w: %v", ErrUnknownTool, s.tool)
}

// End finishes the gesture.
func (s *Sculptor) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}
