// Package config provides configuration loading and access for the point cloud.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all runtime configuration parameters.
type Config struct {
	Screen      ScreenConfig      `yaml:"screen"`
	Particles   ParticlesConfig   `yaml:"particles"`
	Sphere      SphereConfig      `yaml:"sphere"`
	Heart       HeartConfig       `yaml:"heart"`
	Rose        RoseConfig        `yaml:"rose"`
	Texts       []TextConfig      `yaml:"texts"`
	TextRaster  TextRasterConfig  `yaml:"text_raster"`
	Morph       MorphConfig       `yaml:"morph"`
	Interaction InteractionConfig `yaml:"interaction"`
	Timing      TimingConfig      `yaml:"timing"`
	Render      RenderConfig      `yaml:"render"`
	Camera      CameraConfig      `yaml:"camera"`
	Pointer     PointerConfig     `yaml:"pointer"`
	Gesture     GestureConfig     `yaml:"gesture"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// ParticlesConfig holds cloud size and RNG parameters.
type ParticlesConfig struct {
	Count int   `yaml:"count"`
	Seed  int64 `yaml:"seed"` // 0 = time-based, overridden by -seed
}

// SphereConfig holds sphere shape parameters.
type SphereConfig struct {
	Radius float64 `yaml:"radius"`
}

// HeartConfig holds heart curve parameters.
type HeartConfig struct {
	Amplitude  float64 `yaml:"amplitude"`   // A in x = A*sin^3(t)*s
	Scale      float64 `yaml:"scale"`       // s
	DepthBase  float64 `yaml:"depth_base"`  // extrusion at the cusps
	DepthVar   float64 `yaml:"depth_var"`   // extra extrusion scaled by |sin t|
	DepthScale float64 `yaml:"depth_scale"` // overall z scale
}

// RoseConfig holds rhodonea curve parameters.
type RoseConfig struct {
	Radius     float64 `yaml:"radius"`
	Petals     float64 `yaml:"petals"` // k in cos(k*t)
	Turns      float64 `yaml:"turns"`  // t ~ U(0, 2*pi*turns)
	WobbleAmp  float64 `yaml:"wobble_amp"`
	WobbleFreq float64 `yaml:"wobble_freq"`
}

// TextConfig defines one text cloud shape.
type TextConfig struct {
	Text     string  `yaml:"text"`
	FontSize float64 `yaml:"font_size"` // pixels
	MaxWidth float64 `yaml:"max_width"` // pixels, wrap limit
	Wrap     bool    `yaml:"wrap"`
	Bold     bool    `yaml:"bold"`
}

// TextRasterConfig holds the off-screen canvas and sampling grid parameters.
// These are shape-set constants, shared by every text shape.
type TextRasterConfig struct {
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
	Stride          int     `yaml:"stride"`           // sampling grid step in pixels
	Threshold       uint8   `yaml:"threshold"`        // luma must exceed this
	WorldScale      float64 `yaml:"world_scale"`      // world units per pixel
	ZJitter         float64 `yaml:"z_jitter"`         // z ~ U(-z_jitter, z_jitter)
	ParagraphOffset float64 `yaml:"paragraph_offset"` // first wrapped line sits this far above center
	LineSpacing     float64 `yaml:"line_spacing"`     // added to font size for line height
	FontFile        string  `yaml:"font_file"`        // optional TTF/OTF; empty = Go fonts
}

// MorphConfig holds blend weight smoothing parameters.
type MorphConfig struct {
	Smoothing    float64 `yaml:"smoothing"`     // alpha per update call
	InitialShape string  `yaml:"initial_shape"` // shape name at session start
}

// InteractionConfig holds repulsion field parameters.
type InteractionConfig struct {
	Smoothing         float64 `yaml:"smoothing"`          // beta per update call
	ActivityThreshold float64 `yaml:"activity_threshold"` // dead zone for smoothed activity
	Radius            float64 `yaml:"radius"`
	Force             float64 `yaml:"force"`
}

// TimingConfig selects how smoothing factors relate to frame time.
type TimingConfig struct {
	FrameRateIndependent bool    `yaml:"frame_rate_independent"`
	ReferenceFPS         float64 `yaml:"reference_fps"`
}

// RenderConfig holds the vertex/sprite contract constants.
type RenderConfig struct {
	JitterAmplitude  float64      `yaml:"jitter_amplitude"`
	JitterPhaseScale float64      `yaml:"jitter_phase_scale"`
	JitterYSpeed     float64      `yaml:"jitter_y_speed"`
	BaseSize         float64      `yaml:"base_size"`
	SizeVariance     float64      `yaml:"size_variance"`
	SizeScale        float64      `yaml:"size_scale"` // perspective numerator
	Alpha            float64      `yaml:"alpha"`      // sprite peak alpha
	Colors           ColorsConfig `yaml:"colors"`
	Background       [3]uint8     `yaml:"background"`
}

// ColorsConfig holds per-shape RGB colors in [0,1].
type ColorsConfig struct {
	Sphere [3]float64 `yaml:"sphere"`
	Heart  [3]float64 `yaml:"heart"`
	Rose   [3]float64 `yaml:"rose"`
	Text   [3]float64 `yaml:"text"`
}

// CameraConfig holds orbit camera parameters.
type CameraConfig struct {
	Distance    float64 `yaml:"distance"`
	FOV         float64 `yaml:"fov"` // vertical, degrees
	MinDistance float64 `yaml:"min_distance"`
	MaxDistance float64 `yaml:"max_distance"`
	OrbitSpeed  float64 `yaml:"orbit_speed"` // radians per pixel of drag
	ZoomStep    float64 `yaml:"zoom_step"`   // distance per wheel notch
}

// PointerConfig maps normalized input coordinates onto the z=0 world plane.
type PointerConfig struct {
	SpanX float64 `yaml:"span_x"`
	SpanY float64 `yaml:"span_y"`
}

// GestureConfig holds hand-landmark classification thresholds.
type GestureConfig struct {
	FistMax  float64 `yaml:"fist_max"`  // fingertip-to-wrist distance below which a finger is curled
	OpenMin  float64 `yaml:"open_min"`  // fingertip-to-wrist distance above which a finger is extended
	PinchMax float64 `yaml:"pinch_max"` // thumb-to-index distance for the heart pinch
	Mirror   bool    `yaml:"mirror"`    // selfie camera input
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow       int     `yaml:"perf_window"`
	LogInterval      float64 `yaml:"log_interval"`       // seconds between perf log lines
	FrameSampleEvery int     `yaml:"frame_sample_every"` // write every Nth frame to frames.csv
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Aspect float64 // Screen.Width / Screen.Height
	DT     float64 // 1 / Screen.TargetFPS, fixed step for headless runs
}

// NumTexts is the number of text shapes in the fixed shape set.
const NumTexts = 2

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Defaults returns a fresh copy of the embedded defaults.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	cfg.computeDerived()
	return cfg, nil
}

// Validate reports configuration errors that must stop startup.
func (c *Config) Validate() error {
	var errs []error
	if c.Particles.Count <= 0 {
		errs = append(errs, fmt.Errorf("particles.count must be positive, got %d", c.Particles.Count))
	}
	if len(c.Texts) != NumTexts {
		errs = append(errs, fmt.Errorf("texts must define exactly %d entries, got %d", NumTexts, len(c.Texts)))
	}
	for i, t := range c.Texts {
		if t.FontSize <= 0 {
			errs = append(errs, fmt.Errorf("texts[%d].font_size must be positive, got %g", i, t.FontSize))
		}
		if t.Wrap && t.MaxWidth <= 0 {
			errs = append(errs, fmt.Errorf("texts[%d].max_width must be positive when wrap is set, got %g", i, t.MaxWidth))
		}
	}
	if c.TextRaster.Width <= 0 || c.TextRaster.Height <= 0 {
		errs = append(errs, fmt.Errorf("text_raster canvas must be positive, got %dx%d", c.TextRaster.Width, c.TextRaster.Height))
	}
	if c.TextRaster.Stride <= 0 {
		errs = append(errs, fmt.Errorf("text_raster.stride must be positive, got %d", c.TextRaster.Stride))
	}
	if !inUnit(c.Morph.Smoothing) {
		errs = append(errs, fmt.Errorf("morph.smoothing must be in (0,1], got %g", c.Morph.Smoothing))
	}
	if !inUnit(c.Interaction.Smoothing) {
		errs = append(errs, fmt.Errorf("interaction.smoothing must be in (0,1], got %g", c.Interaction.Smoothing))
	}
	if c.Interaction.Radius <= 0 {
		errs = append(errs, fmt.Errorf("interaction.radius must be positive, got %g", c.Interaction.Radius))
	}
	if c.Timing.FrameRateIndependent && c.Timing.ReferenceFPS <= 0 {
		errs = append(errs, fmt.Errorf("timing.reference_fps must be positive when frame_rate_independent is set"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func inUnit(v float64) bool {
	return v > 0 && v <= 1
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Aspect = 1
	if c.Screen.Height > 0 {
		c.Derived.Aspect = float64(c.Screen.Width) / float64(c.Screen.Height)
	}
	c.Derived.DT = 1.0 / 60.0
	if c.Screen.TargetFPS > 0 {
		c.Derived.DT = 1.0 / float64(c.Screen.TargetFPS)
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
