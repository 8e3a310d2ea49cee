package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/corpstory/starmap/internal/timeutil"
)

// Defaults. Surface size follows the Ultra HD 4K upload preset so rendered
// text is never rescaled by the video host.
const (
	DefaultSurfaceWidth    = 3840
	DefaultSurfaceHeight   = 2160
	DefaultFramesPerDay    = 24
	DefaultFreezeDays      = 14
	DefaultHorizonDays     = 28
	DefaultMarginFraction  = 0.05
	DefaultMinSpanFraction = 0.02
	DefaultFadeDays        = 7
)

// Config holds the render and viewport planner settings. Every field is
// optional in the JSON file; the Get* methods supply defaults for omitted
// fields so partial files are safe.
type Config struct {
	// Planner on/off. Disabled renders the full universe on every frame.
	Enabled *bool `json:"enabled,omitempty"`

	// Render surface in pixels; the aspect ratio is width/height.
	SurfaceWidth  *int `json:"surface_width,omitempty"`
	SurfaceHeight *int `json:"surface_height,omitempty"`
	FramesPerDay  *int `json:"frames_per_day,omitempty"`

	// Hysteresis: days a side stays frozen after fresh data (F) and days of
	// look-ahead for pre-moving a boundary (H).
	FreezeDays  *int `json:"freeze_days,omitempty"`
	HorizonDays *int `json:"horizon_days,omitempty"`

	// Optional run window, "2006-01-02".
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`

	// Fractions of the larger universe extent.
	MarginFraction  *float64 `json:"margin_fraction,omitempty"`
	MinSpanFraction *float64 `json:"min_span_fraction,omitempty"`

	// Renderer: days an activity marker stays visible while fading out.
	FadeDays *int `json:"fade_days,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrInt(v int) *int             { return &v }

// DefaultConfig returns a Config with every field populated from the defaults.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         ptrBool(true),
		SurfaceWidth:    ptrInt(DefaultSurfaceWidth),
		SurfaceHeight:   ptrInt(DefaultSurfaceHeight),
		FramesPerDay:    ptrInt(DefaultFramesPerDay),
		FreezeDays:      ptrInt(DefaultFreezeDays),
		HorizonDays:     ptrInt(DefaultHorizonDays),
		MarginFraction:  ptrFloat64(DefaultMarginFraction),
		MinSpanFraction: ptrFloat64(DefaultMinSpanFraction),
		FadeDays:        ptrInt(DefaultFadeDays),
	}
}

// LoadConfig loads a Config from a JSON file. The file must have a .json
// extension and be under 1MB.
func LoadConfig(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configured values are usable.
func (c *Config) Validate() error {
	if c.SurfaceWidth != nil && *c.SurfaceWidth <= 0 {
		return fmt.Errorf("surface_width must be positive, got %d", *c.SurfaceWidth)
	}
	if c.SurfaceHeight != nil && *c.SurfaceHeight <= 0 {
		return fmt.Errorf("surface_height must be positive, got %d", *c.SurfaceHeight)
	}
	if c.FramesPerDay != nil && *c.FramesPerDay < 1 {
		return fmt.Errorf("frames_per_day must be at least 1, got %d", *c.FramesPerDay)
	}
	if c.FreezeDays != nil && *c.FreezeDays < 0 {
		return fmt.Errorf("freeze_days must be non-negative, got %d", *c.FreezeDays)
	}
	if c.HorizonDays != nil && *c.HorizonDays < 0 {
		return fmt.Errorf("horizon_days must be non-negative, got %d", *c.HorizonDays)
	}
	if c.FadeDays != nil && *c.FadeDays < 0 {
		return fmt.Errorf("fade_days must be non-negative, got %d", *c.FadeDays)
	}
	if c.MarginFraction != nil && (*c.MarginFraction < 0 || *c.MarginFraction >= 1) {
		return fmt.Errorf("margin_fraction must be in [0, 1), got %f", *c.MarginFraction)
	}
	if c.MinSpanFraction != nil && (*c.MinSpanFraction <= 0 || *c.MinSpanFraction > 1) {
		return fmt.Errorf("min_span_fraction must be in (0, 1], got %f", *c.MinSpanFraction)
	}

	start, hasStart, err := c.GetStartDay()
	if err != nil {
		return err
	}
	end, hasEnd, err := c.GetEndDay()
	if err != nil {
		return err
	}
	if hasStart && hasEnd && end < start {
		return fmt.Errorf("end_date %s is before start_date %s", end, start)
	}

	return nil
}

// GetEnabled returns whether the dynamic planner runs (default true).
func (c *Config) GetEnabled() bool {
	if c.Enabled == nil {
		return true
	}
	return *c.Enabled
}

// GetSurfaceWidth returns the render width in pixels.
func (c *Config) GetSurfaceWidth() int {
	if c.SurfaceWidth == nil {
		return DefaultSurfaceWidth
	}
	return *c.SurfaceWidth
}

// GetSurfaceHeight returns the render height in pixels.
func (c *Config) GetSurfaceHeight() int {
	if c.SurfaceHeight == nil {
		return DefaultSurfaceHeight
	}
	return *c.SurfaceHeight
}

// GetAspectRatio returns surface width / height.
func (c *Config) GetAspectRatio() float64 {
	return float64(c.GetSurfaceWidth()) / float64(c.GetSurfaceHeight())
}

func (c *Config) GetFramesPerDay() int {
	if c.FramesPerDay == nil {
		return DefaultFramesPerDay
	}
	return *c.FramesPerDay
}

func (c *Config) GetFreezeDays() int {
	if c.FreezeDays == nil {
		return DefaultFreezeDays
	}
	return *c.FreezeDays
}

func (c *Config) GetHorizonDays() int {
	if c.HorizonDays == nil {
		return DefaultHorizonDays
	}
	return *c.HorizonDays
}

func (c *Config) GetMarginFraction() float64 {
	if c.MarginFraction == nil {
		return DefaultMarginFraction
	}
	return *c.MarginFraction
}

func (c *Config) GetMinSpanFraction() float64 {
	if c.MinSpanFraction == nil {
		return DefaultMinSpanFraction
	}
	return *c.MinSpanFraction
}

func (c *Config) GetFadeDays() int {
	if c.FadeDays == nil {
		return DefaultFadeDays
	}
	return *c.FadeDays
}

// GetStartDay returns the configured first day, if any.
func (c *Config) GetStartDay() (timeutil.Day, bool, error) {
	return parseOptionalDay("start_date", c.StartDate)
}

// GetEndDay returns the configured last day, if any.
func (c *Config) GetEndDay() (timeutil.Day, bool, error) {
	return parseOptionalDay("end_date", c.EndDate)
}

func parseOptionalDay(field string, s *string) (timeutil.Day, bool, error) {
	if s == nil || *s == "" {
		return 0, false, nil
	}
	d, err := timeutil.ParseDay(*s)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s: %w", field, err)
	}
	return d, true, nil
}
