package view

import (
	"fmt"

	"github.com/banshee-data/weld.report/internal/colormap"
	"github.com/banshee-data/weld.report/internal/config"
	"github.com/banshee-data/weld.report/internal/geometry"
	"github.com/banshee-data/weld.report/internal/metrics"
	"github.com/banshee-data/weld.report/internal/units"
)

// Config holds the viewer settings used to build frames.
type Config struct {
	FOVDegrees    float64
	CameraMargin  float64
	TickCount     int
	ZThickness    float64
	Palette       colormap.Palette
	SeriesPalette colormap.Palette
	Gradient      colormap.Gradient
	SpeedUnits    string
}

// DefaultConfig returns the built-in viewer settings.
func DefaultConfig() Config {
	return ConfigFrom(config.EmptyDashboardConfig())
}

// ConfigFrom extracts the viewer settings from a dashboard config.
func ConfigFrom(c *config.DashboardConfig) Config {
	return Config{
		FOVDegrees:    c.GetFOVDegrees(),
		CameraMargin:  c.GetCameraMargin(),
		TickCount:     c.GetTickCount(),
		ZThickness:    c.GetZThickness(),
		Palette:       c.GetPalette(),
		SeriesPalette: c.GetSeriesPalette(),
		Gradient:      c.GetGradient(),
		SpeedUnits:    c.GetTravelSpeedUnits(),
	}
}

// Validate rejects settings that would make frame construction meaningless.
func (c Config) Validate() error {
	if err := geometry.ValidateFOV(c.FOVDegrees); err != nil {
		return err
	}
	if c.CameraMargin <= 0 {
		return fmt.Errorf("camera margin must be positive, got %v", c.CameraMargin)
	}
	if c.ZThickness <= 0 {
		return fmt.Errorf("z thickness must be positive, got %v", c.ZThickness)
	}
	if !units.IsValidSpeedUnit(c.SpeedUnits) {
		return fmt.Errorf("invalid travel speed unit %q; valid: %s", c.SpeedUnits, units.GetValidSpeedUnitsString())
	}
	return nil
}

func (c Config) tickCount() int {
	if c.TickCount < 1 {
		return metrics.DefaultTickCount
	}
	return c.TickCount
}
