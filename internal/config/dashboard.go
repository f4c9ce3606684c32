package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/weld.report/internal/colormap"
	"github.com/banshee-data/weld.report/internal/geometry"
	"github.com/banshee-data/weld.report/internal/metrics"
	"github.com/banshee-data/weld.report/internal/units"
)

// DefaultConfigPath is the path to the canonical dashboard defaults file.
const DefaultConfigPath = "config/dashboard.defaults.json"

const maxConfigFileSize = 1 * 1024 * 1024 // 1MB

// DashboardConfig holds server, ingest, and viewer settings. Every field is
// optional; the Get* methods supply the default when a field is unset, so
// partial files are safe.
type DashboardConfig struct {
	// Server
	Listen   *string `json:"listen,omitempty"`
	DBPath   *string `json:"db_path,omitempty"`
	Timezone *string `json:"timezone,omitempty"`

	// Viewer
	FOVDegrees       *float64    `json:"fov_degrees,omitempty"`
	CameraMargin     *float64    `json:"camera_margin,omitempty"`
	TickCount        *int        `json:"tick_count,omitempty"`
	ZThickness       *float64    `json:"z_thickness,omitempty"`
	Palette          []string    `json:"palette,omitempty"`
	SeriesPalette    []string    `json:"series_palette,omitempty"`
	GradientLow      *[3]float64 `json:"gradient_low,omitempty"`
	GradientMid      *[3]float64 `json:"gradient_mid,omitempty"`
	GradientHigh     *[3]float64 `json:"gradient_high,omitempty"`
	TravelSpeedUnits *string     `json:"travel_speed_units,omitempty"`

	// Ingest: scan_value = scan_raw * distance_a + distance_b
	DistanceA      *float64 `json:"distance_a,omitempty"`
	DistanceB      *float64 `json:"distance_b,omitempty"`
	MaxUploadBytes *int64   `json:"max_upload_bytes,omitempty"`
}

// EmptyDashboardConfig returns a config with every field unset.
func EmptyDashboardConfig() *DashboardConfig {
	return &DashboardConfig{}
}

// LoadDashboardConfig loads a DashboardConfig from a JSON file. The file must
// have a .json extension and be at most 1MB.
func LoadDashboardConfig(path string) (*DashboardConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxConfigFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyDashboardConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical dashboard defaults from
// DefaultConfigPath, searching the current directory and its parents.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *DashboardConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadDashboardConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the set fields hold usable values.
func (c *DashboardConfig) Validate() error {
	if c.FOVDegrees != nil {
		if err := geometry.ValidateFOV(*c.FOVDegrees); err != nil {
			return fmt.Errorf("fov_degrees: %w", err)
		}
	}

	if c.CameraMargin != nil && *c.CameraMargin <= 0 {
		return fmt.Errorf("camera_margin must be positive, got %f", *c.CameraMargin)
	}

	if c.TickCount != nil && *c.TickCount < 1 {
		return fmt.Errorf("tick_count must be at least 1, got %d", *c.TickCount)
	}

	if c.ZThickness != nil && *c.ZThickness <= 0 {
		return fmt.Errorf("z_thickness must be positive, got %f", *c.ZThickness)
	}

	for name, p := range map[string][]string{"palette": c.Palette, "series_palette": c.SeriesPalette} {
		for _, hex := range p {
			if _, err := colormap.ParseHex(hex); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
	}

	for name, rgb := range map[string]*[3]float64{
		"gradient_low":  c.GradientLow,
		"gradient_mid":  c.GradientMid,
		"gradient_high": c.GradientHigh,
	} {
		if rgb == nil {
			continue
		}
		for _, v := range rgb {
			if v < 0 || v > 1 {
				return fmt.Errorf("%s components must be between 0 and 1, got %v", name, *rgb)
			}
		}
	}

	if c.TravelSpeedUnits != nil && !units.IsValidSpeedUnit(*c.TravelSpeedUnits) {
		return fmt.Errorf("travel_speed_units: invalid unit %q; valid: %s", *c.TravelSpeedUnits, units.GetValidSpeedUnitsString())
	}

	if c.Timezone != nil && *c.Timezone != "" && !units.IsTimezoneValid(*c.Timezone) {
		return fmt.Errorf("timezone: unknown timezone %q", *c.Timezone)
	}

	if c.MaxUploadBytes != nil && *c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", *c.MaxUploadBytes)
	}

	return nil
}

// GetListen returns the HTTP listen address or the default.
func (c *DashboardConfig) GetListen() string {
	if c.Listen == nil || *c.Listen == "" {
		return ":8080"
	}
	return *c.Listen
}

// GetDBPath returns the sqlite database path or the default.
func (c *DashboardConfig) GetDBPath() string {
	if c.DBPath == nil || *c.DBPath == "" {
		return "weld_data.db"
	}
	return *c.DBPath
}

// GetTimezone returns the display timezone for timestamps or UTC.
func (c *DashboardConfig) GetTimezone() string {
	if c.Timezone == nil || *c.Timezone == "" {
		return "UTC"
	}
	return *c.Timezone
}

// GetFOVDegrees returns the viewer field of view or the default.
func (c *DashboardConfig) GetFOVDegrees() float64 {
	if c.FOVDegrees == nil {
		return geometry.DefaultFOVDegrees
	}
	return *c.FOVDegrees
}

// GetCameraMargin returns the camera margin multiplier or the default.
func (c *DashboardConfig) GetCameraMargin() float64 {
	if c.CameraMargin == nil {
		return geometry.DefaultCameraMargin
	}
	return *c.CameraMargin
}

// GetTickCount returns the approximate sample-axis tick count or the default.
func (c *DashboardConfig) GetTickCount() int {
	if c.TickCount == nil {
		return metrics.DefaultTickCount
	}
	return *c.TickCount
}

// GetZThickness returns the footprint thickness or the default.
func (c *DashboardConfig) GetZThickness() float64 {
	if c.ZThickness == nil {
		return geometry.DefaultZThickness
	}
	return *c.ZThickness
}

// GetPalette returns the categorical palette or the default.
func (c *DashboardConfig) GetPalette() colormap.Palette {
	if len(c.Palette) == 0 {
		return colormap.Palette(colormap.DefaultPalette)
	}
	return colormap.Palette(c.Palette)
}

// GetSeriesPalette returns the chart line palette or the default.
func (c *DashboardConfig) GetSeriesPalette() colormap.Palette {
	if len(c.SeriesPalette) == 0 {
		return colormap.Palette(colormap.DefaultSeriesPalette)
	}
	return colormap.Palette(c.SeriesPalette)
}

// GetGradient returns the scalar color ramp, filling unset anchors with the
// defaults.
func (c *DashboardConfig) GetGradient() colormap.Gradient {
	g := colormap.DefaultGradient
	if c.GradientLow != nil {
		g.Low = colormap.RGB(*c.GradientLow)
	}
	if c.GradientMid != nil {
		g.Mid = colormap.RGB(*c.GradientMid)
	}
	if c.GradientHigh != nil {
		g.High = colormap.RGB(*c.GradientHigh)
	}
	return g
}

// GetTravelSpeedUnits returns the display unit for travel speed or the default.
func (c *DashboardConfig) GetTravelSpeedUnits() string {
	if c.TravelSpeedUnits == nil || *c.TravelSpeedUnits == "" {
		return units.MMPS
	}
	return *c.TravelSpeedUnits
}

// GetDistanceA returns the scan transform gain or the default.
func (c *DashboardConfig) GetDistanceA() float64 {
	if c.DistanceA == nil {
		return 1.0
	}
	return *c.DistanceA
}

// GetDistanceB returns the scan transform offset or the default.
func (c *DashboardConfig) GetDistanceB() float64 {
	if c.DistanceB == nil {
		return 0.0
	}
	return *c.DistanceB
}

// GetMaxUploadBytes returns the upload size limit or the default.
func (c *DashboardConfig) GetMaxUploadBytes() int64 {
	if c.MaxUploadBytes == nil {
		return 512 << 20 // 512MB
	}
	return *c.MaxUploadBytes
}
