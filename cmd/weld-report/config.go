package main

import (
	"fmt"
	"path/filepath"

	"github.com/banshee-data/weld.report/internal/config"
	"github.com/banshee-data/weld.report/internal/ingest"
	"github.com/banshee-data/weld.report/internal/units"
	"github.com/banshee-data/weld.report/internal/view"
)

// loadConfig reads path, or returns an empty config whose getters supply
// the defaults when path is empty.
func loadConfig(path string) (*config.DashboardConfig, error) {
	if path == "" {
		return config.EmptyDashboardConfig(), nil
	}
	return config.LoadDashboardConfig(path)
}

func resolveListen(cfg *config.DashboardConfig, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return cfg.GetListen()
}

func resolveDBPath(cfg *config.DashboardConfig, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return cfg.GetDBPath()
}

func resolveSpoolDir(dbPath, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return filepath.Join(filepath.Dir(dbPath), "spool")
}

func scanTransform(cfg *config.DashboardConfig) ingest.ScanTransform {
	return ingest.ScanTransform{A: cfg.GetDistanceA(), B: cfg.GetDistanceB()}
}

// viewConfig builds the renderer settings and checks them before anything
// is served.
func viewConfig(cfg *config.DashboardConfig) (view.Config, error) {
	vc := view.ConfigFrom(cfg)
	if err := vc.Validate(); err != nil {
		return view.Config{}, fmt.Errorf("invalid viewer config: %w", err)
	}
	if tz := cfg.GetTimezone(); !units.IsTimezoneValid(tz) {
		return view.Config{}, fmt.Errorf("unknown timezone %q", tz)
	}
	return vc, nil
}
