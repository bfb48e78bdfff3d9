package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
)

func TestDefault_IsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	nav := DefaultNavigation()
	if nav.OffRoute.OffRouteThreshold >= nav.OffRoute.RecalculateThreshold {
		t.Errorf("expected off-route threshold below recalculate threshold, got %v >= %v",
			nav.OffRoute.OffRouteThreshold, nav.OffRoute.RecalculateThreshold)
	}
}

func TestValidate_RequiredSections(t *testing.T) {
	cfg := Default()
	cfg.Navigation.Maneuver = ManeuverConfig{}

	err := Validate(cfg)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation errors, got %v", err)
	}
	found := false
	for _, fe := range verrs {
		if fe.Field() == "Maneuver" && fe.Tag() == "required" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a required error for Maneuver, got %v", verrs)
	}
}

func TestParse_PartialKeepsDefaults(t *testing.T) {
	data := []byte(`
navigation:
  offRoute:
    offRouteThreshold: 25
    recalculationCooldown: 5s
directions:
  baseURL: http://localhost:5000
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Navigation.OffRoute.OffRouteThreshold != 25 {
		t.Errorf("expected off-route threshold 25, got %v", cfg.Navigation.OffRoute.OffRouteThreshold)
	}
	if cfg.Navigation.OffRoute.RecalculationCooldown != 5*time.Second {
		t.Errorf("expected cooldown 5s, got %v", cfg.Navigation.OffRoute.RecalculationCooldown)
	}
	if cfg.Navigation.OffRoute.RecalculateThreshold != 50 {
		t.Errorf("expected default recalculate threshold 50, got %v", cfg.Navigation.OffRoute.RecalculateThreshold)
	}
	if cfg.Navigation.Tracking.ForwardSmoothing != 0.85 {
		t.Errorf("expected default forward smoothing 0.85, got %v", cfg.Navigation.Tracking.ForwardSmoothing)
	}
	if cfg.Directions.Profile != "driving" {
		t.Errorf("expected default profile driving, got %q", cfg.Directions.Profile)
	}
	if cfg.FixStream.Navigation.Interval != time.Second {
		t.Errorf("expected navigation interval 1s, got %v", cfg.FixStream.Navigation.Interval)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{
			name: "malformed yaml",
			data: "navigation: [",
			want: "failed to decode config",
		},
		{
			name: "recalculate not above off-route",
			data: "navigation:\n  offRoute:\n    offRouteThreshold: 60\n    recalculateThreshold: 50\n",
			want: "RecalculateThreshold",
		},
		{
			name: "smoothing out of range",
			data: "navigation:\n  tracking:\n    forwardSmoothing: 1.5\n",
			want: "ForwardSmoothing",
		},
		{
			name: "unknown accuracy class",
			data: "fixStream:\n  navigation:\n    interval: 1s\n    accuracy: perfect\n",
			want: "Accuracy",
		},
		{
			name: "bad log level",
			data: "logging:\n  level: loud\n",
			want: "Level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("NAVENGINE_DIRECTIONS_URL", "http://osrm.internal:5000")
	t.Setenv("NAVENGINE_LOG_LEVEL", "debug")
	t.Setenv("NAVENGINE_GTFSRT_VEHICLE", "bus-42")

	cfg, err := Parse([]byte("logging:\n  level: warn\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Directions.BaseURL != "http://osrm.internal:5000" {
		t.Errorf("expected env base URL, got %q", cfg.Directions.BaseURL)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected env log level debug, got %q", cfg.Logging.Level)
	}
	if cfg.GTFSRT.VehicleID != "bus-42" {
		t.Errorf("expected env vehicle bus-42, got %q", cfg.GTFSRT.VehicleID)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navengine.yml")
	if err := os.WriteFile(path, []byte("navigation:\n  maneuver:\n    arrivalThreshold: 15\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Navigation.Maneuver.ArrivalThreshold != 15 {
		t.Errorf("expected arrival threshold 15, got %v", cfg.Navigation.Maneuver.ArrivalThreshold)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadAppConfig_NoFile(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(wd) }()

	if err := LoadAppConfig(); !errors.Is(err, ErrNoConfigFile) {
		t.Errorf("expected ErrNoConfigFile, got %v", err)
	}
}
