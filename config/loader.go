package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the global application configuration
var Config AppConfig

// ErrNoConfigFile is returned when none of the search paths exists.
var ErrNoConfigFile = errors.New("config: no configuration file found")

var searchPaths = []string{"navengine.yml", "config.yml", "./config/navengine.yml"}

// LoadAppConfig loads .env, then the first config file found on the search
// paths, applies defaults and env overrides, validates and stores the result
// in Config.
func LoadAppConfig() error {
	_ = godotenv.Load()

	var data []byte
	var err error
	for _, p := range searchPaths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoConfigFile, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return err
	}
	Config = cfg
	return nil
}

// Load reads and validates a single configuration file.
func Load(path string) (AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AppConfig{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML, fills omitted values with defaults, applies
// NAVENGINE_* environment overrides and validates the result.
func Parse(data []byte) (AppConfig, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	applyDefaults(&cfg)
	applyEnv(&cfg)
	if err := Validate(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks every section's struct tags. Sections tagged required
// must not be left zero.
func Validate(cfg AppConfig) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Default returns the configuration used when no file overrides a value.
func Default() AppConfig {
	return AppConfig{
		Navigation: DefaultNavigation(),
		FixStream: FixStreamConfig{
			Idle:       ProfileConfig{Interval: 10 * time.Second, Accuracy: "balanced", DistanceFilter: 50},
			Navigation: ProfileConfig{Interval: time.Second, Accuracy: "best", DistanceFilter: 0},
		},
		Directions: DirectionsConfig{
			Profile:        "driving",
			Timeout:        10 * time.Second,
			CacheSize:      64,
			CachePrecision: 4,
		},
		Logging: LoggingConfig{Level: "info", MaxSizeMB: 32, MaxBackups: 1},
	}
}

// DefaultNavigation returns the engine thresholds.
func DefaultNavigation() NavigationConfig {
	return NavigationConfig{
		Tracking: TrackingConfig{
			ForwardSmoothing:       0.85,
			JumpThreshold:          50,
			HighConfidenceDistance: 10,
			BackwardCorrection:     0.5,
			MaxBackwardCorrection:  10,
			DecayFactor:            0.1,
			MaxRetreatPerTick:      2,
			LookAheadVertices:      3,
			HistorySize:            10,
			GapReset:               15 * time.Second,
			MaxFixAccuracy:         100,
		},
		Maneuver: ManeuverConfig{ArrivalThreshold: 20},
		OffRoute: OffRouteConfig{
			OffRouteThreshold:     20,
			RecalculateThreshold:  50,
			RecalculationCooldown: 3 * time.Second,
		},
	}
}

// applyDefaults restores defaults for values a partial file zeroed out.
func applyDefaults(cfg *AppConfig) {
	def := Default()
	if cfg.FixStream.Idle.Interval == 0 {
		cfg.FixStream.Idle = def.FixStream.Idle
	}
	if cfg.FixStream.Navigation.Interval == 0 {
		cfg.FixStream.Navigation = def.FixStream.Navigation
	}
	if cfg.Directions.Profile == "" {
		cfg.Directions.Profile = def.Directions.Profile
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("NAVENGINE_DIRECTIONS_URL"); v != "" {
		cfg.Directions.BaseURL = v
	}
	if v := os.Getenv("NAVENGINE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("NAVENGINE_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
	if v := os.Getenv("NAVENGINE_GTFSRT_URL"); v != "" {
		cfg.GTFSRT.VehiclePositionsURL = v
	}
	if v := os.Getenv("NAVENGINE_GTFSRT_VEHICLE"); v != "" {
		cfg.GTFSRT.VehicleID = v
	}
	if v := os.Getenv("NAVENGINE_REPLAY_FILE"); v != "" {
		cfg.Replay.File = v
	}
}
