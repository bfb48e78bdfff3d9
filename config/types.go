package config

import "time"

// TrackingConfig holds the progress tracker's smoothing constants.
type TrackingConfig struct {
	// ForwardSmoothing is the blend factor applied when the raw distance is
	// ahead of the displayed one. 1 means snap forward immediately.
	ForwardSmoothing float64 `yaml:"forwardSmoothing" validate:"gt=0,lte=1"`
	// JumpThreshold is how far (m) the raw distance may fall behind before
	// it is treated as a GPS reacquisition or reroute and snapped to.
	JumpThreshold float64 `yaml:"jumpThreshold" validate:"gt=0"`
	// HighConfidenceDistance is the off-route distance (m) under which a
	// fix is trusted enough for a limited backward correction.
	HighConfidenceDistance float64 `yaml:"highConfidenceDistance" validate:"gte=0"`
	BackwardCorrection     float64 `yaml:"backwardCorrection" validate:"gte=0,lte=1"`
	MaxBackwardCorrection  float64 `yaml:"maxBackwardCorrection" validate:"gte=0"`
	DecayFactor            float64 `yaml:"decayFactor" validate:"gte=0,lte=1"`
	MaxRetreatPerTick      float64 `yaml:"maxRetreatPerTick" validate:"gte=0"`
	// LookAheadVertices is how many polyline vertices ahead of the smoothed
	// position the display heading is computed against.
	LookAheadVertices int           `yaml:"lookAheadVertices" validate:"gte=1"`
	HistorySize       int           `yaml:"historySize" validate:"gte=2,lte=100"`
	GapReset          time.Duration `yaml:"gapReset" validate:"gte=0"`
	MaxFixAccuracy    float64       `yaml:"maxFixAccuracy" validate:"gte=0"`
}

// ManeuverConfig configures step advancement.
type ManeuverConfig struct {
	ArrivalThreshold float64 `yaml:"arrivalThreshold" validate:"gt=0"`
}

// OffRouteConfig configures deviation detection. RecalculateThreshold must
// be strictly larger than OffRouteThreshold.
type OffRouteConfig struct {
	OffRouteThreshold     float64       `yaml:"offRouteThreshold" validate:"gt=0"`
	RecalculateThreshold  float64       `yaml:"recalculateThreshold" validate:"gtfield=OffRouteThreshold"`
	RecalculationCooldown time.Duration `yaml:"recalculationCooldown" validate:"gte=0"`
}

// NavigationConfig groups the engine thresholds.
type NavigationConfig struct {
	Tracking TrackingConfig `yaml:"tracking" validate:"required"`
	Maneuver ManeuverConfig `yaml:"maneuver" validate:"required"`
	OffRoute OffRouteConfig `yaml:"offRoute" validate:"required"`
}

// ProfileConfig describes one position-fix cadence profile.
type ProfileConfig struct {
	Interval       time.Duration `yaml:"interval" validate:"gt=0"`
	Accuracy       string        `yaml:"accuracy" validate:"oneof=coarse balanced high best"`
	DistanceFilter float64       `yaml:"distanceFilter" validate:"gte=0"`
}

// FixStreamConfig holds the idle and navigation cadence profiles.
type FixStreamConfig struct {
	Idle       ProfileConfig `yaml:"idle" validate:"required"`
	Navigation ProfileConfig `yaml:"navigation" validate:"required"`
}

// DirectionsConfig contains directions provider configuration
type DirectionsConfig struct {
	BaseURL        string        `yaml:"baseURL" validate:"omitempty,url"`
	Profile        string        `yaml:"profile" validate:"omitempty,oneof=driving walking cycling foot car bike"`
	Timeout        time.Duration `yaml:"timeout" validate:"gte=0"`
	CacheSize      int           `yaml:"cacheSize" validate:"gte=0"`
	CachePrecision int           `yaml:"cachePrecision" validate:"gte=0,lte=7"`
}

// GTFSRTConfig contains the optional GTFS-Realtime fix feed configuration
type GTFSRTConfig struct {
	VehiclePositionsURL string `yaml:"vehiclePositionsURL" validate:"omitempty,url"`
	VehicleID           string `yaml:"vehicleID"`
	TimeoutMS           int    `yaml:"timeoutMS" validate:"gte=0"`
}

// ReplayConfig points the engine at a recorded fix trace instead of a live
// source. Speed 0 plays the trace without delays.
type ReplayConfig struct {
	File  string  `yaml:"file"`
	Speed float64 `yaml:"speed" validate:"gte=0"`
}

// LoggingConfig selects level and destination of the engine logger
type LoggingConfig struct {
	Level      string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB" validate:"gte=0"`
	MaxBackups int    `yaml:"maxBackups" validate:"gte=0"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Navigation NavigationConfig `yaml:"navigation" validate:"required"`
	FixStream  FixStreamConfig  `yaml:"fixStream" validate:"required"`
	Directions DirectionsConfig `yaml:"directions"`
	GTFSRT     GTFSRTConfig     `yaml:"gtfsrt"`
	Replay     ReplayConfig     `yaml:"replay"`
	Logging    LoggingConfig    `yaml:"logging"`
}
