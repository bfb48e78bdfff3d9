package navengine

import (
	"fmt"

	"github.com/theoremus-urban-solutions/navengine/config"
	"github.com/theoremus-urban-solutions/navengine/directions"
	"github.com/theoremus-urban-solutions/navengine/fixstream"
	"github.com/theoremus-urban-solutions/navengine/gtfsrt"
	"github.com/theoremus-urban-solutions/navengine/internal/logging"
)

// NewFromConfig composes a session from application configuration.
//
// The directions provider is an OSRM client behind an LRU cache when
// directions.baseURL is set. When source is nil and a GTFS-RT feed is
// configured, the session follows that vehicle; replay.file takes
// precedence over the feed. Options are applied after
// the configured logger, so WithLogger still wins.
func NewFromConfig(cfg config.AppConfig, source fixstream.Source, opts ...Option) (*Session, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	lg := logging.New(cfg.Logging)

	var provider directions.Provider
	if cfg.Directions.BaseURL != "" {
		provider = directions.NewOSRMClient(cfg.Directions)
		if cfg.Directions.CacheSize > 0 {
			cache, err := directions.NewCache(provider, cfg.Directions.CacheSize, cfg.Directions.CachePrecision)
			if err != nil {
				return nil, fmt.Errorf("directions: %w", err)
			}
			provider = cache
		}
	} else {
		lg.Warn("no directions provider configured, recalculation disabled")
	}

	switch {
	case source != nil:
	case cfg.Replay.File != "":
		tr, err := fixstream.LoadTrace(cfg.Replay.File)
		if err != nil {
			return nil, fmt.Errorf("replay: %w", err)
		}
		lg.Info("replaying fix trace", "file", cfg.Replay.File, "fixes", len(tr.Fixes), "speed", cfg.Replay.Speed)
		source = fixstream.NewReplay(tr, cfg.Replay.Speed)
	case cfg.GTFSRT.VehiclePositionsURL != "":
		source = gtfsrt.NewFeedSource(cfg.GTFSRT, cfg.FixStream, lg)
	}

	opts = append([]Option{WithLogger(lg)}, opts...)
	return NewSession(cfg.Navigation, source, provider, opts...), nil
}
