package gtfsrt

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/theoremus-urban-solutions/navengine/config"
	"github.com/theoremus-urban-solutions/navengine/fixstream"
	"github.com/theoremus-urban-solutions/navengine/geo"
)

// ErrNoFeedURL is returned by Subscribe when no feed is configured.
var ErrNoFeedURL = errors.New("gtfsrt: vehicle positions URL not configured")

// FeedSource is a polling fixstream.Source backed by a GTFS-RT feed.
type FeedSource struct {
	url       string
	vehicleID string
	streams   config.FixStreamConfig
	client    *Client
	logger    *slog.Logger
	now       func() time.Time
}

// NewFeedSource creates a source from configuration.
func NewFeedSource(cfg config.GTFSRTConfig, streams config.FixStreamConfig, lg *slog.Logger) *FeedSource {
	if lg == nil {
		lg = slog.Default()
	}
	return &FeedSource{
		url:       cfg.VehiclePositionsURL,
		vehicleID: cfg.VehicleID,
		streams:   streams,
		client:    NewClient(time.Duration(cfg.TimeoutMS) * time.Millisecond),
		logger:    lg.With("component", "gtfsrt"),
		now:       time.Now,
	}
}

type subscription struct {
	cancel  context.CancelFunc
	stopped atomic.Bool
	done    chan struct{}
	once    sync.Once
}

// Unsubscribe stops polling. No fix is delivered once it returns, except a
// delivery already running on the polling goroutine.
func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.stopped.Store(true)
		s.cancel()
	})
}

// Subscribe starts polling at the profile's interval. The first poll runs
// immediately.
func (f *FeedSource) Subscribe(profile fixstream.Profile, h fixstream.Handler) (fixstream.Subscription, error) {
	if f.url == "" {
		return nil, ErrNoFeedURL
	}
	settings := fixstream.SettingsFor(f.streams, profile)
	interval := settings.Interval
	if interval <= 0 {
		interval = time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub := &subscription{cancel: cancel, done: make(chan struct{})}

	f.logger.Info("subscribed to vehicle positions",
		"url", f.url, "vehicle", f.vehicleID, "profile", profile.String(), "interval", interval)

	go f.poll(ctx, sub, settings, interval, h)
	return sub, nil
}

func (f *FeedSource) poll(ctx context.Context, sub *subscription, settings fixstream.Settings, interval time.Duration, h fixstream.Handler) {
	defer close(sub.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		last    fixstream.PositionFix
		emitted bool
	)
	for {
		fix, ok, err := f.pollOnce(ctx)
		switch {
		case ctx.Err() != nil || sub.stopped.Load():
			return
		case err != nil:
			f.logger.Warn("vehicle positions poll failed", "error", err)
			if h.OnError != nil {
				h.OnError(err)
			}
		case !ok:
			f.logger.Debug("vehicle not present in feed", "vehicle", f.vehicleID)
		case emitted && !fix.Timestamp.After(last.Timestamp):
			// unchanged position report
		case emitted && settings.DistanceFilter > 0 &&
			geo.Distance(last.Latitude, last.Longitude, fix.Latitude, fix.Longitude) < settings.DistanceFilter:
			f.logger.Debug("fix within distance filter", "filter", settings.DistanceFilter)
		default:
			last, emitted = fix, true
			if h.OnFix != nil {
				h.OnFix(fix)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (f *FeedSource) pollOnce(ctx context.Context) (fixstream.PositionFix, bool, error) {
	data, err := f.client.Fetch(ctx, f.url)
	if err != nil {
		return fixstream.PositionFix{}, false, err
	}
	fix, ok, err := DecodeVehicleFix(data, f.vehicleID)
	if err != nil || !ok {
		return fix, ok, err
	}
	if fix.Timestamp.IsZero() {
		fix.Timestamp = f.now()
	}
	return fix, true, nil
}
