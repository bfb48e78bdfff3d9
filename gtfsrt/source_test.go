package gtfsrt

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/theoremus-urban-solutions/navengine/config"
	"github.com/theoremus-urban-solutions/navengine/fixstream"
)

func testStreams() config.FixStreamConfig {
	return config.FixStreamConfig{
		Idle:       config.ProfileConfig{Interval: 10 * time.Millisecond, Accuracy: "balanced", DistanceFilter: 50},
		Navigation: config.ProfileConfig{Interval: 10 * time.Millisecond, Accuracy: "best"},
	}
}

func TestFeedSource_EmitsAdvancingFixes(t *testing.T) {
	var (
		mu   sync.Mutex
		tick uint64
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		tick++
		// timestamp advances every other request
		ts := 1700000000 + tick/2
		mu.Unlock()
		_, _ = w.Write(buildFeed(t, ts, testVehicle{vehicleID: "bus-1", lat: 42.69, lon: 23.32, timestamp: ts}))
	}))
	defer srv.Close()

	src := NewFeedSource(config.GTFSRTConfig{VehiclePositionsURL: srv.URL, VehicleID: "bus-1"}, testStreams(), nil)

	fixes := make(chan fixstream.PositionFix, 16)
	sub, err := src.Subscribe(fixstream.ProfileNavigation, fixstream.Handler{
		OnFix: func(f fixstream.PositionFix) { fixes <- f },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []fixstream.PositionFix
	timeout := time.After(2 * time.Second)
	for len(got) < 3 {
		select {
		case f := <-fixes:
			got = append(got, f)
		case <-timeout:
			t.Fatalf("expected 3 fixes, got %d", len(got))
		}
	}
	sub.Unsubscribe()
	sub.Unsubscribe()
	<-sub.(*subscription).done

	for i := 1; i < len(got); i++ {
		if !got[i].Timestamp.After(got[i-1].Timestamp) {
			t.Errorf("expected strictly increasing timestamps, got %v then %v", got[i-1].Timestamp, got[i].Timestamp)
		}
	}
}

func TestFeedSource_ReportsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	src := NewFeedSource(config.GTFSRTConfig{VehiclePositionsURL: srv.URL}, testStreams(), nil)

	errs := make(chan error, 16)
	sub, err := src.Subscribe(fixstream.ProfileIdle, fixstream.Handler{
		OnFix:   func(fixstream.PositionFix) { t.Error("unexpected fix") },
		OnError: func(err error) { errs <- err },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer sub.Unsubscribe()

	select {
	case err := <-errs:
		if err == nil {
			t.Error("expected non-nil error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected an error report")
	}
}

func TestFeedSource_NoURL(t *testing.T) {
	src := NewFeedSource(config.GTFSRTConfig{}, testStreams(), nil)
	if _, err := src.Subscribe(fixstream.ProfileNavigation, fixstream.Handler{}); !errors.Is(err, ErrNoFeedURL) {
		t.Errorf("expected ErrNoFeedURL, got %v", err)
	}
}
