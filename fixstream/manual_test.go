package fixstream

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/theoremus-urban-solutions/navengine/config"
)

func TestManual_PushAndUnsubscribe(t *testing.T) {
	src := NewManual()
	var got []PositionFix
	sub, err := src.Subscribe(ProfileNavigation, Handler{OnFix: func(f PositionFix) { got = append(got, f) }})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	src.Push(PositionFix{Latitude: 42.7, Longitude: 23.3})
	sub.Unsubscribe()
	src.Push(PositionFix{Latitude: 42.8, Longitude: 23.3})
	sub.Unsubscribe() // idempotent

	if len(got) != 1 {
		t.Fatalf("expected 1 fix before unsubscribe, got %d", len(got))
	}
	if src.Subscribers() != 0 {
		t.Errorf("expected no live subscribers, got %d", src.Subscribers())
	}
}

func TestManual_UnsubscribeFromHandler(t *testing.T) {
	src := NewManual()
	calls := 0
	var second Subscription
	_, _ = src.Subscribe(ProfileIdle, Handler{OnFix: func(PositionFix) { second.Unsubscribe() }})
	second, _ = src.Subscribe(ProfileNavigation, Handler{OnFix: func(PositionFix) { calls++ }})

	src.Push(PositionFix{})
	if calls != 0 {
		t.Errorf("handler unsubscribed mid-dispatch must not be called, got %d calls", calls)
	}
}

func TestManual_Fail(t *testing.T) {
	src := NewManual()
	var gotErr error
	_, _ = src.Subscribe(ProfileNavigation, Handler{OnError: func(err error) { gotErr = err }})
	src.Fail(ErrPermissionDenied)
	if !errors.Is(gotErr, ErrPermissionDenied) {
		t.Errorf("expected permission error, got %v", gotErr)
	}
}

func TestPositionFix_Validate(t *testing.T) {
	tests := []struct {
		name string
		fix  PositionFix
		want error
	}{
		{name: "ok", fix: PositionFix{Latitude: 42.7, Longitude: 23.3}},
		{name: "nan", fix: PositionFix{Latitude: math.NaN(), Longitude: 23.3}, want: ErrInvalidCoordinate},
		{name: "out of range", fix: PositionFix{Latitude: 100, Longitude: 23.3}, want: ErrInvalidCoordinate},
		{name: "poor accuracy", fix: PositionFix{Latitude: 42.7, Longitude: 23.3, Accuracy: Float(250)}, want: ErrPoorAccuracy},
		{name: "good accuracy", fix: PositionFix{Latitude: 42.7, Longitude: 23.3, Accuracy: Float(8)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fix.Validate(100); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSettingsFor(t *testing.T) {
	cfg := config.Default().FixStream
	nav := SettingsFor(cfg, ProfileNavigation)
	idle := SettingsFor(cfg, ProfileIdle)
	if nav.Interval != time.Second {
		t.Errorf("navigation profile should poll every second, got %v", nav.Interval)
	}
	if idle.Interval <= nav.Interval {
		t.Errorf("idle profile should be coarser than navigation: %v vs %v", idle.Interval, nav.Interval)
	}
	if ProfileNavigation.String() != "navigation" {
		t.Errorf("unexpected profile name %q", ProfileNavigation.String())
	}
}
