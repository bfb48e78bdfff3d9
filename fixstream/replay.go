package fixstream

import (
	"context"
	"sync"
	"time"
)

// Replay is a Source that plays a recorded trace on its own goroutine.
// Fixes are paced by the gaps between their timestamps divided by speed;
// a speed of 0 delivers them back to back. Each subscription plays the
// trace from the start; when it runs out the handler gets ErrStreamClosed.
type Replay struct {
	fixes []PositionFix
	speed float64
}

// NewReplay creates a replay source for t.
func NewReplay(t Trace, speed float64) *Replay {
	return &Replay{fixes: append([]PositionFix(nil), t.Fixes...), speed: speed}
}

type replaySub struct {
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
}

func (s *replaySub) Unsubscribe() {
	s.once.Do(s.cancel)
}

// Done is closed once the replay finished or was unsubscribed.
func (s *replaySub) Done() <-chan struct{} { return s.done }

// Subscribe starts playback. The profile is ignored: a trace carries its
// own cadence.
func (r *Replay) Subscribe(_ Profile, h Handler) (Subscription, error) {
	ctx, cancel := context.WithCancel(context.Background())
	sub := &replaySub{cancel: cancel, done: make(chan struct{})}
	go r.play(ctx, sub, h)
	return sub, nil
}

func (r *Replay) play(ctx context.Context, sub *replaySub, h Handler) {
	defer close(sub.done)
	for i, f := range r.fixes {
		if i > 0 && r.speed > 0 {
			gap := f.Timestamp.Sub(r.fixes[i-1].Timestamp)
			if gap > 0 {
				timer := time.NewTimer(time.Duration(float64(gap) / r.speed))
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
			}
		}
		if ctx.Err() != nil {
			return
		}
		if h.OnFix != nil {
			h.OnFix(f)
		}
	}
	if ctx.Err() == nil && h.OnError != nil {
		h.OnError(ErrStreamClosed)
	}
}
