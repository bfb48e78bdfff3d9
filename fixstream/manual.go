package fixstream

import "sync"

// Manual is a push-driven Source. The host (or a test) delivers fixes with
// Push and failures with Fail; both are dispatched synchronously to every
// live subscriber in subscription order.
type Manual struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*manualSub
	order  []int
}

type manualSub struct {
	id      int
	src     *Manual
	profile Profile
	h       Handler
}

// NewManual creates an empty push source.
func NewManual() *Manual {
	return &Manual{subs: map[int]*manualSub{}}
}

// Subscribe registers h under profile.
func (m *Manual) Subscribe(profile Profile, h Handler) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s := &manualSub{id: m.nextID, src: m, profile: profile, h: h}
	m.subs[s.id] = s
	m.order = append(m.order, s.id)
	return s, nil
}

func (s *manualSub) Unsubscribe() {
	s.src.mu.Lock()
	defer s.src.mu.Unlock()
	if _, ok := s.src.subs[s.id]; !ok {
		return
	}
	delete(s.src.subs, s.id)
	for i, id := range s.src.order {
		if id == s.id {
			s.src.order = append(s.src.order[:i], s.src.order[i+1:]...)
			break
		}
	}
}

func (m *Manual) snapshot() []*manualSub {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*manualSub, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.subs[id])
	}
	return out
}

func (m *Manual) live(s *manualSub) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.subs[s.id]
	return ok
}

// Push delivers fix to every subscriber.
func (m *Manual) Push(fix PositionFix) {
	for _, s := range m.snapshot() {
		// a previous handler may have unsubscribed this one
		if s.h.OnFix != nil && m.live(s) {
			s.h.OnFix(fix)
		}
	}
}

// Fail delivers err to every subscriber.
func (m *Manual) Fail(err error) {
	for _, s := range m.snapshot() {
		if s.h.OnError != nil && m.live(s) {
			s.h.OnError(err)
		}
	}
}

// Subscribers returns how many subscriptions are live.
func (m *Manual) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// ActiveProfiles lists the profiles of live subscriptions.
func (m *Manual) ActiveProfiles() []Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Profile, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.subs[id].profile)
	}
	return out
}
