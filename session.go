package navengine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/theoremus-urban-solutions/navengine/config"
	"github.com/theoremus-urban-solutions/navengine/directions"
	"github.com/theoremus-urban-solutions/navengine/fixstream"
	"github.com/theoremus-urban-solutions/navengine/maneuver"
	"github.com/theoremus-urban-solutions/navengine/offroute"
	"github.com/theoremus-urban-solutions/navengine/route"
	"github.com/theoremus-urban-solutions/navengine/tracking"
	"github.com/theoremus-urban-solutions/navengine/utils"
)

var (
	ErrNilRoute         = errors.New("navengine: nil route")
	ErrNoFixSource      = errors.New("navengine: no fix source")
	ErrNoProvider       = errors.New("navengine: no directions provider")
	ErrNavigationActive = errors.New("navengine: navigation already active")
)

// boundsPadding is the map-camera padding around the route, in degrees.
const boundsPadding = 0.001

// Session controls one navigation at a time.
//
// Fix passes and recalculation completions are serialized by procMu, so
// a pass never overlaps another. State lives behind mu, which is released
// before callbacks run.
type Session struct {
	cfg      config.NavigationConfig
	source   fixstream.Source
	provider directions.Provider
	now      func() time.Time
	logger   *slog.Logger
	roadInfo RoadInfoFunc

	procMu sync.Mutex

	mu           sync.Mutex
	status       Status
	id           string
	plan         *route.Plan
	destination  orb.Point
	callbacks    Callbacks
	sub          fixstream.Subscription
	generation   uint64
	baseCtx      context.Context
	cancelRecalc context.CancelFunc
	lastFix      fixstream.PositionFix
	hasFix       bool
	tracker      *tracking.Tracker
	seq          *maneuver.Sequencer
	detector     *offroute.Detector
	drops        *dropAggregator
	state        NavigationState
}

// NewSession creates an idle session. provider may be nil, in which case
// the session flags deviations but never recalculates.
func NewSession(cfg config.NavigationConfig, source fixstream.Source, provider directions.Provider, opts ...Option) *Session {
	s := &Session{
		cfg:      cfg,
		source:   source,
		provider: provider,
		now:      time.Now,
		logger:   slog.Default(),
		roadInfo: StepRoadInfo,
		drops:    newDropAggregator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "navengine")
	s.tracker = tracking.New(cfg.Tracking, s.logger)
	s.seq = maneuver.New(cfg.Maneuver)
	s.detector = offroute.New(cfg.OffRoute)
	return s
}

// Preview shows plan without navigating. The session listens to the idle
// profile so NavigationState.Location follows the device.
func (s *Session) Preview(plan *route.Plan) error {
	if plan == nil {
		return ErrNilRoute
	}
	adopted := plan.Adopt()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusActive {
		return ErrNavigationActive
	}
	s.teardownLocked()
	gen := s.generation

	s.status = StatusPreviewing
	s.id = ""
	s.plan = adopted
	s.destination = adopted.Destination
	s.callbacks = Callbacks{}
	s.seq.Reset(adopted)
	s.tracker.Reset()
	s.detector.Reset()
	s.resetStateLocked()

	if s.source != nil {
		sub, err := s.source.Subscribe(fixstream.ProfileIdle, fixstream.Handler{
			OnFix: func(f fixstream.PositionFix) { s.handleIdleFix(gen, f) },
		})
		if err != nil {
			s.logger.Warn("idle fix subscription failed", "error", err)
		} else {
			s.sub = sub
		}
	}
	return nil
}

// StartNavigation adopts plan and begins following it. ctx bounds the
// recalculation requests of this navigation. A session that is already
// navigating is stopped first.
func (s *Session) StartNavigation(ctx context.Context, plan *route.Plan, cb Callbacks) error {
	if plan == nil {
		return ErrNilRoute
	}
	if s.source == nil {
		return ErrNoFixSource
	}
	if ctx == nil {
		ctx = context.Background()
	}
	adopted := plan.Adopt()
	if err := adopted.Validate(); err != nil {
		s.logger.Warn("navigating malformed route", "error", err,
			"points", len(adopted.Geometry), "steps", len(adopted.Steps))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked()
	gen := s.generation

	s.id = uuid.NewString()
	s.plan = adopted
	s.destination = adopted.Destination
	s.callbacks = cb
	s.baseCtx = ctx
	s.hasFix = false
	s.drops = newDropAggregator()
	s.tracker.Reset()
	s.seq.Reset(adopted)
	s.detector.Reset()

	sub, err := s.source.Subscribe(fixstream.ProfileNavigation, fixstream.Handler{
		OnFix:   func(f fixstream.PositionFix) { s.handleFix(gen, f) },
		OnError: func(err error) { s.handleStreamError(gen, err) },
	})
	if err != nil {
		s.clearLocked()
		return fmt.Errorf("failed to subscribe to fix source: %w", err)
	}
	s.sub = sub
	s.status = StatusActive
	s.resetStateLocked()

	s.logger.Info("navigation started",
		slog.String("session", s.id),
		slog.Int("steps", len(adopted.Steps)),
		slog.Float64("distance", adopted.Distance))
	return nil
}

// StopNavigation unsubscribes from the fix stream, drops the route and any
// pending recalculation result, and returns to idle. It is a no-op when idle.
func (s *Session) StopNavigation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusIdle {
		return
	}
	s.teardownLocked()
	if s.status == StatusActive {
		s.drops.LogAll(s.logger, s.id)
		s.logger.Info("navigation stopped", slog.String("session", s.id))
	}
	s.clearLocked()
}

// teardownLocked invalidates callbacks of the current generation.
func (s *Session) teardownLocked() {
	s.generation++
	if s.cancelRecalc != nil {
		s.cancelRecalc()
		s.cancelRecalc = nil
	}
	if s.sub != nil {
		s.sub.Unsubscribe()
		s.sub = nil
	}
}

func (s *Session) clearLocked() {
	s.status = StatusIdle
	s.id = ""
	s.plan = nil
	s.callbacks = Callbacks{}
	s.baseCtx = nil
	s.seq.Reset(nil)
	s.tracker.Reset()
	s.detector.Reset()
	s.state = NavigationState{Status: StatusIdle}
}

// resetStateLocked rebuilds the snapshot for a freshly adopted plan.
func (s *Session) resetStateLocked() {
	prev := s.state
	s.state = NavigationState{
		SessionID:      s.id,
		Status:         s.status,
		Location:       prev.Location,
		HasLocation:    prev.HasLocation,
		Recalculations: prev.Recalculations,
		DroppedFixes:   s.drops.Total(),
	}
	if s.status == StatusActive && prev.SessionID != s.id {
		s.state.Recalculations = 0
	}
	if step, ok := s.seq.CurrentStep(); ok {
		info := s.roadInfo(tracking.Progress{}, step)
		s.state.RoadName = info.Name
		s.state.SpeedLimit = info.SpeedLimit
	}
	s.refreshLocked(s.now())
}

// refreshLocked recomputes the derived fields of the snapshot.
func (s *Session) refreshLocked(now time.Time) {
	st := &s.state
	d := 0.0
	if st.HasProgress {
		d = st.Progress.DistanceAlongRoute
	}
	st.Plan = s.plan
	st.CurrentStepIndex = s.seq.CurrentIndex()
	st.CurrentStep, st.HasStep = s.seq.CurrentStep()
	st.NextStep, st.HasNextStep = s.seq.NextStep()
	st.Arrived = s.seq.Arrived()
	st.DistanceToNextManeuver = s.seq.DistanceToNextManeuver(d)
	st.TimeToNextManeuver = s.seq.TimeToNextManeuver(d)
	st.RemainingDistance = s.seq.RemainingDistance(d)
	st.RemainingDuration = s.seq.RemainingDuration(d)
	st.ETA = utils.ETA(now, st.RemainingDuration)
	st.IsOffRoute = s.detector.OffRoute()
	st.DroppedFixes = s.drops.Total()
	st.LastUpdate = now
}

func (s *Session) handleIdleFix(gen uint64, fix fixstream.PositionFix) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.status != StatusPreviewing {
		return
	}
	if err := fix.Validate(s.cfg.Tracking.MaxFixAccuracy); err != nil {
		s.logger.Debug("dropping idle fix", "error", err)
		return
	}
	s.state.Location = fix.Point()
	s.state.HasLocation = true
}

func (s *Session) handleFix(gen uint64, fix fixstream.PositionFix) {
	s.procMu.Lock()
	defer s.procMu.Unlock()
	s.processFix(gen, fix).fire()
}

// processFix runs one pass: tracker, then sequencer, then off-route
// detector. It returns the callbacks to fire once the lock is released.
func (s *Session) processFix(gen uint64, fix fixstream.PositionFix) events {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.status != StatusActive {
		return nil
	}
	if fix.Timestamp.IsZero() {
		fix.Timestamp = s.now()
	}
	if !s.acceptLocked(fix) {
		return nil
	}

	cb := s.callbacks
	var ev events

	p := s.tracker.Update(fix, s.plan)
	tn := s.seq.Advance(p)
	dec := s.detector.Evaluate(p.OffRouteDistance, fix.Timestamp)

	switch tn.Kind {
	case maneuver.StepChanged:
		s.logger.Debug("step advanced",
			slog.String("session", s.id),
			slog.Int("index", tn.Index),
			slog.String("instruction", tn.Step.Instruction))
		ev.stepChanged(cb, tn.Step, tn.Index)
	case maneuver.Arrived:
		s.logger.Info("arrived", slog.String("session", s.id))
		ev.arrived(cb)
	}

	if dec.OffRoute {
		if dec.Entered {
			s.logger.Info("off route", slog.String("session", s.id), slog.Float64("distance", dec.Distance))
		}
		ev.offRoute(cb, dec.Distance)
	}

	if dec.Recalculate && s.provider != nil {
		s.detector.Begin(fix.Timestamp)
		ctx, cancel := context.WithCancel(s.baseCtx)
		s.cancelRecalc = cancel
		s.state.Recalculating = true
		s.logger.Info("recalculating route",
			slog.String("session", s.id),
			slog.Float64("distance", dec.Distance))
		go s.recalculate(ctx, gen, fix.Point(), s.destination)
	}

	if step, ok := s.seq.CurrentStep(); ok {
		info := s.roadInfo(p, step)
		if info.Name != s.state.RoadName {
			s.state.RoadName = info.Name
			ev.roadNameChanged(cb, info.Name)
		}
		if info.SpeedLimit != s.state.SpeedLimit {
			s.state.SpeedLimit = info.SpeedLimit
			ev.speedLimitChanged(cb, info.SpeedLimit)
		}
	}

	s.state.Progress = p
	s.state.HasProgress = p.Valid
	s.state.Location = fix.Point()
	s.state.HasLocation = true
	s.state.OffRouteDistance = p.OffRouteDistance
	s.refreshLocked(s.now())
	return ev
}

// acceptLocked drops fixes the tracker must not see.
func (s *Session) acceptLocked(fix fixstream.PositionFix) bool {
	reason := ""
	switch err := fix.Validate(s.cfg.Tracking.MaxFixAccuracy); {
	case errors.Is(err, fixstream.ErrInvalidCoordinate):
		reason = DropInvalidCoordinate
	case errors.Is(err, fixstream.ErrPoorAccuracy):
		reason = DropPoorAccuracy
	case s.hasFix && fix.Timestamp.Before(s.lastFix.Timestamp):
		reason = DropOutOfOrder
	}
	if reason != "" {
		s.drops.Add(reason, utils.Iso8601(fix.Timestamp))
		s.state.DroppedFixes = s.drops.Total()
		s.logger.Debug("dropping fix",
			slog.String("session", s.id),
			slog.String("reason", reason),
			slog.Float64("lat", fix.Latitude),
			slog.Float64("lon", fix.Longitude))
		return false
	}
	s.lastFix, s.hasFix = fix, true
	return true
}

func (s *Session) handleStreamError(gen uint64, err error) {
	s.procMu.Lock()
	defer s.procMu.Unlock()

	s.mu.Lock()
	if gen != s.generation || s.status != StatusActive {
		s.mu.Unlock()
		return
	}
	cb := s.callbacks
	s.logger.Warn("fix stream error", slog.String("session", s.id), slog.Any("error", err))
	s.mu.Unlock()

	var ev events
	ev.failed(cb, err)
	ev.fire()
}

func (s *Session) recalculate(ctx context.Context, gen uint64, origin, destination orb.Point) {
	plan, err := s.provider.GetDirections(ctx, origin, destination)
	if err == nil && plan == nil {
		err = directions.ErrNoRoute
	}

	s.procMu.Lock()
	defer s.procMu.Unlock()
	s.completeRecalculation(gen, plan, err).fire()
}

// completeRecalculation swaps in plan if gen is still current.
func (s *Session) completeRecalculation(gen uint64, plan *route.Plan, err error) events {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.status != StatusActive {
		s.logger.Debug("discarding stale recalculation result")
		return nil
	}
	if s.cancelRecalc != nil {
		s.cancelRecalc()
		s.cancelRecalc = nil
	}

	cb := s.callbacks
	var ev events
	if err != nil {
		s.detector.Failed()
		s.state.Recalculating = false
		s.logger.Warn("route recalculation failed", slog.String("session", s.id), slog.Any("error", err))
		ev.failed(cb, fmt.Errorf("route recalculation: %w", err))
		return ev
	}

	adopted := plan.Adopt()
	if verr := adopted.Validate(); verr != nil {
		s.logger.Warn("recalculated route is malformed", slog.Any("error", verr))
	}
	s.plan = adopted
	s.seq.Reset(adopted)
	s.tracker.Reset()
	s.detector.Succeeded()
	s.state.Recalculations++
	s.resetStateLocked()

	s.logger.Info("route recalculated",
		slog.String("session", s.id),
		slog.Int("steps", len(adopted.Steps)),
		slog.Float64("distance", adopted.Distance))
	ev.recalculated(cb, adopted)
	return ev
}

// Status returns the lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SessionID is empty unless navigating.
func (s *Session) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// NavigationState returns a snapshot copy.
func (s *Session) NavigationState() NavigationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentStep returns the active step.
func (s *Session) CurrentStep() (route.Step, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CurrentStep, s.state.HasStep
}

// FormattedDistanceToNextTurn formats the distance left on the current step.
func (s *Session) FormattedDistanceToNextTurn() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.formattedDistanceLocked()
}

func (s *Session) formattedDistanceLocked() string {
	if s.status == StatusIdle || !s.state.HasStep {
		return ""
	}
	return utils.FormatDistance(s.state.DistanceToNextManeuver)
}

// FormattedETA is the wall-clock arrival time, empty unless navigating.
func (s *Session) FormattedETA() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusActive {
		return ""
	}
	return utils.FormatETA(utils.ETA(s.now(), s.state.RemainingDuration))
}

// FormattedTimeToNextTurn formats the time left on the current step.
func (s *Session) FormattedTimeToNextTurn() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusIdle || !s.state.HasStep {
		return ""
	}
	return utils.FormatDuration(s.state.TimeToNextManeuver)
}

// TurnInstruction combines the upcoming maneuver with the distance to it,
// e.g. "In 250 m, turn left onto Main St".
func (s *Session) TurnInstruction() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	if s.status == StatusIdle || !st.HasStep {
		return ""
	}
	if st.Arrived || !st.HasNextStep {
		return st.CurrentStep.Instruction
	}
	return route.WithDistance(st.NextStep.Instruction, s.formattedDistanceLocked())
}

// RouteBounds is the padded bounding box of the route; false when there is
// no route.
func (s *Session) RouteBounds() (orb.Bound, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.plan == nil || len(s.plan.Geometry) == 0 {
		return orb.Bound{}, false
	}
	return s.plan.Bounds(boundsPadding), true
}

// RouteGeoJSON exports the route with the tracked position, or nil when
// there is no route.
func (s *Session) RouteGeoJSON() *geojson.FeatureCollection {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.plan == nil {
		return nil
	}
	fc := s.plan.FeatureCollection()
	if s.state.HasProgress {
		f := geojson.NewFeature(s.state.Progress.Coordinate)
		f.Properties["kind"] = "position"
		f.Properties["distance_along_route"] = s.state.Progress.DistanceAlongRoute
		f.Properties["heading"] = s.state.Progress.Heading
		f.Properties["off_route"] = s.state.IsOffRoute
		fc.Append(f)
	}
	return fc
}

// Alternatives fetches route options for a preview.
func (s *Session) Alternatives(ctx context.Context, origin, destination orb.Point) ([]*route.Plan, error) {
	if s.provider == nil {
		return nil, ErrNoProvider
	}
	plans, err := s.provider.GetDirectionsWithAlternatives(ctx, origin, destination)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch alternatives: %w", err)
	}
	out := make([]*route.Plan, 0, len(plans))
	for _, p := range plans {
		if p != nil {
			out = append(out, p.Adopt())
		}
	}
	return out, nil
}
