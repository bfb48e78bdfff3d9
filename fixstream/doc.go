// Package fixstream defines the position-fix model and the subscription
// contract the engine consumes fixes through.
//
// A Source yields PositionFix values under one of two cadence profiles:
// Idle (coarse, infrequent) and Navigation (fine, about one fix per second).
// Unsubscribe is idempotent and never waits for a handler in progress, so a
// delivery racing with it may still arrive; consumers drop fixes from
// subscriptions they already released.
//
// Trace, Recorder and Replay capture a fix sequence to a compressed file and
// play it back as a Source.
package fixstream
