// Package gtfsrt turns a GTFS-Realtime vehicle positions feed into a stream
// of position fixes.
//
// FeedSource polls the feed at the cadence of the requested profile, picks
// the entity of one configured vehicle and emits a fix each time the
// vehicle's timestamp moves forward. It implements fixstream.Source, so a
// navigation session can follow a transit vehicle the same way it follows
// a device.
package gtfsrt
