// Package geo provides the geodesy primitives the engine is built on:
// haversine distance, initial bearing and planar point-to-segment
// projection. Points are orb.Point values in (longitude, latitude) order.
package geo
