// Package directions defines the directions-provider contract the engine
// uses for route recalculation and previews, an OSRM HTTP client that
// implements it, and a caching decorator.
//
// Failures are always returned as errors; the engine treats any error as
// "no change" and keeps the active route.
package directions
