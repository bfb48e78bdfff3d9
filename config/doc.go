// Package config handles engine configuration loading and validation.
//
// Configuration is loaded from navengine.yml (or config.yml), completed with
// defaults for omitted values and validated using struct tags. Every
// threshold and smoothing factor used by the tracking, maneuver and offroute
// packages lives here so tests can exercise boundary values precisely.
package config
