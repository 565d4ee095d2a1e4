// Package config loads, normalizes, and validates bookbinder configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the CLI and merge engine need: output locations, merge policy thresholds,
// and the ffmpeg handoff parameters.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and validated policy values.
package config
