// Package config loads, normalizes, and validates dupscore configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DUPSCORE_DATABASE and DUPSCORE_MODEL. The Config type centralizes every knob
// the service and CLI need: where the recording database and model artifact
// live, which record backend to use, how the HTTP API binds, and how logs are
// shaped.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
