// Package config loads, normalizes, and validates imgcat configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// IMGCAT_ROOT and IMGCAT_DATABASE. The Config type centralizes every knob the
// scanner and CLI need so the scan root, catalog database, and logging
// destinations are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
