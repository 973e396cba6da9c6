// Package config loads, normalizes, and validates draftkit configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the DRAFTKIT_PROJECTS_DIR
// environment fallback. The Config type centralizes every knob the CLI needs:
// where projects and backups live, which files form a project pair, and the
// timing values used by the edit operations.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
