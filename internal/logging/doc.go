// Package logging assembles the slog loggers used by draftkit.
//
// It owns the console and JSON handlers, routes output to stderr and the
// configured log file, and exposes context helpers so every line written
// while editing a project carries the project name and run id. A no-op logger
// is provided for tests and for wiring code that has no logger to hand.
package logging
