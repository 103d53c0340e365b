// Package config loads and aggregates the application configuration.
//
// Configuration is sourced from environment variables, optionally seeded from
// a .env file via godotenv. Each subsystem owns its Config struct next to its
// consumer (core/database, core/locker, feature/rates, feature/runs, ...);
// this package composes them and binds nested keys so SERVER_PORT maps to
// server.port, RUNS_WORKERS to runs.workers, and so on.
//
// Defaults are declared declaratively with `default` struct tags and bound
// through reflection, so adding a new knob never touches this package.
package config
