// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production) and integrates with the Fiber web framework.
//
// # Context Awareness
//
// The logger is designed to be context-aware in two dimensions. WithRayID
// extracts the RayID from a Fiber context and attaches it to the log entry so
// all logs related to a specific request can be correlated. WithRun attaches
// the reconciliation run and tenant identifiers so the lifecycle of a run can
// be followed across coordinator, engine, and emitter.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Server started")
//
//	// In a run worker:
//	l := logger.WithRun(log, run.RunID, run.TenantID)
//	l.Error("Run failed", zap.Error(err))
package logger
