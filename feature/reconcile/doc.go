// Package reconcile implements the balancing engine.
//
// The engine folds a tenant's stock ledger up to a point in time, compares
// the result against an expected baseline, grades each mismatch as minor or
// major, and values the drift in the tenant's home currency. It produces a
// report; it never persists anything itself.
package reconcile
