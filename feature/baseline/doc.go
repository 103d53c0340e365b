// Package baseline supplies the expected stock quantities runs reconcile
// against.
//
// Drift is detected against an independent expected source, not against the
// ledger itself. The Provider interface keeps that source pluggable: the
// GormProvider folds recorded physical counts (latest count per SKU wins),
// Static serves fixed maps for tests.
package baseline
