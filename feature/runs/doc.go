// Package runs coordinates reconciliation runs.
//
// A run is admitted over HTTP or by the scheduler, executed asynchronously
// on a bounded worker pool, and serialized per tenant with an expiring
// lease. Transient failures (ledger or rate gateway outages) are retried
// with jittered exponential backoff; everything else fails the run on the
// first attempt. Terminal runs publish a completion event and archive their
// report, both advisory.
package runs
