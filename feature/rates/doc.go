// Package rates supplies currency conversion rates for discrepancy valuation.
//
// The Gateway interface is the system's only contract with the rate
// provider; acquisition mechanics beyond it are out of scope. HTTPGateway
// talks to an HTTP provider, Static serves a fixed table for tests and
// offline runs.
//
// RunCache wraps a Gateway for the duration of a single reconciliation run:
// every SKU sharing a currency pair reuses one fetch, concurrent fetches are
// deduplicated with singleflight, and nothing survives the run, because rates
// must reflect run time.
package rates
