// Package tenant holds the tenant model and its stores.
//
// Every other entity in the system is partitioned by tenant id. The tenant
// row carries the reconciliation knobs that vary per tenant: the home
// currency used for discrepancy valuation, an optional minor/major threshold
// override, and the auto-reconcile flag read by the scheduler.
package tenant
