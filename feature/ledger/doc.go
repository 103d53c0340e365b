// Package ledger implements the append-only stock ledger.
//
// The ledger is the authoritative record of stock movements per tenant and
// item. The recorded quantity of an item is always a fold over its entries'
// deltas, never a mutable counter, so history can always be replayed.
// Reconciliation corrections enter the ledger as new `correction` facts
// tagged with the run that produced them.
//
// # Atomicity and idempotence
//
// AppendEntries writes each batch in a single transaction: the whole batch
// for a run is appended, or none of it. Batches are keyed by their source
// run id, so a retried run's duplicate batch is a no-op in net ledger effect.
//
// # Implementations
//
//   - GormStore: MySQL-backed, used in production.
//   - MemoryStore: in-memory, used by tests and the one-shot CLI.
//
// Read and write failures wrap ErrUnavailable, which the coordinator treats
// as transient and retries with backoff.
package ledger
