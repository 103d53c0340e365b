// Package locker provides exclusive, expiring leases keyed by string.
//
// The reconciliation coordinator keys leases by tenant id: at most one run
// may hold a tenant's lease at any instant, which serializes runs per tenant
// while leaving other tenants free to run concurrently. Leases carry a TTL so
// a crashed worker releases its tenant automatically once the lease expires.
//
// # Implementations
//
//   - RedisLocker: backed by bsm/redislock, providing mutual exclusion across
//     processes sharing a Redis instance.
//   - MemoryLocker: in-process fallback with the same TTL semantics, used for
//     single-instance deployments, the one-shot CLI, and tests.
package locker
