// Package order contains the Order aggregate and its lifecycle state machine.
//
// The Order aggregate is the only mutable entity in the orchestrator's core.
// Its status advances along a single canonical transition table (see
// status.go); every accepted mutation increments the aggregate version by
// exactly one, which the persistence layer uses as an optimistic lock.
//
// Side effects that reach outside the aggregate (refunds, voice calls,
// notifications) are not performed here. Transition methods record facts on
// the aggregate; application-layer handlers decide what happens after the
// new state is durably persisted.
package order
