// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
package commands

import (
	"context"

	"giftflow/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// Handlers depend on the narrowest interface that covers the aggregates they
// touch.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to the order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// ShopRepoFactory provides access to the shop repository within a transaction.
	ShopRepoFactory interface {
		ShopRepository() ports.ShopRepository
	}

	// LockRepoFactory provides access to the inventory lock repository within a transaction.
	LockRepoFactory interface {
		InventoryLockRepository() ports.InventoryLockRepository
	}

	// EvidenceRepoFactory provides access to the evidence repository within a transaction.
	EvidenceRepoFactory interface {
		EvidenceRepository() ports.EvidenceRepository
	}

	// OutboxRepoFactory provides access to the outbox repository within a transaction.
	OutboxRepoFactory interface {
		OutboxRepository() ports.OutboxRepository
	}

	// OrderUoW manages transactions for order-only operations. Every status
	// change stages its notification through the outbox in the same
	// transaction, so the outbox travels with the order repository.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
		OutboxRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// TransitionUoW manages transactions for externally driven transitions,
	// which may touch delivery evidence alongside the order.
	TransitionUoW interface {
		TxManager
		OrderRepoFactory
		EvidenceRepoFactory
		OutboxRepoFactory
	}

	// TransitionUoWFactory creates new transition unit of work instances.
	TransitionUoWFactory interface {
		Create() TransitionUoW
	}

	// RerouteUoW manages transactions that coordinate orders, candidate
	// shops and inventory locks.
	RerouteUoW interface {
		TxManager
		OrderRepoFactory
		ShopRepoFactory
		LockRepoFactory
		OutboxRepoFactory
	}

	// RerouteUoWFactory creates new reroute unit of work instances.
	RerouteUoWFactory interface {
		Create() RerouteUoW
	}
)
