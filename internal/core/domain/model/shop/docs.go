// Package shop contains the partner shop aggregate and the inventory lock
// entity used by the re-routing engine.
//
// A Shop carries the selection attributes for re-routing: fixed location,
// served category, onboarding and payout vetting flags, and a rolling
// performance score. An InventoryLock is a short-lived reservation of a
// product at a shop that keeps concurrent re-routes from double-promising
// the same stock.
package shop
