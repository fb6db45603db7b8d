// Package services provides domain services that orchestrate business rules
// across multiple aggregates.
//
// The package includes:
//   - Rerouter: selects a replacement shop for a declined or unresponsive
//     assignment and plans multi-stop pickup routes
//   - CompletionInterlock: gates the terminal completed status behind
//     delivery evidence and a clean fiscal receipt
//
// Domain services hold logic that does not naturally belong to a single
// aggregate root.
package services
