// Package types defines the shared data model of the coordination core:
// specialist roles, decisions, the store status snapshot consumed each round,
// and the business action emitted at the end of a round.
//
// The types package is the lowest-level package with no internal dependencies,
// so every other package (budget, conflict, debate, coordination) can import
// it without circular imports.
package types
