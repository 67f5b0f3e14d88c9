// Package specialists provides the built-in heuristic specialists: one
// domain expert per role, each producing a decision from the store snapshot
// without any model calls. They are deterministic and safe to run offline;
// the debate oracle is the only model-backed component in the core.
package specialists
