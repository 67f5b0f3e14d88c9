// Package testutil holds shared test infrastructure.
//
// Subpackages:
//
//   - testutil/mocks: scripted implementations of the core interfaces,
//     MockSpecialist and MockOracle, built in a fluent WithX style with
//     error injection
//   - testutil/fixtures: prebuilt store snapshots (healthy, stocked out,
//     near insolvent) shared across package tests
//
// Production code must not import this package.
package testutil
