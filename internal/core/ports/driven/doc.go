// Package driven defines the interfaces that core calls OUT to
// infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal
// architecture. Core services depend on these interfaces, and
// infrastructure adapters implement them.
//
// # Required Interfaces
//
//   - StationSource: fetches the canonical station directory
//   - TimetableSource: fetches daily timetables, live delays and the
//     train catalog
//   - Clock: supplies "now" and the local calendar date
//
// # Optional Interfaces
//
//   - StationCacheStore: persists directory snapshots so the assistant
//     can start offline; without it every start refetches
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: any adapter package
package driven
