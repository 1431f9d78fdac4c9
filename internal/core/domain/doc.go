// Package domain defines the core business entities of the workspace client.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ConnectorSchema: A declarative form definition per connector type
//   - FormState: The live values of one creation dialog
//   - CCPair: A configured connector-credential pair and its lifecycle status
//   - ActionSet: The lifecycle actions a CCPair currently permits
//   - Entitlement: Usage and limit counters consulted by the quota gate
//   - DriveEntry, UploadTask, IndexingEntry: Drive namespace state
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
