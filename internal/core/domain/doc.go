// Package domain defines the core business entities for contentsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Entity: A live content record held by the host entity store
//   - EntityType: A registered entity type with its bundles
//   - FieldDefinition: A configurable field attached to a bundle
//   - Document: The portable, serialisable form of an entity
//   - ConfigReference: A by-name pointer to a configuration entity
//   - BatchResult: The per-item outcome of a bulk operation
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
