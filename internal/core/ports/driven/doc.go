// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - EntityStore: Entity persistence, lookup by id, uuid and properties
//   - SchemaProvider: Entity types, bundles and field definitions
//   - FileStore: Scheme-addressed file storage (public://, temporary://)
//   - Archiver: Zip archive creation and extraction
//   - CodecRegistry: Field codec and base-fields codec dispatch
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - AccessPolicy: Export access checks. Without it every entity is exportable.
//   - AssetFetcher: Remote file download. Without it missing assets stay missing.
//   - CurrentUser: The account imports run as. Without it imports are anonymous.
//   - URLGenerator: Canonical entity URLs for rich text links.
//   - FocalPoint: Image crop capability. Without it crops are not exported.
//   - Metrics: Export and import counters.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or codec package
package driven
