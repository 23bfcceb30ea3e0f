package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown entity type or field type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrAccessDenied indicates the entity may not be exported or imported
	// under the current access policy.
	ErrAccessDenied = errors.New("access denied")

	// Sync Errors.

	// ErrValidation indicates a document failed structural validation.
	// Nothing is mutated when a document is rejected.
	ErrValidation = errors.New("validation failed")

	// ErrReferenceResolution indicates a referenced entity could not be
	// loaded or created. The reference is left unset.
	ErrReferenceResolution = errors.New("reference resolution failed")

	// ErrIO indicates a file, archive or asset operation failed.
	ErrIO = errors.New("io failure")

	// ErrConfiguration indicates the codec registry or settings are
	// inconsistent. Configuration errors are fatal at startup.
	ErrConfiguration = errors.New("configuration error")
)
