package docstore

import "errors"

// Error taxonomy for store operations. Callers branch with errors.Is; every
// engine-level failure is propagated wrapped in one of these, never swallowed
// and never retried.
var (
	// ErrValidation indicates malformed or mismatched caller input. The
	// operation fails before anything reaches the engine.
	ErrValidation = errors.New("docstore: invalid input")

	// ErrStorageUnavailable indicates the persistence location could not be
	// opened or created. Fatal at construction.
	ErrStorageUnavailable = errors.New("docstore: storage unavailable")

	// ErrStorageWrite indicates the engine rejected an insert, update or
	// delete.
	ErrStorageWrite = errors.New("docstore: storage write failed")

	// ErrStorageRead indicates an engine query or lookup failed for reasons
	// other than absence.
	ErrStorageRead = errors.New("docstore: storage read failed")

	// ErrNotFound indicates an operation that requires an existing document
	// was given an unknown id. Get does not use it: absence there is a nil
	// result, not an error.
	ErrNotFound = errors.New("docstore: document not found")
)
