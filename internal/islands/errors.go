package islands

import "errors"

var (
	// ErrInitFailed: the file could not be opened or the schema created.
	// The store should be treated as unusable.
	ErrInitFailed = errors.New("island store init failed")

	// ErrReadFailed means no data was recovered. It never means "no data exists".
	ErrReadFailed = errors.New("island store read failed")

	// ErrWriteFailed: the write did not persist; memory and disk now differ.
	ErrWriteFailed = errors.New("island store write failed")

	ErrIslandNotFound = errors.New("island not found")
	ErrUnknownSchema  = errors.New("unrecognised islands table schema")
	ErrInvalidIsland  = errors.New("invalid island")
)
