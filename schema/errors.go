package schema

import "errors"

// Sentinel errors shared across packages. Match them with errors.Is.
var (
	// ErrUnknownCategory means a categorical value is outside the fitted encoder's vocabulary.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrArtifactLoad means a fitted artifact or the catalog could not be loaded.
	ErrArtifactLoad = errors.New("artifact load failure")

	// ErrScorerUnavailable means blend ranking was requested without a loaded scorer.
	ErrScorerUnavailable = errors.New("scorer unavailable")

	// ErrInvalidPreference means a preference field is missing or out of bounds.
	ErrInvalidPreference = errors.New("invalid preference")
)
