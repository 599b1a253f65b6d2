package app

import "errors"

var (
	// ErrImageRequired indicates the request carried no image reference.
	// Rejected before any external service is contacted.
	ErrImageRequired = errors.New("image reference required")

	// ErrGenerationEmpty indicates the generation service returned no usable
	// text. Nothing is persisted: a reading without narrative text is
	// worthless to the caller.
	ErrGenerationEmpty = errors.New("generation returned no text")

	// ErrGenerationFailed indicates a transport or service-side generation
	// failure. Not retried automatically; generation is expensive and not
	// known to be idempotent.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrPersistFailed indicates the reading could not be durably recorded.
	// Fatal: without a row the user cannot retrieve the narrative again.
	ErrPersistFailed = errors.New("could not persist reading")
)
