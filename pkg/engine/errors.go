package engine

import "errors"

// Sentinel errors for the turn engine. Callers classify failures with
// errors.Is; everything wraps one of these.
var (
	// ErrInvalidInput marks malformed caller input: a bad character or an
	// empty choice. Never worth retrying unchanged.
	ErrInvalidInput = errors.New("invalid input")

	// ErrGenerationUnavailable marks transport failures, timeouts and
	// non-success responses from the generation service. The same turn may
	// be retried with backoff; the story is left unmodified.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrInvalidGenerationOutput marks a response that arrived but failed
	// shape or content validation. Retrying the same instruction is
	// unlikely to help, so this is kept distinct from an outage.
	ErrInvalidGenerationOutput = errors.New("invalid generation output")
)
