package engine

import (
	"context"

	"github.com/taleloom/tale-engine/pkg/story"
)

// Generator is the capability interface for the external text-generation
// service. The engine depends only on this contract; the vendor protocol
// behind it is swappable and mockable.
type Generator interface {
	// Generate produces the next scene from a context projection. An
	// empty input.Choice marks the initialization turn. Implementations
	// report transport failures as ErrGenerationUnavailable and
	// malformed output as ErrInvalidGenerationOutput.
	Generate(ctx context.Context, input story.GenerationInput) (*story.GenerationResult, error)

	// GenerateTitle produces a short title for a new story. Failures are
	// non-fatal; callers fall back to a default title.
	GenerateTitle(ctx context.Context, c story.Character) (string, error)
}
