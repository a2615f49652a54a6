package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/taleloom/tale-engine/pkg/story"
)

// ErrConflict is returned by SaveStory when the stored story has moved
// past the version the caller loaded. The caller reloads and recomputes
// the turn; the stored story remains authoritative.
var ErrConflict = errors.New("story version conflict")

// ErrNotFound is returned by SaveStory when the story record is gone.
// Load operations return nil instead, matching the read path.
var ErrNotFound = errors.New("record not found")

// Storage is the narrow persistence boundary for characters and stories.
// It carries no business logic; it exists so the turn handlers have a
// mockable seam.
//
// SaveStory replaces currentScene, context, choices, history and
// updatedAt as one atomic unit, guarded by the story's version counter.
// No reader may observe history updated without the scene, or vice versa.
type Storage interface {
	Ping(ctx context.Context) error
	Close() error

	// CreateCharacter assigns an ID and persists the character.
	CreateCharacter(ctx context.Context, c *story.Character) error

	// GetCharacter returns nil when the character doesn't exist.
	GetCharacter(ctx context.Context, id uuid.UUID) (*story.Character, error)

	// CreateStory assigns identity and version 1, then persists.
	CreateStory(ctx context.Context, st *story.Story) error

	// GetStory returns nil when the story doesn't exist.
	GetStory(ctx context.Context, id uuid.UUID) (*story.Story, error)

	// SaveStory persists a turn. Returns ErrConflict when st.Version no
	// longer matches the stored record, ErrNotFound when it is missing.
	// On success the story's version and updatedAt are bumped in place.
	SaveStory(ctx context.Context, st *story.Story) error
}
