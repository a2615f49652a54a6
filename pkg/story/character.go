package story

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	MinNameLength       = 2
	MaxNameLength       = 50
	MinBackgroundLength = 10
)

// Traits describes the fixed archetype facets of a character.
type Traits struct {
	Class  string `json:"class"`
	Virtue string `json:"virtue"`
	Flaw   string `json:"flaw"`
}

// Character is a player character. Characters are immutable after
// creation and belong to exactly one story lineage.
type Character struct {
	ID         uuid.UUID `json:"id,omitempty"`
	Name       string    `json:"name"`
	Background string    `json:"background"`
	Traits     Traits    `json:"traits"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
}

// Validate checks the character against creation constraints.
func (c *Character) Validate() error {
	if len(c.Name) < MinNameLength || len(c.Name) > MaxNameLength {
		return fmt.Errorf("name must be %d-%d characters, got %d", MinNameLength, MaxNameLength, len(c.Name))
	}
	if len(c.Background) < MinBackgroundLength {
		return fmt.Errorf("background must be at least %d characters, got %d", MinBackgroundLength, len(c.Background))
	}
	if c.Traits.Class == "" {
		return fmt.Errorf("traits.class is required")
	}
	if c.Traits.Virtue == "" {
		return fmt.Errorf("traits.virtue is required")
	}
	if c.Traits.Flaw == "" {
		return fmt.Errorf("traits.flaw is required")
	}
	return nil
}
