package story

import "fmt"

// Choice is a single option offered to the player at the end of a scene.
type Choice struct {
	Text        string `json:"text"`
	Consequence string `json:"consequence"`
}

// GenerationResult is the parsed output of one generation call. It is
// transient: the merge step consumes it and it is never persisted verbatim.
// The service's "context" field is a delta to merge into the world state,
// not a replacement.
type GenerationResult struct {
	Scene        string         `json:"scene"`
	Mood         string         `json:"mood"`
	Choices      []Choice       `json:"choices"`
	ContextDelta map[string]any `json:"context"`
}

// Validate enforces content requirements on generator output.
// Shape and type errors are caught earlier, at JSON decode time.
func (r *GenerationResult) Validate() error {
	if r.Scene == "" {
		return fmt.Errorf("scene is empty")
	}
	if len(r.Choices) == 0 {
		return fmt.Errorf("no choices offered")
	}
	return nil
}

// CharacterSheet is the read-only character projection sent to the
// generation service. It carries no record IDs.
type CharacterSheet struct {
	Name       string `json:"name"`
	Background string `json:"background"`
	Traits     Traits `json:"traits"`
}

// GenerationInput is the request payload for one generation call.
// An empty Choice marks the initialization turn.
type GenerationInput struct {
	Character       CharacterSheet `json:"character"`
	CurrentScene    string         `json:"currentScene,omitempty"`
	Mood            string         `json:"mood,omitempty"`
	PreviousChoices []string       `json:"previousChoices,omitempty"`
	WorldState      map[string]any `json:"worldState,omitempty"`
	Choice          string         `json:"choice,omitempty"`
}
