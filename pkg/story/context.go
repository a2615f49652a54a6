package story

// DefaultMood is the mood of a story before the first scene is generated.
const DefaultMood = "neutral"

// DefaultWorldState returns the world state every new story starts from.
func DefaultWorldState() map[string]any {
	return map[string]any{
		"timeOfDay":     "dawn",
		"location":      "starting_village",
		"questProgress": 0,
	}
}

// StoryContext is the evolving state of one story session: the character,
// the scene currently on screen, the narrative mood, the ordered choice
// history and the accumulated world facts. It is a value type; Merge
// returns a new context and never touches the receiver's maps or slices.
type StoryContext struct {
	Character       Character      `json:"character"`
	CurrentScene    string         `json:"currentScene"`
	Mood            string         `json:"mood"`
	PreviousChoices []string       `json:"previousChoices"`
	WorldState      map[string]any `json:"worldState"`
}

// NewContext builds the turn-0 context for a character.
func NewContext(c Character) StoryContext {
	return StoryContext{
		Character:       c,
		CurrentScene:    "",
		Mood:            DefaultMood,
		PreviousChoices: make([]string, 0),
		WorldState:      DefaultWorldState(),
	}
}

// Project serializes the context into the shape the generation service
// expects. Persisted record IDs are deliberately absent.
func (sc StoryContext) Project() GenerationInput {
	return GenerationInput{
		Character: CharacterSheet{
			Name:       sc.Character.Name,
			Background: sc.Character.Background,
			Traits:     sc.Character.Traits,
		},
		CurrentScene:    sc.CurrentScene,
		Mood:            sc.Mood,
		PreviousChoices: append([]string(nil), sc.PreviousChoices...),
		WorldState:      copyWorldState(sc.WorldState),
	}
}

// Merge folds a generation result into the context and returns the next
// context. The scene and mood are replaced, the context delta is
// shallow-merged over the world state (delta keys win, unset keys
// persist), and a non-empty choice is appended to the choice history.
// Pure: neither the receiver nor the result is modified.
func (sc StoryContext) Merge(result *GenerationResult, choice string) StoryContext {
	next := StoryContext{
		Character:    sc.Character,
		CurrentScene: result.Scene,
		Mood:         result.Mood,
		WorldState:   copyWorldState(sc.WorldState),
	}

	for k, v := range result.ContextDelta {
		next.WorldState[k] = v
	}

	next.PreviousChoices = make([]string, 0, len(sc.PreviousChoices)+1)
	next.PreviousChoices = append(next.PreviousChoices, sc.PreviousChoices...)
	if choice != "" {
		next.PreviousChoices = append(next.PreviousChoices, choice)
	}

	return next
}

func copyWorldState(ws map[string]any) map[string]any {
	out := make(map[string]any, len(ws))
	for k, v := range ws {
		out[k] = v
	}
	return out
}
