package story

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTitle is used when title generation fails or is unavailable.
const DefaultTitle = "New Adventure"

// HistoryEntry pairs the scene that was on screen with the choice the
// player made in response to it. History entries are append-only.
type HistoryEntry struct {
	Scene  string `json:"scene"`
	Choice string `json:"choice"`
}

// Snapshot is the persisted slice of a StoryContext: everything except
// the character, which lives in its own record.
type Snapshot struct {
	Mood            string         `json:"mood"`
	WorldState      map[string]any `json:"worldState"`
	PreviousChoices []string       `json:"previousChoices"`
}

// Story is the persisted aggregate for one session. It is created once at
// initialization and mutated exactly once per turn: history appended,
// current scene and context replaced, all together or not at all.
type Story struct {
	ID          uuid.UUID  `json:"id"`
	CharacterID uuid.UUID  `json:"characterId"`
	Character   *Character `json:"character,omitempty"` // embedded on reads, not stored in the story record

	Title        string         `json:"title"`
	CurrentScene string         `json:"currentScene"`
	Context      Snapshot       `json:"context"`
	Choices      []Choice       `json:"choices,omitempty"` // options offered with the current scene
	History      []HistoryEntry `json:"history"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ContextView rebuilds the runtime StoryContext from the persisted story
// and its character.
func (s *Story) ContextView() StoryContext {
	var c Character
	if s.Character != nil {
		c = *s.Character
	}
	return StoryContext{
		Character:       c,
		CurrentScene:    s.CurrentScene,
		Mood:            s.Context.Mood,
		PreviousChoices: append([]string(nil), s.Context.PreviousChoices...),
		WorldState:      copyWorldState(s.Context.WorldState),
	}
}

// Clone returns a deep copy of the story. The engine works on clones so
// a failed turn can never leave a partially applied story behind.
func (s *Story) Clone() *Story {
	next := *s

	next.Context.WorldState = copyWorldState(s.Context.WorldState)
	next.Context.PreviousChoices = append([]string(nil), s.Context.PreviousChoices...)
	next.Choices = append([]Choice(nil), s.Choices...)

	next.History = make([]HistoryEntry, len(s.History))
	copy(next.History, s.History)

	if s.Character != nil {
		c := *s.Character
		next.Character = &c
	}
	return &next
}

// ApplySnapshot replaces the story's scene and context from a merged
// StoryContext, keeping history untouched.
func (s *Story) ApplySnapshot(sc StoryContext) {
	s.CurrentScene = sc.CurrentScene
	s.Context = Snapshot{
		Mood:            sc.Mood,
		WorldState:      sc.WorldState,
		PreviousChoices: sc.PreviousChoices,
	}
}
