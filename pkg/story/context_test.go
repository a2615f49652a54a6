package story

import (
	"reflect"
	"testing"
)

func TestNewContextDefaults(t *testing.T) {
	sc := NewContext(validCharacter())

	if sc.CurrentScene != "" {
		t.Errorf("expected empty scene, got %q", sc.CurrentScene)
	}
	if sc.Mood != DefaultMood {
		t.Errorf("expected mood %q, got %q", DefaultMood, sc.Mood)
	}
	if len(sc.PreviousChoices) != 0 {
		t.Errorf("expected no previous choices, got %d", len(sc.PreviousChoices))
	}

	want := map[string]any{
		"timeOfDay":     "dawn",
		"location":      "starting_village",
		"questProgress": 0,
	}
	if !reflect.DeepEqual(sc.WorldState, want) {
		t.Errorf("unexpected default world state: %v", sc.WorldState)
	}
}

func TestProjectOmitsRecordIDs(t *testing.T) {
	c := validCharacter()
	sc := NewContext(c)

	input := sc.Project()

	if input.Character.Name != c.Name {
		t.Errorf("expected name %q, got %q", c.Name, input.Character.Name)
	}
	if input.Character.Background != c.Background {
		t.Errorf("expected background carried over")
	}
	if input.Character.Traits != c.Traits {
		t.Errorf("expected traits carried over")
	}
	// CharacterSheet has no ID field by construction; make sure the
	// projection is detached from the context's internals.
	input.WorldState["location"] = "tampered"
	if sc.WorldState["location"] == "tampered" {
		t.Error("projection shares world state map with context")
	}
}

func TestMergeReplacesSceneAndMood(t *testing.T) {
	sc := NewContext(validCharacter())
	result := &GenerationResult{
		Scene:   "You wake to the smell of smoke.",
		Mood:    "tense",
		Choices: []Choice{{Text: "Run outside", Consequence: "You see the fire."}},
	}

	next := sc.Merge(result, "")

	if next.CurrentScene != result.Scene {
		t.Errorf("expected scene %q, got %q", result.Scene, next.CurrentScene)
	}
	if next.Mood != "tense" {
		t.Errorf("expected mood tense, got %q", next.Mood)
	}
	if len(next.PreviousChoices) != 0 {
		t.Error("initialization merge must not append a choice")
	}
}

func TestMergeMonotonicWorldState(t *testing.T) {
	sc := NewContext(validCharacter())
	sc.WorldState = map[string]any{
		"timeOfDay": "dawn",
		"location":  "starting_village",
		"hasSword":  false,
	}

	result := &GenerationResult{
		Scene:   "The blacksmith hands you a blade.",
		Mood:    "hopeful",
		Choices: []Choice{{Text: "Thank him", Consequence: "He nods."}},
		ContextDelta: map[string]any{
			"hasSword":  true,
			"blacksmith": "friendly",
		},
	}

	next := sc.Merge(result, "Visit the blacksmith")

	// Delta keys win.
	if next.WorldState["hasSword"] != true {
		t.Error("delta key should override existing value")
	}
	// New keys are added.
	if next.WorldState["blacksmith"] != "friendly" {
		t.Error("delta key absent from world state should be added")
	}
	// Unset keys persist.
	if next.WorldState["timeOfDay"] != "dawn" {
		t.Error("keys not in delta must be preserved")
	}
	if next.WorldState["location"] != "starting_village" {
		t.Error("keys not in delta must be preserved")
	}

	if got := next.PreviousChoices; len(got) != 1 || got[0] != "Visit the blacksmith" {
		t.Errorf("expected choice appended, got %v", got)
	}
}

func TestMergeIsPure(t *testing.T) {
	sc := NewContext(validCharacter())
	sc.PreviousChoices = []string{"Go left"}

	result := &GenerationResult{
		Scene:        "A cave mouth yawns ahead.",
		Mood:         "ominous",
		Choices:      []Choice{{Text: "Enter", Consequence: "Darkness swallows you."}},
		ContextDelta: map[string]any{"location": "cave"},
	}

	before := map[string]any{}
	for k, v := range sc.WorldState {
		before[k] = v
	}

	first := sc.Merge(result, "Enter the cave")
	second := sc.Merge(result, "Enter the cave")

	if !reflect.DeepEqual(sc.WorldState, before) {
		t.Error("merge mutated the source world state")
	}
	if len(sc.PreviousChoices) != 1 {
		t.Error("merge mutated the source choice history")
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("merge is not deterministic for identical inputs")
	}
}

func TestGenerationResultValidate(t *testing.T) {
	tests := []struct {
		name    string
		result  GenerationResult
		wantErr bool
	}{
		{
			name: "valid",
			result: GenerationResult{
				Scene:   "A scene.",
				Mood:    "calm",
				Choices: []Choice{{Text: "Go", Consequence: "Gone."}},
			},
		},
		{
			name: "empty scene",
			result: GenerationResult{
				Choices: []Choice{{Text: "Go", Consequence: "Gone."}},
			},
			wantErr: true,
		},
		{
			name: "no choices",
			result: GenerationResult{
				Scene: "A scene.",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.result.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestStoryCloneIsDeep(t *testing.T) {
	c := validCharacter()
	st := &Story{
		CurrentScene: "You stand at a crossroads.",
		Character:    &c,
		Context: Snapshot{
			Mood:            "neutral",
			WorldState:      map[string]any{"location": "crossroads"},
			PreviousChoices: []string{"Leave the village"},
		},
		Choices: []Choice{{Text: "Go left", Consequence: "The forest."}},
		History: []HistoryEntry{{Scene: "The village gate.", Choice: "Leave the village"}},
	}

	clone := st.Clone()
	clone.Context.WorldState["location"] = "forest"
	clone.Context.PreviousChoices = append(clone.Context.PreviousChoices, "Go left")
	clone.History = append(clone.History, HistoryEntry{Scene: "x", Choice: "y"})
	clone.Character.Name = "Someone Else"

	if st.Context.WorldState["location"] != "crossroads" {
		t.Error("clone shares world state map")
	}
	if len(st.Context.PreviousChoices) != 1 {
		t.Error("clone shares choice slice")
	}
	if len(st.History) != 1 {
		t.Error("clone shares history slice")
	}
	if st.Character.Name != "Arin" {
		t.Error("clone shares character pointer")
	}
}
