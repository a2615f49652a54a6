package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taleloom/tale-engine/pkg/engine"
	"github.com/taleloom/tale-engine/pkg/story"
)

func sampleInput(choice string) story.GenerationInput {
	return story.GenerationInput{
		Character: story.CharacterSheet{
			Name:       "Arin",
			Background: "A quiet farmhand with a hidden destiny.",
			Traits:     story.Traits{Class: "warrior", Virtue: "honor", Flaw: "pride"},
		},
		CurrentScene:    "You stand at a crossroads.",
		Mood:            "neutral",
		PreviousChoices: []string{"Leave the farm"},
		WorldState:      map[string]any{"location": "crossroads"},
		Choice:          choice,
	}
}

func TestEncodeGenerationPayloadInitialize(t *testing.T) {
	data, systemPrompt, err := encodeGenerationPayload(sampleInput(""))
	require.NoError(t, err)

	assert.Equal(t, initializeSystemPrompt, systemPrompt)

	var req map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &req))

	assert.Contains(t, req, "character")
	assert.NotContains(t, req, "context", "initialization turn must not send prior context")
	assert.NotContains(t, req, "choice")

	var sheet story.CharacterSheet
	require.NoError(t, json.Unmarshal(req["character"], &sheet))
	assert.Equal(t, "Arin", sheet.Name)
	assert.Equal(t, "warrior", sheet.Traits.Class)
}

func TestEncodeGenerationPayloadContinue(t *testing.T) {
	data, systemPrompt, err := encodeGenerationPayload(sampleInput("Go left"))
	require.NoError(t, err)

	assert.Equal(t, continueSystemPrompt, systemPrompt)

	var req struct {
		Context *story.GenerationInput `json:"context"`
		Choice  string                 `json:"choice"`
	}
	require.NoError(t, json.Unmarshal(data, &req))

	require.NotNil(t, req.Context)
	assert.Equal(t, "Go left", req.Choice)
	assert.Empty(t, req.Context.Choice, "choice rides alongside the context, not inside it")
	assert.Equal(t, "You stand at a crossroads.", req.Context.CurrentScene)
	assert.Equal(t, []string{"Leave the farm"}, req.Context.PreviousChoices)
}

func TestDecodeGenerationResult(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		raw := `{"scene":"A door creaks open.","mood":"eerie",` +
			`"choices":[{"text":"Enter","consequence":"Darkness."}],` +
			`"context":{"doorOpen":true}}`

		result, err := decodeGenerationResult(raw)
		require.NoError(t, err)
		assert.Equal(t, "A door creaks open.", result.Scene)
		assert.Equal(t, "eerie", result.Mood)
		require.Len(t, result.Choices, 1)
		assert.Equal(t, true, result.ContextDelta["doorOpen"])
	})

	t.Run("missing context becomes empty map", func(t *testing.T) {
		raw := `{"scene":"A scene.","mood":"calm","choices":[{"text":"Go","consequence":""}]}`

		result, err := decodeGenerationResult(raw)
		require.NoError(t, err)
		assert.NotNil(t, result.ContextDelta)
		assert.Empty(t, result.ContextDelta)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := decodeGenerationResult("Once upon a time, before the fall")
		assert.True(t, errors.Is(err, engine.ErrInvalidGenerationOutput), "got %v", err)
	})

	t.Run("wrong types", func(t *testing.T) {
		_, err := decodeGenerationResult(`{"scene":42,"mood":"calm","choices":[]}`)
		assert.True(t, errors.Is(err, engine.ErrInvalidGenerationOutput), "got %v", err)
	})
}

func TestTitleRoundTrip(t *testing.T) {
	c := story.Character{
		Name:       "Arin",
		Background: "A quiet farmhand with a hidden destiny.",
		Traits:     story.Traits{Class: "warrior", Virtue: "honor", Flaw: "pride"},
	}

	data, err := encodeTitlePayload(c)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"Arin"`))
	assert.False(t, strings.Contains(string(data), `"id"`), "title payload must not carry record IDs")

	title, err := decodeTitle(`{"title":"The Ember Road"}`)
	require.NoError(t, err)
	assert.Equal(t, "The Ember Road", title)

	_, err = decodeTitle("not json")
	assert.True(t, errors.Is(err, engine.ErrInvalidGenerationOutput))
}

func TestMockGeneratorDefaults(t *testing.T) {
	m := NewMockGenerator()

	result, err := m.Generate(context.Background(), sampleInput("Go left"))
	require.NoError(t, err)
	require.NoError(t, result.Validate())
	assert.Equal(t, 1, m.CallCount())
	last, ok := m.LastInput()
	require.True(t, ok)
	assert.Equal(t, "Go left", last.Choice)

	m.SetGenerateError(errors.New("boom"))
	_, err = m.Generate(context.Background(), sampleInput(""))
	assert.Error(t, err)

	m.Reset()
	assert.Equal(t, 0, m.CallCount())
}
