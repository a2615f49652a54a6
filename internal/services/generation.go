package services

import (
	"encoding/json"
	"fmt"

	"github.com/taleloom/tale-engine/pkg/engine"
	"github.com/taleloom/tale-engine/pkg/story"
)

// System prompts for the two turn kinds and for title generation. The
// JSON shape instruction is shared so every provider speaks the same
// contract.
const (
	resultShapeInstruction = `Respond with a single JSON object of the form ` +
		`{"scene": string, "mood": string, "choices": [{"text": string, "consequence": string}], "context": object}. ` +
		`The "context" object holds only the world-state facts that changed this turn.`

	initializeSystemPrompt = "Create an engaging opening scene for a new fantasy story based on the character details provided. " + resultShapeInstruction

	continueSystemPrompt = "You are a fantasy storyteller creating interactive narratives. Generate engaging story segments with meaningful choices. " + resultShapeInstruction

	titleSystemPrompt = `Invent a short, evocative title for the fantasy story described. Respond with a JSON object of the form {"title": string}.`
)

// generateRequest is the wire payload for one generation call. The
// initialization turn carries only the character; subsequent turns carry
// the full context projection plus the player's choice.
type generateRequest struct {
	Character *story.CharacterSheet  `json:"character,omitempty"`
	Context   *story.GenerationInput `json:"context,omitempty"`
	Choice    string                 `json:"choice,omitempty"`
}

// encodeGenerationPayload builds the user-message JSON for a turn.
func encodeGenerationPayload(input story.GenerationInput) ([]byte, string, error) {
	var req generateRequest
	var systemPrompt string

	if input.Choice == "" {
		req.Character = &input.Character
		systemPrompt = initializeSystemPrompt
	} else {
		projection := input
		projection.Choice = ""
		req.Context = &projection
		req.Choice = input.Choice
		systemPrompt = continueSystemPrompt
	}

	data, err := json.Marshal(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal generation request: %w", err)
	}
	return data, systemPrompt, nil
}

// decodeGenerationResult parses a provider's completion text into a
// GenerationResult. Shape and type violations are reported as
// ErrInvalidGenerationOutput; content checks happen later in the engine.
func decodeGenerationResult(raw string) (*story.GenerationResult, error) {
	var result story.GenerationResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("%w: %s", engine.ErrInvalidGenerationOutput, err.Error())
	}
	if result.ContextDelta == nil {
		result.ContextDelta = make(map[string]any)
	}
	return &result, nil
}

// titlePayload is the request body for title generation, mirroring the
// character sheet the opening scene was generated from.
type titlePayload struct {
	Character story.CharacterSheet `json:"character"`
}

type titleResponse struct {
	Title string `json:"title"`
}

func encodeTitlePayload(c story.Character) ([]byte, error) {
	data, err := json.Marshal(titlePayload{
		Character: story.CharacterSheet{
			Name:       c.Name,
			Background: c.Background,
			Traits:     c.Traits,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal title request: %w", err)
	}
	return data, nil
}

func decodeTitle(raw string) (string, error) {
	var resp titleResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return "", fmt.Errorf("%w: %s", engine.ErrInvalidGenerationOutput, err.Error())
	}
	return resp.Title, nil
}
