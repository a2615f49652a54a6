package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/taleloom/tale-engine/pkg/story"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// CreateCharacterRequest matches the API request structure
type CreateCharacterRequest struct {
	Name       string       `json:"name"`
	Background string       `json:"background"`
	Traits     story.Traits `json:"traits"`
}

// CreateStoryRequest matches the API request structure
type CreateStoryRequest struct {
	CharacterID uuid.UUID `json:"characterId"`
}

// ContinueStoryRequest matches the API request structure
type ContinueStoryRequest struct {
	Choice string `json:"choice"`
}

func createCharacter(client *http.Client, baseURL string, req CreateCharacterRequest) (*story.Character, error) {
	var c story.Character
	if err := postJSON(client, baseURL+"/v1/characters", req, &c); err != nil {
		return nil, fmt.Errorf("failed to create character: %w", err)
	}
	return &c, nil
}

func createStory(client *http.Client, baseURL string, characterID uuid.UUID) (*story.Story, error) {
	var st story.Story
	if err := postJSON(client, baseURL+"/v1/stories", CreateStoryRequest{CharacterID: characterID}, &st); err != nil {
		return nil, fmt.Errorf("failed to create story: %w", err)
	}
	return &st, nil
}

func continueStory(client *http.Client, baseURL string, storyID uuid.UUID, choice string) (*story.Story, error) {
	var st story.Story
	url := fmt.Sprintf("%s/v1/stories/%s/continue", baseURL, storyID)
	if err := postJSON(client, url, ContinueStoryRequest{Choice: choice}, &st); err != nil {
		return nil, fmt.Errorf("failed to continue story: %w", err)
	}
	return &st, nil
}

func getStory(client *http.Client, baseURL string, storyID uuid.UUID) (*story.Story, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/stories/%s", baseURL, storyID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body)
	}

	var st story.Story
	if err := json.Unmarshal(body, &st); err != nil {
		return nil, fmt.Errorf("failed to parse story response: %w", err)
	}
	return &st, nil
}

func postJSON(client *http.Client, url string, reqBody any, out any) error {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return apiError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func apiError(status int, body []byte) error {
	var errorResp ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
		return fmt.Errorf("API returned status %d: %s", status, string(body))
	}
	return fmt.Errorf("%s", errorResp.Error)
}
