package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/taleloom/tale-engine/pkg/engine"
	"github.com/taleloom/tale-engine/pkg/story"
)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion = "2023-06-01"

	DefaultAnthropicTemperature = 0.7
	DefaultAnthropicMaxTokens   = 2048
)

// AnthropicService implements engine.Generator against the Anthropic
// messages API.
type AnthropicService struct {
	apiKey     string
	modelName  string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ engine.Generator = (*AnthropicService)(nil)

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicChatRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicChatResponse struct {
	ID         string                  `json:"id"`
	Type       string                  `json:"type"`
	Role       string                  `json:"role"`
	Content    []anthropicContentBlock `json:"content"`
	Model      string                  `json:"model"`
	StopReason string                  `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewAnthropicService creates an Anthropic-backed generator.
func NewAnthropicService(apiKey string, modelName string, logger *slog.Logger) *AnthropicService {
	return &AnthropicService{
		apiKey:    apiKey,
		modelName: modelName,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

func (a *AnthropicService) Generate(ctx context.Context, input story.GenerationInput) (*story.GenerationResult, error) {
	payload, systemPrompt, err := encodeGenerationPayload(input)
	if err != nil {
		return nil, err
	}

	raw, err := a.chatCompletion(ctx, systemPrompt, string(payload))
	if err != nil {
		return nil, err
	}
	return decodeGenerationResult(raw)
}

func (a *AnthropicService) GenerateTitle(ctx context.Context, c story.Character) (string, error) {
	payload, err := encodeTitlePayload(c)
	if err != nil {
		return "", err
	}

	raw, err := a.chatCompletion(ctx, titleSystemPrompt, string(payload))
	if err != nil {
		return "", err
	}
	return decodeTitle(raw)
}

func (a *AnthropicService) chatCompletion(ctx context.Context, systemPrompt, userContent string) (string, error) {
	temperature := DefaultAnthropicTemperature
	chatReq := anthropicChatRequest{
		Model:       a.modelName,
		MaxTokens:   DefaultAnthropicMaxTokens,
		Temperature: &temperature,
		System:      systemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: userContent},
		},
	}

	reqBody, err := json.Marshal(chatReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicBaseURL+"/messages", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Error("Anthropic request failed", "error", err, "model", a.modelName)
		return "", fmt.Errorf("%w: %s", engine.ErrGenerationUnavailable, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response body: %s", engine.ErrGenerationUnavailable, err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		a.logger.Error("Anthropic returned non-success status", "status", resp.StatusCode, "body", string(body))
		return "", fmt.Errorf("%w: status %d", engine.ErrGenerationUnavailable, resp.StatusCode)
	}

	var chatResp anthropicChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("%w: %s", engine.ErrInvalidGenerationOutput, err.Error())
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("%w: %s: %s", engine.ErrGenerationUnavailable, chatResp.Error.Type, chatResp.Error.Message)
	}
	if len(chatResp.Content) == 0 || chatResp.Content[0].Text == "" {
		return "", fmt.Errorf("%w: empty completion", engine.ErrInvalidGenerationOutput)
	}
	return chatResp.Content[0].Text, nil
}
