package services

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/taleloom/tale-engine/pkg/engine"
	"github.com/taleloom/tale-engine/pkg/story"
)

const DefaultOpenAITemperature = 0.7

// OpenAIService implements engine.Generator against the OpenAI chat
// completions API, requesting JSON-mode output.
type OpenAIService struct {
	client    *openai.Client
	modelName string
	logger    *slog.Logger
}

var _ engine.Generator = (*OpenAIService)(nil)

// NewOpenAIService creates an OpenAI-backed generator.
func NewOpenAIService(apiKey string, modelName string, logger *slog.Logger) *OpenAIService {
	return &OpenAIService{
		client:    openai.NewClient(apiKey),
		modelName: modelName,
		logger:    logger,
	}
}

func (s *OpenAIService) Generate(ctx context.Context, input story.GenerationInput) (*story.GenerationResult, error) {
	payload, systemPrompt, err := encodeGenerationPayload(input)
	if err != nil {
		return nil, err
	}

	raw, err := s.chatCompletion(ctx, systemPrompt, string(payload))
	if err != nil {
		return nil, err
	}
	return decodeGenerationResult(raw)
}

func (s *OpenAIService) GenerateTitle(ctx context.Context, c story.Character) (string, error) {
	payload, err := encodeTitlePayload(c)
	if err != nil {
		return "", err
	}

	raw, err := s.chatCompletion(ctx, titleSystemPrompt, string(payload))
	if err != nil {
		return "", err
	}
	return decodeTitle(raw)
}

func (s *OpenAIService) chatCompletion(ctx context.Context, systemPrompt, userContent string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.modelName,
		Temperature: DefaultOpenAITemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userContent},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		s.logger.Error("OpenAI request failed", "error", err, "model", s.modelName)
		return "", fmt.Errorf("%w: %s", engine.ErrGenerationUnavailable, err.Error())
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: completion has no choices", engine.ErrInvalidGenerationOutput)
	}
	msg := resp.Choices[0].Message
	if msg.Refusal != "" {
		s.logger.Warn("OpenAI refused the request", "refusal", msg.Refusal)
		return "", fmt.Errorf("%w: model refused: %s", engine.ErrInvalidGenerationOutput, msg.Refusal)
	}
	if msg.Content == "" {
		return "", fmt.Errorf("%w: empty completion", engine.ErrInvalidGenerationOutput)
	}
	return msg.Content, nil
}
