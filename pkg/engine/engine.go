// Package engine implements the narrative session state machine: how a
// story's context evolves turn by turn, how generator output is validated
// and merged, and how history is appended. One turn is one generation
// call; it either fully completes or fully fails.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taleloom/tale-engine/pkg/story"
	"github.com/taleloom/tale-engine/pkg/textfilter"
)

// DefaultGenerationTimeout bounds a single generation call.
const DefaultGenerationTimeout = 60 * time.Second

// Engine owns the transition logic for story sessions. It holds no story
// state itself; callers load a story, run a turn, and persist the result.
// Single-writer-per-story is assumed and must be enforced by the caller.
type Engine struct {
	generator Generator
	logger    *slog.Logger
	timeout   time.Duration
	filter    *textfilter.ContentFilter
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout bounds each generation call. Zero keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithContentFilter applies a word filter to sanitized generator output.
func WithContentFilter(f *textfilter.ContentFilter) Option {
	return func(e *Engine) {
		e.filter = f
	}
}

// New creates a turn engine around a generation service.
func New(generator Generator, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		generator: generator,
		logger:    logger,
		timeout:   DefaultGenerationTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Initialize runs the turn-0 generation for a character and returns the
// new story with empty history. Identity assignment is the repository's
// job; the returned story has a zero ID.
func (e *Engine) Initialize(ctx context.Context, c story.Character) (*story.Story, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	sc := story.NewContext(c)
	result, err := e.generate(ctx, sc.Project())
	if err != nil {
		return nil, err
	}

	merged := sc.Merge(result, "")

	st := &story.Story{
		CharacterID: c.ID,
		Title:       story.DefaultTitle,
		Choices:     result.Choices,
		History:     make([]story.HistoryEntry, 0),
	}
	st.ApplySnapshot(merged)

	e.logger.Debug("Story initialized",
		"character", c.Name,
		"mood", merged.Mood,
		"choices", len(result.Choices))
	return st, nil
}

// Advance runs one turn: the current scene is snapshotted into history
// together with the player's choice, the generator produces the next
// scene, and the merged result replaces scene, context and choices in a
// new Story value. The story passed in is never modified, so on any
// failure the caller's story is observably unchanged.
//
// Any non-empty free-text choice is accepted; choices are deliberately
// not checked against the options last offered.
func (e *Engine) Advance(ctx context.Context, st *story.Story, choice string) (*story.Story, error) {
	if choice == "" {
		return nil, fmt.Errorf("%w: choice cannot be empty", ErrInvalidInput)
	}
	if st.Character == nil {
		return nil, fmt.Errorf("%w: story has no character attached", ErrInvalidInput)
	}

	sc := st.ContextView()
	input := sc.Project()
	input.Choice = choice

	result, err := e.generate(ctx, input)
	if err != nil {
		return nil, err
	}

	next := st.Clone()
	next.History = append(next.History, story.HistoryEntry{
		Scene:  st.CurrentScene,
		Choice: choice,
	})
	next.Choices = result.Choices
	next.ApplySnapshot(sc.Merge(result, choice))

	e.logger.Debug("Story advanced",
		"story_id", st.ID.String(),
		"turn", len(next.History),
		"mood", next.Context.Mood)
	return next, nil
}

// generate calls the generation service with a bounded timeout, then
// validates and sanitizes the output. Validation order: shape (at decode,
// inside the generator), non-empty scene, at least one choice.
func (e *Engine) generate(ctx context.Context, input story.GenerationInput) (*story.GenerationResult, error) {
	genCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	result, err := e.generator.Generate(genCtx, input)
	if err != nil {
		if errors.Is(err, ErrGenerationUnavailable) || errors.Is(err, ErrInvalidGenerationOutput) {
			return nil, err
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: generation timed out: %s", ErrGenerationUnavailable, err.Error())
		}
		return nil, fmt.Errorf("%w: %s", ErrGenerationUnavailable, err.Error())
	}

	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidGenerationOutput, err.Error())
	}

	textfilter.SanitizeResult(result)
	if e.filter != nil {
		result.Scene = e.filter.Filter(result.Scene)
		for i := range result.Choices {
			result.Choices[i].Text = e.filter.Filter(result.Choices[i].Text)
			result.Choices[i].Consequence = e.filter.Filter(result.Choices[i].Consequence)
		}
	}
	return result, nil
}

// Title asks the generator for a story title, falling back to the
// default when generation fails. Title generation is best-effort and
// never fails a turn.
func (e *Engine) Title(ctx context.Context, c story.Character) string {
	genCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	title, err := e.generator.GenerateTitle(genCtx, c)
	if err != nil || title == "" {
		if err != nil {
			e.logger.Warn("Title generation failed, using default", "error", err)
		}
		return story.DefaultTitle
	}
	return textfilter.StripTags(title)
}
