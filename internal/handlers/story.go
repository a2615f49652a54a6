package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/taleloom/tale-engine/internal/storage"
	"github.com/taleloom/tale-engine/pkg/engine"
	"github.com/taleloom/tale-engine/pkg/story"
)

// StoryHandler handles story lifecycle requests.
// Routes:
// POST /v1/stories                - initialize a story for a character
// GET  /v1/stories/{id}           - read a story with embedded character
// POST /v1/stories/{id}/continue  - advance the story by one turn
type StoryHandler struct {
	storage storage.Storage
	engine  *engine.Engine
	logger  *slog.Logger
}

func NewStoryHandler(storage storage.Storage, eng *engine.Engine, logger *slog.Logger) *StoryHandler {
	return &StoryHandler{
		storage: storage,
		engine:  eng,
		logger:  logger,
	}
}

// CreateStoryRequest defines the request body for creating a story.
type CreateStoryRequest struct {
	CharacterID uuid.UUID `json:"characterId"`
}

// ContinueStoryRequest defines the request body for advancing a story.
type ContinueStoryRequest struct {
	Choice string `json:"choice"`
}

func (h *StoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/stories"), "/")

	switch {
	case path == "":
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
			return
		}
		h.handleCreate(w, r)

	case strings.HasSuffix(path, "/continue"):
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
			return
		}
		id, ok := h.parseID(w, strings.TrimSuffix(path, "/continue"))
		if !ok {
			return
		}
		h.handleContinue(w, r, id)

	default:
		if r.Method != http.MethodGet {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
			return
		}
		id, ok := h.parseID(w, path)
		if !ok {
			return
		}
		h.handleRead(w, r, id)
	}
}

func (h *StoryHandler) parseID(w http.ResponseWriter, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.Trim(raw, "/"))
	if err != nil {
		h.logger.Warn("Invalid story ID", "id", raw, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid story ID format")
		return uuid.Nil, false
	}
	return id, true
}

func (h *StoryHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.CharacterID == uuid.Nil {
		writeError(w, h.logger, http.StatusBadRequest, "characterId is required")
		return
	}

	c, err := h.storage.GetCharacter(r.Context(), req.CharacterID)
	if err != nil {
		h.logger.Error("Failed to load character", "error", err, "id", req.CharacterID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load character")
		return
	}
	if c == nil {
		writeError(w, h.logger, http.StatusNotFound, "Character not found")
		return
	}

	st, err := h.engine.Initialize(r.Context(), *c)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	st.Title = h.engine.Title(r.Context(), *c)

	if err := h.storage.CreateStory(r.Context(), st); err != nil {
		h.logger.Error("Failed to save new story", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to create story")
		return
	}

	st.Character = c
	h.logger.Info("Story created", "id", st.ID.String(), "character", c.Name, "title", st.Title)
	writeJSON(w, h.logger, http.StatusCreated, st)
}

func (h *StoryHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	st, c, ok := h.loadStory(w, r.Context(), id)
	if !ok {
		return
	}
	st.Character = c
	writeJSON(w, h.logger, http.StatusOK, st)
}

func (h *StoryHandler) handleContinue(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req ContinueStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.Choice == "" {
		writeError(w, h.logger, http.StatusBadRequest, "choice cannot be empty")
		return
	}

	st, c, ok := h.loadStory(w, r.Context(), id)
	if !ok {
		return
	}

	next, err := h.advanceAndSave(r.Context(), st, c, req.Choice)
	if errors.Is(err, storage.ErrConflict) {
		// Another writer slipped in. Reload and recompute the turn once;
		// repeated conflicts go back to the caller.
		h.logger.Warn("Version conflict on save, recomputing turn", "id", id.String())
		st, c, ok = h.loadStory(w, r.Context(), id)
		if !ok {
			return
		}
		next, err = h.advanceAndSave(r.Context(), st, c, req.Choice)
	}
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	next.Character = c
	h.logger.Info("Story advanced", "id", id.String(), "turn", len(next.History))
	writeJSON(w, h.logger, http.StatusOK, next)
}

// advanceAndSave runs one turn and persists it. The caller's story is
// left untouched on any failure.
func (h *StoryHandler) advanceAndSave(ctx context.Context, st *story.Story, c *story.Character, choice string) (*story.Story, error) {
	st.Character = c
	next, err := h.engine.Advance(ctx, st, choice)
	if err != nil {
		return nil, err
	}
	if err := h.storage.SaveStory(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// loadStory fetches a story and its character, writing the error
// response itself when either is missing or unreadable.
func (h *StoryHandler) loadStory(w http.ResponseWriter, ctx context.Context, id uuid.UUID) (*story.Story, *story.Character, bool) {
	st, err := h.storage.GetStory(ctx, id)
	if err != nil {
		h.logger.Error("Failed to load story", "error", err, "id", id.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load story")
		return nil, nil, false
	}
	if st == nil {
		writeError(w, h.logger, http.StatusNotFound, "Story not found")
		return nil, nil, false
	}

	c, err := h.storage.GetCharacter(ctx, st.CharacterID)
	if err != nil {
		h.logger.Error("Failed to load character", "error", err, "id", st.CharacterID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load character")
		return nil, nil, false
	}
	if c == nil {
		h.logger.Error("Story references missing character", "story_id", id.String(), "character_id", st.CharacterID.String())
		writeError(w, h.logger, http.StatusNotFound, "Character not found")
		return nil, nil, false
	}
	return st, c, true
}

// writeEngineError maps the error taxonomy to status codes. A generation
// outage is reported as 502 so operators can tell it apart from
// model-output problems (500) and caller mistakes (400).
func (h *StoryHandler) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrInvalidInput):
		h.logger.Warn("Invalid turn input", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrGenerationUnavailable):
		h.logger.Error("Generation service unavailable", "error", err)
		writeError(w, h.logger, http.StatusBadGateway, "Generation service unavailable. Please try again.")
	case errors.Is(err, engine.ErrInvalidGenerationOutput):
		h.logger.Error("Invalid generation output", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Generation service returned invalid output.")
	case errors.Is(err, storage.ErrConflict):
		h.logger.Warn("Story version conflict", "error", err)
		writeError(w, h.logger, http.StatusConflict, "Story was modified concurrently. Please retry.")
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, h.logger, http.StatusNotFound, "Story not found")
	default:
		h.logger.Error("Turn failed", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to advance story")
	}
}
