package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/taleloom/tale-engine/internal/storage"
	"github.com/taleloom/tale-engine/pkg/story"
)

// CharacterHandler handles character creation.
type CharacterHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewCharacterHandler(storage storage.Storage, logger *slog.Logger) *CharacterHandler {
	return &CharacterHandler{
		storage: storage,
		logger:  logger,
	}
}

// CreateCharacterRequest defines the request body for creating a character.
type CreateCharacterRequest struct {
	Name       string       `json:"name"`
	Background string       `json:"background"`
	Traits     story.Traits `json:"traits"`
}

// ServeHTTP handles POST /v1/characters.
func (h *CharacterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for characters endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	var req CreateCharacterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	c := story.Character{
		Name:       req.Name,
		Background: req.Background,
		Traits:     req.Traits,
	}
	if err := c.Validate(); err != nil {
		h.logger.Warn("Invalid character", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid character: "+err.Error())
		return
	}

	if err := h.storage.CreateCharacter(r.Context(), &c); err != nil {
		h.logger.Error("Failed to save character", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to create character")
		return
	}

	h.logger.Debug("Character created", "id", c.ID.String(), "name", c.Name)
	writeJSON(w, h.logger, http.StatusCreated, c)
}
