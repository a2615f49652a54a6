package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taleloom/tale-engine/internal/storage"
	"github.com/taleloom/tale-engine/pkg/story"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCharacterHandler(t *testing.T) {
	validBody := `{
		"name": "Arin",
		"background": "A quiet farmhand with a hidden destiny.",
		"traits": {"class": "warrior", "virtue": "honor", "flaw": "pride"}
	}`

	tests := []struct {
		name           string
		method         string
		body           string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "create character",
			method:         http.MethodPost,
			body:           validBody,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "method not allowed",
			method:         http.MethodGet,
			body:           "",
			expectedStatus: http.StatusMethodNotAllowed,
			expectedError:  "Method not allowed. Only POST is supported.",
		},
		{
			name:           "invalid json",
			method:         http.MethodPost,
			body:           `{"name": `,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid JSON in request body",
		},
		{
			name:           "name too short",
			method:         http.MethodPost,
			body:           `{"name":"A","background":"A quiet farmhand with a hidden destiny.","traits":{"class":"warrior","virtue":"honor","flaw":"pride"}}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "background too short",
			method:         http.MethodPost,
			body:           `{"name":"Arin","background":"short","traits":{"class":"warrior","virtue":"honor","flaw":"pride"}}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing traits",
			method:         http.MethodPost,
			body:           `{"name":"Arin","background":"A quiet farmhand with a hidden destiny."}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCharacterHandler(storage.NewMockStorage(), testLogger())

			req := httptest.NewRequest(tt.method, "/v1/characters", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusCreated {
				var c story.Character
				require.NoError(t, json.NewDecoder(w.Body).Decode(&c))
				assert.NotEqual(t, uuid.Nil, c.ID, "created character must have an ID")
				assert.Equal(t, "Arin", c.Name)
				assert.False(t, c.CreatedAt.IsZero())
				return
			}

			if tt.expectedError != "" {
				var resp ErrorResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, tt.expectedError, resp.Error)
			}
		})
	}
}
