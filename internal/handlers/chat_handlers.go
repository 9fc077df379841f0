package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"chatrelay-backend/internal/config"
	"chatrelay-backend/internal/models"
	"chatrelay-backend/internal/responder"
	"chatrelay-backend/internal/services"
	"chatrelay-backend/internal/store"
	"chatrelay-backend/pkg/httputil"

	"github.com/go-chi/chi/v5"
)

// ChatHandlers handles HTTP requests for the chat relay.
type ChatHandlers struct {
	chatService *services.ChatService
	devMode     bool
}

// NewChatHandlers creates a new ChatHandlers instance.
func NewChatHandlers(chatService *services.ChatService, cfg *config.Config) *ChatHandlers {
	return &ChatHandlers{
		chatService: chatService,
		devMode:     cfg.DevMode(),
	}
}

// HandleSendMessage handles POST /api/chat/send.
func (h *ChatHandlers) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body", h.details(err))
		return
	}

	resp, err := h.chatService.SendMessage(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

// HandleGetHistory handles GET /api/chat/history/{sessionID}.
func (h *ChatHandlers) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.chatService.GetHistory(r.Context(), sessionID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.ChatHistoryResponse{
		Success:  true,
		Messages: messages,
	})
}

// respondServiceError maps a service failure onto the right HTTP response:
// itemized 400 for validation, 502 for responder failures, and the
// store-sentinel statuses for genuine persistence errors.
func (h *ChatHandlers) respondServiceError(w http.ResponseWriter, err error) {
	var verrs models.ValidationErrors
	if errors.As(err, &verrs) {
		httputil.RespondJSON(w, http.StatusBadRequest, models.ValidationErrorResponse{
			Success: false,
			Errors:  verrs,
		})
		return
	}

	var respErr *responder.Error
	if errors.As(err, &respErr) {
		httputil.RespondError(w, http.StatusBadGateway, respErr.Error(), h.details(err))
		return
	}

	status, message := storeErrorStatus(err)
	httputil.RespondError(w, status, message, h.details(err))
}

// storeErrorStatus maps store sentinels onto an HTTP status and a stable
// client-facing message that leaks no internal state.
func storeErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict, "Duplicate entry"
	case errors.Is(err, store.ErrForeignKey):
		return http.StatusBadRequest, "Foreign key constraint violation"
	case errors.Is(err, store.ErrConnection):
		return http.StatusServiceUnavailable, "Database connection refused. Please check your database configuration."
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// details exposes the underlying error only in development mode.
func (h *ChatHandlers) details(err error) string {
	if !h.devMode || err == nil {
		return ""
	}
	return err.Error()
}
