package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hirehub/server/internal/api/types"
	"github.com/hirehub/server/internal/auth"
	"github.com/hirehub/server/internal/services"
	"github.com/hirehub/server/internal/support"
)

// ChatHandler is the REST fallback of the live-chat channel.
type ChatHandler struct {
	coord *support.Coordinator
	chat  services.ChatService
}

func NewChatHandler(coord *support.Coordinator, chat services.ChatService) *ChatHandler {
	return &ChatHandler{coord: coord, chat: chat}
}

// Send godoc
// @Summary   Send a room message
// @Tags      chat
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body body types.ChatSendRequest true "message"
// @Success   200 {object} types.APIResponse
// @Router    /api/chat/send [post]
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSubject(w, r); !ok {
		return
	}
	var req types.ChatSendRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	room := req.Room()
	if !support.ValidRoomID(room) {
		writeErrorStr(w, http.StatusBadRequest, "invalid", "invalid room id")
		return
	}
	ev, err := h.coord.Send(r.Context(), room, auth.PrincipalFrom(r.Context()), support.Frame{
		Type:     req.Type,
		Role:     req.Role,
		Text:     req.Message(),
		UserID:   req.UserID,
		Nickname: req.Nickname,
		RoomID:   room,
	})
	if errors.Is(err, support.ErrIgnored) {
		writeErrorStr(w, http.StatusBadRequest, "invalid", "message type not supported")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: ev})
}

// History godoc
// @Summary      Recent messages of a room, oldest first
// @Description  Returns a bare JSON array, not the response envelope.
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Param        sessionId path  string true  "room id"
// @Param        limit     query int    false "max messages"
// @Success      200 {array} services.ChatMessage
// @Router    /api/chat/history/{sessionId} [get]
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSubject(w, r); !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	msgs, err := h.chat.History(r.Context(), chi.URLParam(r, "sessionId"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}
