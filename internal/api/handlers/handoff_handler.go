package handlers

import (
	"errors"
	"net/http"

	"github.com/hirehub/server/internal/api/types"
	"github.com/hirehub/server/internal/support"
)

type HandoffHandler struct {
	coord *support.Coordinator
}

func NewHandoffHandler(coord *support.Coordinator) *HandoffHandler {
	return &HandoffHandler{coord: coord}
}

// Pending lists rooms waiting for an agent, optionally filtered by ?roomId=.
func (h *HandoffHandler) Pending(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSubject(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{
		Success: true,
		Data:    h.coord.Rooms().Pending(r.URL.Query().Get("roomId")),
	})
}

// Request asks for a human agent, the same as the handoff channel frame.
func (h *HandoffHandler) Request(w http.ResponseWriter, r *http.Request) {
	sub, ok := requireSubject(w, r)
	if !ok {
		return
	}
	var req types.HandoffRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if !support.ValidRoomID(req.RoomID) {
		writeErrorStr(w, http.StatusBadRequest, "invalid", "invalid room id")
		return
	}
	uid := sub.UserID
	if v := req.UserID.Ptr(); v != nil {
		uid = *v
	}
	entry, err := h.coord.RequestHandoff(r.Context(), req.RoomID, &uid)
	if errors.Is(err, support.ErrIgnored) {
		writeErrorStr(w, http.StatusConflict, "conflict", "room is already live")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: map[string]any{
		"roomId":       req.RoomID,
		"state":        entry.State(),
		"userName":     entry.UserName,
		"userNickname": entry.UserNickname,
	}})
}

