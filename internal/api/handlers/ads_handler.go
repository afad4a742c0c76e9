package handlers

import (
	"net/http"

	"github.com/hirehub/server/internal/api/types"
	"github.com/hirehub/server/internal/services"
)

type AdsHandler struct {
	ads services.AdService
}

func NewAdsHandler(ads services.AdService) *AdsHandler {
	return &AdsHandler{ads: ads}
}

// List godoc
// @Summary  Landing page ads
// @Tags     public
// @Produce  json
// @Success  200 {object} types.APIResponse
// @Router   /api/ads [get]
func (h *AdsHandler) List(w http.ResponseWriter, r *http.Request) {
	ads, err := h.ads.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Message: "ads loaded", Data: ads})
}
