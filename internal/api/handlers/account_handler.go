package handlers

import (
	"net/http"

	"github.com/hirehub/server/internal/api/types"
	"github.com/hirehub/server/internal/services"
)

// AccountHandler serves onboarding and withdrawal for the signed-in user.
type AccountHandler struct {
	auth services.AuthService
}

func NewAccountHandler(svc services.AuthService) *AccountHandler {
	return &AccountHandler{auth: svc}
}

// SaveOnboarding godoc
// @Summary   Save onboarding profile
// @Tags      account
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body body types.OnboardingRequest true "profile"
// @Success   200 {object} types.TokenResponse
// @Failure   409 {object} types.APIResponse
// @Router    /api/onboarding/save [post]
func (h *AccountHandler) SaveOnboarding(w http.ResponseWriter, r *http.Request) {
	sub, ok := requireSubject(w, r)
	if !ok {
		return
	}
	var req types.OnboardingRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.auth.Onboard(r.Context(), sub.Email, services.OnboardingInput{
		DisplayName: req.DisplayName,
		Nickname:    req.Nickname,
		Phone:       req.Phone,
		Dob:         req.Dob,
		Gender:      req.Gender,
		Education:   req.Education,
		CareerLevel: req.CareerLevel,
		Position:    req.Position,
		Address:     req.Address,
		Region:      req.Region,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	token, err := h.auth.IssueToken(u)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.TokenResponse{
		TokenType:          "Bearer",
		AccessToken:        token,
		Role:               string(u.Role),
		Message:            "onboarding saved",
		RequiresOnboarding: u.NeedsOnboarding(),
	})
}

// Withdraw godoc
// @Summary   Withdraw the signed-in account
// @Tags      account
// @Produce   json
// @Security  BearerAuth
// @Success   200 {object} types.APIResponse
// @Failure   400 {object} types.APIResponse
// @Router    /api/mypage/withdraw [delete]
func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	sub, ok := requireSubject(w, r)
	if !ok {
		return
	}
	done, err := h.auth.WithdrawByEmail(r.Context(), sub.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !done {
		writeErrorStr(w, http.StatusBadRequest, "invalid", "account already withdrawn")
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Message: "account withdrawn"})
}
