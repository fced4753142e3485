package handler

import (
	"net/http"

	"github.com/lunarforge/gachad/internal/gacha"
	"github.com/lunarforge/gachad/internal/logger"
)

type GachaHandler struct {
	service gacha.Service
}

func NewGachaHandler(service gacha.Service) *GachaHandler {
	return &GachaHandler{service: service}
}

type RollRequest struct {
	BannerID string `json:"bannerId" validate:"required,max=64"`
}

// HandleRoll executes one roll
// @Summary Execute a roll
// @Description Performs one paid roll on the banner, returning the full outcome
// @Tags gacha
// @Accept json
// @Produce json
// @Param request body RollRequest true "Roll request"
// @Success 200 {object} domain.RollResult
// @Router /api/v1/gacha/roll [post]
func (h *GachaHandler) HandleRoll(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r, w)
	if !ok {
		return
	}

	var req RollRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Roll"); err != nil {
		return
	}

	idempotencyKey := r.Header.Get(HeaderIdempotencyKey)

	result, err := h.service.Roll(r.Context(), userID, req.BannerID, idempotencyKey)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to roll", "error", err)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// HandleGetPity returns the pity read-model
// @Summary Get pity state
// @Description Returns counters, soft-pity flags, the featured guarantee and the authoritative threshold config
// @Tags gacha
// @Produce json
// @Param bannerId query string true "Banner id"
// @Success 200 {object} gacha.PityView
// @Router /api/v1/gacha/pity [get]
func (h *GachaHandler) HandleGetPity(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r, w)
	if !ok {
		return
	}
	bannerID, ok := GetQueryParam(r, w, "bannerId")
	if !ok {
		return
	}

	view, err := h.service.GetPity(r.Context(), userID, bannerID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to get pity", "error", err)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, view)
}
