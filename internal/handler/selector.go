package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/lunarforge/gachad/internal/domain"
	"github.com/lunarforge/gachad/internal/logger"
	"github.com/lunarforge/gachad/internal/selector"
)

type SelectorHandler struct {
	service selector.Service
}

func NewSelectorHandler(service selector.Service) *SelectorHandler {
	return &SelectorHandler{service: service}
}

// SelectorsResponse lists a user's unredeemed tickets.
type SelectorsResponse struct {
	Available int               `json:"available"`
	Selectors []domain.Selector `json:"selectors"`
}

// HandleListSelectors returns the user's selector tickets
// @Summary List selectors
// @Description Returns the unredeemed selector tickets
// @Tags selectors
// @Produce json
// @Success 200 {object} SelectorsResponse
// @Router /api/v1/gacha/selectors [get]
func (h *SelectorHandler) HandleListSelectors(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r, w)
	if !ok {
		return
	}

	selectors, err := h.service.List(r.Context(), userID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to list selectors", "error", err)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, SelectorsResponse{
		Available: len(selectors),
		Selectors: selectors,
	})
}

// HandleListEligible returns redeemable characters for a rarity
// @Summary List eligible characters
// @Description Returns roster entries a selector of the rarity can redeem into
// @Tags selectors
// @Produce json
// @Param rarity query string true "Selector rarity"
// @Success 200 {array} domain.EligibleCharacter
// @Router /api/v1/gacha/selectors/eligible [get]
func (h *SelectorHandler) HandleListEligible(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r, w)
	if !ok {
		return
	}
	rarity, ok := GetQueryParam(r, w, "rarity")
	if !ok {
		return
	}

	eligible, err := h.service.ListEligible(r.Context(), userID, domain.Rarity(rarity))
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to list eligible characters", "error", err)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, eligible)
}

type RedeemRequest struct {
	SelectorID  string `json:"selectorId" validate:"required"`
	CharacterID string `json:"characterId" validate:"required,max=64"`
}

// HandleRedeem redeems a selector for a character
// @Summary Redeem a selector
// @Description Consumes the ticket and grants the chosen character
// @Tags selectors
// @Accept json
// @Produce json
// @Param request body RedeemRequest true "Redeem request"
// @Success 200 {object} domain.RedemptionResult
// @Router /api/v1/gacha/selectors/redeem [post]
func (h *SelectorHandler) HandleRedeem(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r, w)
	if !ok {
		return
	}

	var req RedeemRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Redeem selector"); err != nil {
		return
	}

	selectorID, err := uuid.Parse(req.SelectorID)
	if err != nil {
		http.Error(w, ErrMsgInvalidSelectorID, http.StatusBadRequest)
		return
	}

	result, err := h.service.Redeem(r.Context(), userID, selectorID, req.CharacterID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to redeem selector", "error", err)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
