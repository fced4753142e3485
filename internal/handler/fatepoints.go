package handler

import (
	"net/http"

	"github.com/lunarforge/gachad/internal/domain"
	"github.com/lunarforge/gachad/internal/fatepoints"
	"github.com/lunarforge/gachad/internal/logger"
)

type FatePointsHandler struct {
	service   fatepoints.Service
	weeklyMax int
}

func NewFatePointsHandler(service fatepoints.Service, weeklyMax int) *FatePointsHandler {
	return &FatePointsHandler{
		service:   service,
		weeklyMax: weeklyMax,
	}
}

// FatePointsResponse is the ledger view with the configured cap and options.
type FatePointsResponse struct {
	Points          int                     `json:"points"`
	PointsThisWeek  int                     `json:"pointsThisWeek"`
	WeeklyMax       int                     `json:"weeklyMax"`
	ExchangeOptions []domain.ExchangeOption `json:"exchangeOptions"`
}

// HandleGetFatePoints returns the user's fate point balance
// @Summary Get fate points
// @Description Returns the balance, this week's earnings and the exchange catalog
// @Tags fate-points
// @Produce json
// @Success 200 {object} FatePointsResponse
// @Router /api/v1/gacha/fate-points [get]
func (h *FatePointsHandler) HandleGetFatePoints(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r, w)
	if !ok {
		return
	}

	fp, err := h.service.Get(r.Context(), userID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to get fate points", "error", err)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, FatePointsResponse{
		Points:          fp.Points,
		PointsThisWeek:  fp.PointsThisWeek,
		WeeklyMax:       h.weeklyMax,
		ExchangeOptions: h.service.Options(),
	})
}

type ExchangeRequest struct {
	OptionID string `json:"optionId" validate:"required,max=64"`
}

// HandleExchange redeems one exchange option
// @Summary Exchange fate points
// @Description Spends fate points on a configured grant
// @Tags fate-points
// @Accept json
// @Produce json
// @Param request body ExchangeRequest true "Exchange request"
// @Success 200 {object} domain.ExchangeResult
// @Router /api/v1/gacha/fate-points/exchange [post]
func (h *FatePointsHandler) HandleExchange(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r, w)
	if !ok {
		return
	}

	var req ExchangeRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Exchange"); err != nil {
		return
	}

	result, err := h.service.Exchange(r.Context(), userID, req.OptionID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to exchange", "error", err)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
