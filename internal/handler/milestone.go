package handler

import (
	"net/http"

	"github.com/lunarforge/gachad/internal/logger"
	"github.com/lunarforge/gachad/internal/milestone"
)

type MilestoneHandler struct {
	service milestone.Service
}

func NewMilestoneHandler(service milestone.Service) *MilestoneHandler {
	return &MilestoneHandler{service: service}
}

// HandleGetMilestones returns lifetime pull progress
// @Summary Get milestone progress
// @Description Returns the lifetime pull count and per-threshold claim state
// @Tags milestones
// @Produce json
// @Success 200 {object} domain.MilestoneProgress
// @Router /api/v1/gacha/milestones [get]
func (h *MilestoneHandler) HandleGetMilestones(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r, w)
	if !ok {
		return
	}

	progress, err := h.service.GetProgress(r.Context(), userID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to get milestones", "error", err)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, progress)
}

type ClaimRequest struct {
	Threshold int `json:"threshold" validate:"required,gt=0"`
}

// HandleClaim claims a reached milestone
// @Summary Claim a milestone
// @Description Claims the one-time reward for a reached threshold
// @Tags milestones
// @Accept json
// @Produce json
// @Param request body ClaimRequest true "Claim request"
// @Success 200 {object} domain.MilestoneReward
// @Router /api/v1/gacha/milestones/claim [post]
func (h *MilestoneHandler) HandleClaim(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r, w)
	if !ok {
		return
	}

	var req ClaimRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Claim milestone"); err != nil {
		return
	}

	reward, err := h.service.Claim(r.Context(), userID, req.Threshold)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to claim milestone", "error", err)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, reward)
}
