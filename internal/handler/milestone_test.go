package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/lunarforge/gachad/internal/domain"
)

func TestHandleGetMilestones(t *testing.T) {
	progress := &domain.MilestoneProgress{
		UserID:     "user-1",
		TotalPulls: 120,
		Rewards: []domain.MilestoneReward{
			{Threshold: 50, Reached: true, Claimed: true, Reward: domain.RewardPayload{Kind: domain.GrantRollTickets, Tickets: 5}},
			{Threshold: 100, Reached: true, Claimed: false, Reward: domain.RewardPayload{Kind: domain.GrantFatePoints, Points: 50}},
			{Threshold: 300, Reached: false, Claimed: false, Reward: domain.RewardPayload{Kind: domain.GrantSelector, Rarity: domain.RarityLegendary}},
		},
		NextThreshold: 300,
	}

	tests := []struct {
		name           string
		userID         string
		setupMocks     func(*MockMilestoneService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Missing User Header",
			userID:         "",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   ErrMsgMissingUserID,
		},
		{
			name:   "Service Error",
			userID: "user-1",
			setupMocks: func(mm *MockMilestoneService) {
				mm.On("GetProgress", mock.Anything, "user-1").Return(nil, domain.ErrDatabaseError)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   ErrMsgGenericServerError,
		},
		{
			name:   "Success",
			userID: "user-1",
			setupMocks: func(mm *MockMilestoneService) {
				mm.On("GetProgress", mock.Anything, "user-1").Return(progress, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"totalPulls":120`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockMilestone := &MockMilestoneService{}
			handler := NewMilestoneHandler(mockMilestone)

			if tt.setupMocks != nil {
				tt.setupMocks(mockMilestone)
			}

			req := httptest.NewRequest("GET", "/api/v1/gacha/milestones", nil)
			if tt.userID != "" {
				req.Header.Set(HeaderUserID, tt.userID)
			}
			rec := httptest.NewRecorder()

			handler.HandleGetMilestones(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, rec.Body.String(), tt.expectedBody)
			}
			mockMilestone.AssertExpectations(t)
		})
	}
}

func TestHandleClaim(t *testing.T) {
	tests := []struct {
		name           string
		userID         string
		reqBody        interface{}
		setupMocks     func(*MockMilestoneService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Missing User Header",
			userID:         "",
			reqBody:        ClaimRequest{Threshold: 100},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   ErrMsgMissingUserID,
		},
		{
			name:           "Invalid JSON",
			userID:         "user-1",
			reqBody:        "invalid json",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   ErrMsgInvalidRequest,
		},
		{
			name:           "Non-Positive Threshold",
			userID:         "user-1",
			reqBody:        ClaimRequest{Threshold: -5},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Must be positive",
		},
		{
			name:    "No Such Milestone",
			userID:  "user-1",
			reqBody: ClaimRequest{Threshold: 42},
			setupMocks: func(mm *MockMilestoneService) {
				mm.On("Claim", mock.Anything, "user-1", 42).Return(nil, domain.ErrNoSuchMilestone)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   ErrMsgNoSuchMilestoneError,
		},
		{
			name:    "Not Reached",
			userID:  "user-1",
			reqBody: ClaimRequest{Threshold: 300},
			setupMocks: func(mm *MockMilestoneService) {
				mm.On("Claim", mock.Anything, "user-1", 300).Return(nil, domain.ErrNotReached)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   ErrMsgNotReachedError,
		},
		{
			name:    "Already Claimed",
			userID:  "user-1",
			reqBody: ClaimRequest{Threshold: 50},
			setupMocks: func(mm *MockMilestoneService) {
				mm.On("Claim", mock.Anything, "user-1", 50).Return(nil, domain.ErrAlreadyClaimed)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   ErrMsgAlreadyClaimedError,
		},
		{
			name:    "Success",
			userID:  "user-1",
			reqBody: ClaimRequest{Threshold: 100},
			setupMocks: func(mm *MockMilestoneService) {
				mm.On("Claim", mock.Anything, "user-1", 100).Return(&domain.MilestoneReward{
					Threshold: 100,
					Reached:   true,
					Claimed:   true,
					Reward:    domain.RewardPayload{Kind: domain.GrantFatePoints, Points: 50},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"claimed":true`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockMilestone := &MockMilestoneService{}
			handler := NewMilestoneHandler(mockMilestone)

			if tt.setupMocks != nil {
				tt.setupMocks(mockMilestone)
			}

			var body []byte
			if s, ok := tt.reqBody.(string); ok && s == "invalid json" {
				body = []byte(s)
			} else {
				body, _ = json.Marshal(tt.reqBody)
			}

			req := httptest.NewRequest("POST", "/api/v1/gacha/milestones/claim", bytes.NewBuffer(body))
			if tt.userID != "" {
				req.Header.Set(HeaderUserID, tt.userID)
			}
			rec := httptest.NewRecorder()

			handler.HandleClaim(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, rec.Body.String(), tt.expectedBody)
			}
			mockMilestone.AssertExpectations(t)
		})
	}
}
