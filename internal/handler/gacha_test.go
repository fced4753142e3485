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
	"github.com/lunarforge/gachad/internal/gacha"
)

func TestHandleRoll(t *testing.T) {
	tests := []struct {
		name           string
		userID         string
		reqBody        interface{}
		idempotencyKey string
		setupMocks     func(*MockGachaService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Missing User Header",
			userID:         "",
			reqBody:        RollRequest{BannerID: "banner_dawnfire"},
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
			name:           "Missing Banner ID",
			userID:         "user-1",
			reqBody:        RollRequest{},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "This field is required",
		},
		{
			name:    "Banner Not Found",
			userID:  "user-1",
			reqBody: RollRequest{BannerID: "banner_unknown"},
			setupMocks: func(mg *MockGachaService) {
				mg.On("Roll", mock.Anything, "user-1", "banner_unknown", "").Return(nil, domain.ErrBannerNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   ErrMsgBannerNotFoundError,
		},
		{
			name:    "Insufficient Tickets",
			userID:  "user-1",
			reqBody: RollRequest{BannerID: "banner_dawnfire"},
			setupMocks: func(mg *MockGachaService) {
				mg.On("Roll", mock.Anything, "user-1", "banner_dawnfire", "").Return(nil, domain.ErrInsufficientFunds)
			},
			expectedStatus: http.StatusPaymentRequired,
			expectedBody:   ErrMsgNotEnoughTicketsError,
		},
		{
			name:    "Lock Conflict",
			userID:  "user-1",
			reqBody: RollRequest{BannerID: "banner_dawnfire"},
			setupMocks: func(mg *MockGachaService) {
				mg.On("Roll", mock.Anything, "user-1", "banner_dawnfire", "").Return(nil, domain.ErrConcurrencyConflict)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   ErrMsgRollConflictError,
		},
		{
			name:           "Success With Idempotency Key",
			userID:         "user-1",
			reqBody:        RollRequest{BannerID: "banner_dawnfire"},
			idempotencyKey: "roll-abc-123",
			setupMocks: func(mg *MockGachaService) {
				mg.On("Roll", mock.Anything, "user-1", "banner_dawnfire", "roll-abc-123").Return(&domain.RollResult{
					Rarity:     domain.RarityLegendary,
					Character:  &domain.Character{ID: "char_aurora", Rarity: domain.RarityLegendary},
					TotalPulls: 90,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"rarity":"legendary"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockGacha := &MockGachaService{}
			handler := NewGachaHandler(mockGacha)

			if tt.setupMocks != nil {
				tt.setupMocks(mockGacha)
			}

			var body []byte
			if s, ok := tt.reqBody.(string); ok && s == "invalid json" {
				body = []byte(s)
			} else {
				body, _ = json.Marshal(tt.reqBody)
			}

			req := httptest.NewRequest("POST", "/api/v1/gacha/roll", bytes.NewBuffer(body))
			if tt.userID != "" {
				req.Header.Set(HeaderUserID, tt.userID)
			}
			if tt.idempotencyKey != "" {
				req.Header.Set(HeaderIdempotencyKey, tt.idempotencyKey)
			}
			rec := httptest.NewRecorder()

			handler.HandleRoll(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, rec.Body.String(), tt.expectedBody)
			}
			mockGacha.AssertExpectations(t)
		})
	}
}

func TestHandleGetPity(t *testing.T) {
	pityView := &gacha.PityView{
		Standard: gacha.StandardPity{
			Progress: map[domain.Rarity]gacha.TierProgress{
				domain.RarityLegendary: {Current: 45, Max: 90, Percent: 50},
			},
			UntilGuaranteed: map[domain.Rarity]int{domain.RarityLegendary: 45},
			SoftPity: map[domain.Rarity]gacha.SoftPityInfo{
				domain.RarityLegendary: {Active: false, Threshold: 74},
			},
		},
		Banner: gacha.BannerPity{GuaranteedFeatured: true, Message: gacha.MsgGuaranteedFeatured},
	}

	tests := []struct {
		name           string
		userID         string
		bannerID       string
		setupMocks     func(*MockGachaService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Missing User Header",
			userID:         "",
			bannerID:       "banner_dawnfire",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   ErrMsgMissingUserID,
		},
		{
			name:           "Missing Banner ID",
			userID:         "user-1",
			bannerID:       "",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Missing bannerId query parameter",
		},
		{
			name:     "Banner Not Found",
			userID:   "user-1",
			bannerID: "banner_unknown",
			setupMocks: func(mg *MockGachaService) {
				mg.On("GetPity", mock.Anything, "user-1", "banner_unknown").Return(nil, domain.ErrBannerNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   ErrMsgBannerNotFoundError,
		},
		{
			name:     "Success",
			userID:   "user-1",
			bannerID: "banner_dawnfire",
			setupMocks: func(mg *MockGachaService) {
				mg.On("GetPity", mock.Anything, "user-1", "banner_dawnfire").Return(pityView, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"guaranteedFeatured":true`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockGacha := &MockGachaService{}
			handler := NewGachaHandler(mockGacha)

			if tt.setupMocks != nil {
				tt.setupMocks(mockGacha)
			}

			req := httptest.NewRequest("GET", "/api/v1/gacha/pity?bannerId="+tt.bannerID, nil)
			if tt.userID != "" {
				req.Header.Set(HeaderUserID, tt.userID)
			}
			rec := httptest.NewRecorder()

			handler.HandleGetPity(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, rec.Body.String(), tt.expectedBody)
			}
			mockGacha.AssertExpectations(t)
		})
	}
}
