package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/lunarforge/gachad/internal/domain"
	"github.com/lunarforge/gachad/internal/gacha"
)

// Hand-rolled testify mocks for the service interfaces the handlers consume.

type MockGachaService struct {
	mock.Mock
}

func (m *MockGachaService) Roll(ctx context.Context, userID, bannerID, idempotencyKey string) (*domain.RollResult, error) {
	args := m.Called(ctx, userID, bannerID, idempotencyKey)
	var result *domain.RollResult
	if v := args.Get(0); v != nil {
		result = v.(*domain.RollResult)
	}
	return result, args.Error(1)
}

func (m *MockGachaService) GetPity(ctx context.Context, userID, bannerID string) (*gacha.PityView, error) {
	args := m.Called(ctx, userID, bannerID)
	var view *gacha.PityView
	if v := args.Get(0); v != nil {
		view = v.(*gacha.PityView)
	}
	return view, args.Error(1)
}

func (m *MockGachaService) Config() *gacha.Config {
	args := m.Called()
	var cfg *gacha.Config
	if v := args.Get(0); v != nil {
		cfg = v.(*gacha.Config)
	}
	return cfg
}

func (m *MockGachaService) Shutdown(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockFatePointsService struct {
	mock.Mock
}

func (m *MockFatePointsService) Get(ctx context.Context, userID string) (*domain.FatePoints, error) {
	args := m.Called(ctx, userID)
	var fp *domain.FatePoints
	if v := args.Get(0); v != nil {
		fp = v.(*domain.FatePoints)
	}
	return fp, args.Error(1)
}

func (m *MockFatePointsService) Options() []domain.ExchangeOption {
	args := m.Called()
	var opts []domain.ExchangeOption
	if v := args.Get(0); v != nil {
		opts = v.([]domain.ExchangeOption)
	}
	return opts
}

func (m *MockFatePointsService) Exchange(ctx context.Context, userID, optionID string) (*domain.ExchangeResult, error) {
	args := m.Called(ctx, userID, optionID)
	var result *domain.ExchangeResult
	if v := args.Get(0); v != nil {
		result = v.(*domain.ExchangeResult)
	}
	return result, args.Error(1)
}

func (m *MockFatePointsService) SweepStaleWeeks(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFatePointsService) Shutdown(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockMilestoneService struct {
	mock.Mock
}

func (m *MockMilestoneService) GetProgress(ctx context.Context, userID string) (*domain.MilestoneProgress, error) {
	args := m.Called(ctx, userID)
	var progress *domain.MilestoneProgress
	if v := args.Get(0); v != nil {
		progress = v.(*domain.MilestoneProgress)
	}
	return progress, args.Error(1)
}

func (m *MockMilestoneService) Claim(ctx context.Context, userID string, threshold int) (*domain.MilestoneReward, error) {
	args := m.Called(ctx, userID, threshold)
	var reward *domain.MilestoneReward
	if v := args.Get(0); v != nil {
		reward = v.(*domain.MilestoneReward)
	}
	return reward, args.Error(1)
}

func (m *MockMilestoneService) Shutdown(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockSelectorService struct {
	mock.Mock
}

func (m *MockSelectorService) List(ctx context.Context, userID string) ([]domain.Selector, error) {
	args := m.Called(ctx, userID)
	var selectors []domain.Selector
	if v := args.Get(0); v != nil {
		selectors = v.([]domain.Selector)
	}
	return selectors, args.Error(1)
}

func (m *MockSelectorService) ListEligible(ctx context.Context, userID string, rarity domain.Rarity) ([]domain.EligibleCharacter, error) {
	args := m.Called(ctx, userID, rarity)
	var eligible []domain.EligibleCharacter
	if v := args.Get(0); v != nil {
		eligible = v.([]domain.EligibleCharacter)
	}
	return eligible, args.Error(1)
}

func (m *MockSelectorService) Redeem(ctx context.Context, userID string, selectorID uuid.UUID, characterID string) (*domain.RedemptionResult, error) {
	args := m.Called(ctx, userID, selectorID, characterID)
	var result *domain.RedemptionResult
	if v := args.Get(0); v != nil {
		result = v.(*domain.RedemptionResult)
	}
	return result, args.Error(1)
}

func (m *MockSelectorService) Shutdown(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
