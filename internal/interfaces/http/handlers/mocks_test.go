package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tbond.backend/internal/domain/entities"
)

type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) Session() entities.WalletSession {
	return m.Called().Get(0).(entities.WalletSession)
}

func (m *MockWalletService) Network() entities.Network {
	return m.Called().Get(0).(entities.Network)
}

func (m *MockWalletService) Connect(ctx context.Context) (entities.WalletSession, error) {
	args := m.Called(ctx)
	return args.Get(0).(entities.WalletSession), args.Error(1)
}

func (m *MockWalletService) Disconnect() entities.WalletSession {
	return m.Called().Get(0).(entities.WalletSession)
}

func (m *MockWalletService) SwitchNetwork(ctx context.Context) (entities.WalletSession, error) {
	args := m.Called(ctx)
	return args.Get(0).(entities.WalletSession), args.Error(1)
}

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) OwnedTokens(ctx context.Context, account string) []entities.TokenEntry {
	return m.Called(ctx, account).Get(0).([]entities.TokenEntry)
}

func (m *MockTokenService) TokenDetails(ctx context.Context, account string, tokenID uint64) entities.TokenDetails {
	return m.Called(ctx, account, tokenID).Get(0).(entities.TokenDetails)
}

func (m *MockTokenService) StablecoinBalance(ctx context.Context, account string) (entities.StablecoinAmount, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(entities.StablecoinAmount), args.Error(1)
}

type MockMintService struct {
	mock.Mock
}

func (m *MockMintService) Quote(input entities.MintQuoteInput) entities.MintAmountInput {
	return m.Called(input).Get(0).(entities.MintAmountInput)
}

func (m *MockMintService) CheckBalance(ctx context.Context) (*entities.BalanceCheck, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BalanceCheck), args.Error(1)
}

func (m *MockMintService) Mint(ctx context.Context, input entities.MintInput) (*entities.MintResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MintResult), args.Error(1)
}

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) BuildDashboard(ctx context.Context, selected *uint64) (*entities.DashboardView, error) {
	args := m.Called(ctx, selected)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DashboardView), args.Error(1)
}
