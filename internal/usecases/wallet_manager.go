package usecases

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"tbond.backend/internal/domain/entities"
	domainerrors "tbond.backend/internal/domain/errors"
	"tbond.backend/internal/infrastructure/walletprovider"
	"tbond.backend/pkg/logger"
	"tbond.backend/pkg/metrics"
)

// SessionSource exposes the current wallet session
type SessionSource interface {
	Session() entities.WalletSession
}

// WalletManager owns the single wallet session: who is connected and on
// which chain. Provider events update it from the provider's goroutine.
type WalletManager struct {
	provider walletprovider.Provider
	network  entities.Network

	mu        sync.RWMutex
	address   *string
	chainID   *uint64
	connected bool

	unsubscribe []func()
}

// NewWalletManager creates a manager. provider may be nil when no wallet is available.
func NewWalletManager(provider walletprovider.Provider, network entities.Network) *WalletManager {
	return &WalletManager{
		provider: provider,
		network:  network,
	}
}

// Provider returns the wallet provider, nil when absent
func (m *WalletManager) Provider() walletprovider.Provider {
	return m.provider
}

// Network returns the target network
func (m *WalletManager) Network() entities.Network {
	return m.network
}

// Start subscribes to wallet events and picks up an already authorised
// account without prompting the user.
func (m *WalletManager) Start(ctx context.Context) {
	if m.provider == nil {
		logger.Info(ctx, "No wallet provider configured")
		return
	}

	m.mu.Lock()
	m.unsubscribe = append(m.unsubscribe,
		m.provider.On(walletprovider.EventAccountsChanged, m.handleAccountsChanged),
		m.provider.On(walletprovider.EventChainChanged, m.handleChainChanged),
	)
	m.mu.Unlock()

	var accounts []string
	if err := m.request(ctx, &accounts, walletprovider.MethodAccounts); err != nil {
		logger.Warn(ctx, "Failed to read authorised accounts", zap.Error(err))
	} else {
		m.setAccounts(accounts)
	}
	m.refreshChainID(ctx)
}

// Stop unsubscribes from wallet events
func (m *WalletManager) Stop() {
	m.mu.Lock()
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()

	for _, fn := range unsubscribe {
		fn()
	}
}

// Connect asks the wallet for account access. A missing provider is the only
// reported failure; wallet errors are logged and leave the session unchanged.
func (m *WalletManager) Connect(ctx context.Context) (entities.WalletSession, error) {
	if m.provider == nil {
		logger.Warn(ctx, "Connect requested without a wallet provider")
		return m.Session(), domainerrors.ProviderMissing()
	}

	var accounts []string
	if err := m.request(ctx, &accounts, walletprovider.MethodRequestAccounts); err != nil {
		logger.Error(ctx, "Error connecting to wallet", zap.Error(err))
		return m.Session(), nil
	}
	if len(accounts) == 0 {
		logger.Warn(ctx, "Wallet returned no accounts")
		return m.Session(), nil
	}

	m.setAccounts(accounts)
	m.refreshChainID(ctx)

	session := m.Session()
	logger.Info(logger.WithAccount(ctx, session.AccountOrEmpty()), "Wallet connected")
	return session, nil
}

// Disconnect forgets the account locally. The wallet's permission is not revoked.
func (m *WalletManager) Disconnect() entities.WalletSession {
	m.mu.Lock()
	m.address = nil
	m.connected = false
	m.mu.Unlock()
	return m.Session()
}

// SwitchNetwork asks the wallet to switch to the target network, registering
// it first when the wallet does not know it. Failures are logged only.
func (m *WalletManager) SwitchNetwork(ctx context.Context) (entities.WalletSession, error) {
	if m.provider == nil {
		return m.Session(), domainerrors.ProviderMissing()
	}

	switchParams := entities.SwitchChainParams{ChainID: m.network.HexChainID()}
	err := m.request(ctx, nil, walletprovider.MethodSwitchChain, switchParams)
	if walletprovider.IsUnrecognizedChain(err) {
		logger.Info(ctx, "Wallet does not know the network, adding it", zap.String("chain_id", switchParams.ChainID))
		if addErr := m.request(ctx, nil, walletprovider.MethodAddChain, m.network.AddChainParams()); addErr != nil {
			logger.Error(ctx, "Error adding network", zap.Error(addErr))
			return m.Session(), nil
		}
		err = m.request(ctx, nil, walletprovider.MethodSwitchChain, switchParams)
	}
	if err != nil {
		logger.Error(ctx, "Error switching network", zap.Error(err))
		return m.Session(), nil
	}

	m.refreshChainID(ctx)
	return m.Session(), nil
}

// Session returns a snapshot of the connection state
func (m *WalletManager) Session() entities.WalletSession {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session := entities.WalletSession{Connected: m.connected}
	if m.address != nil {
		address := *m.address
		session.Address = &address
	}
	if m.chainID != nil {
		chainID := *m.chainID
		session.ChainID = &chainID
		session.IsCorrectNetwork = chainID == m.network.ChainID
	}
	return session
}

func (m *WalletManager) request(ctx context.Context, result interface{}, method string, params ...interface{}) error {
	err := m.provider.Request(ctx, result, method, params...)
	metrics.RecordProviderRequest(method, err)
	return err
}

func (m *WalletManager) refreshChainID(ctx context.Context) {
	var raw string
	if err := m.request(ctx, &raw, walletprovider.MethodChainID); err != nil {
		logger.Warn(ctx, "Failed to read chain id", zap.Error(err))
		return
	}
	if err := m.setChainID(raw); err != nil {
		logger.Warn(ctx, "Wallet returned an invalid chain id", zap.String("chain_id", raw), zap.Error(err))
	}
}

func (m *WalletManager) setAccounts(accounts []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(accounts) == 0 {
		m.address = nil
		m.connected = false
		return
	}
	address := accounts[0]
	m.address = &address
	m.connected = true
}

func (m *WalletManager) setChainID(raw string) error {
	chainID, err := parseChainID(raw)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.chainID = &chainID
	m.mu.Unlock()
	return nil
}

// handleAccountsChanged accepts either the account list itself or a
// params array wrapping it.
func (m *WalletManager) handleAccountsChanged(params json.RawMessage) {
	metrics.RecordWalletEvent(walletprovider.EventAccountsChanged)

	var accounts []string
	if err := json.Unmarshal(params, &accounts); err != nil {
		var wrapped [][]string
		if err := json.Unmarshal(params, &wrapped); err != nil || len(wrapped) == 0 {
			logger.Warn(context.Background(), "Malformed accountsChanged event", zap.ByteString("params", params))
			return
		}
		accounts = wrapped[0]
	}
	m.setAccounts(accounts)
	logger.Info(context.Background(), "Wallet accounts changed", zap.Int("accounts", len(accounts)))
}

func (m *WalletManager) handleChainChanged(params json.RawMessage) {
	metrics.RecordWalletEvent(walletprovider.EventChainChanged)

	var raw string
	if err := json.Unmarshal(params, &raw); err != nil {
		var wrapped []string
		if err := json.Unmarshal(params, &wrapped); err != nil || len(wrapped) == 0 {
			logger.Warn(context.Background(), "Malformed chainChanged event", zap.ByteString("params", params))
			return
		}
		raw = wrapped[0]
	}
	if err := m.setChainID(raw); err != nil {
		logger.Warn(context.Background(), "Invalid chain id in chainChanged event", zap.String("chain_id", raw), zap.Error(err))
		return
	}
	logger.Info(context.Background(), "Wallet chain changed", zap.String("chain_id", raw))
}

// parseChainID accepts the 0x-prefixed form wallets send and plain decimal.
func parseChainID(raw string) (uint64, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		return hexutil.DecodeUint64(strings.ToLower(raw))
	}
	return strconv.ParseUint(raw, 10, 64)
}
