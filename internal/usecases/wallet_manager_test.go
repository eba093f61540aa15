package usecases

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tbond.backend/internal/domain/entities"
	domainerrors "tbond.backend/internal/domain/errors"
	"tbond.backend/internal/infrastructure/walletprovider"
)

func TestWalletManager_NoProvider(t *testing.T) {
	m := NewWalletManager(nil, testNetwork())
	m.Start(context.Background())

	session, err := m.Connect(context.Background())
	require.ErrorIs(t, err, domainerrors.ErrWalletProviderMissing)
	assert.Equal(t, domainerrors.MsgInstallWallet, appErrorOf(t, err).Message)
	assert.Equal(t, entities.WalletSession{}, session)

	_, err = m.SwitchNetwork(context.Background())
	require.ErrorIs(t, err, domainerrors.ErrWalletProviderMissing)
	m.Stop()
}

func TestWalletManager_Connect(t *testing.T) {
	p := newFakeProvider().
		reply(walletprovider.MethodRequestAccounts, []string{testAccount, "0x2222222222222222222222222222222222222222"}, nil).
		reply(walletprovider.MethodChainID, "0x515", nil)
	m := NewWalletManager(p, testNetwork())

	session, err := m.Connect(context.Background())
	require.NoError(t, err)

	require.NotNil(t, session.Address)
	assert.Equal(t, testAccount, *session.Address)
	require.NotNil(t, session.ChainID)
	assert.Equal(t, uint64(1301), *session.ChainID)
	assert.True(t, session.Connected)
	assert.True(t, session.IsCorrectNetwork)
	assert.Equal(t, []string{walletprovider.MethodRequestAccounts, walletprovider.MethodChainID}, p.methods())
}

func TestWalletManager_ConnectWrongNetwork(t *testing.T) {
	p := newFakeProvider().
		reply(walletprovider.MethodRequestAccounts, []string{testAccount}, nil).
		reply(walletprovider.MethodChainID, "0x1", nil)
	m := NewWalletManager(p, testNetwork())

	session, err := m.Connect(context.Background())
	require.NoError(t, err)
	assert.True(t, session.Connected)
	assert.Equal(t, uint64(1), *session.ChainID)
	assert.False(t, session.IsCorrectNetwork)
}

func TestWalletManager_ConnectFailuresLeaveSession(t *testing.T) {
	t.Run("rejected", func(t *testing.T) {
		p := newFakeProvider().reply(walletprovider.MethodRequestAccounts, nil,
			&walletprovider.ProviderError{Code: 4001, Message: "User rejected the request."})
		m := NewWalletManager(p, testNetwork())

		session, err := m.Connect(context.Background())
		require.NoError(t, err)
		assert.False(t, session.Connected)
		assert.Nil(t, session.Address)
	})

	t.Run("no accounts", func(t *testing.T) {
		p := newFakeProvider().reply(walletprovider.MethodRequestAccounts, []string{}, nil)
		m := NewWalletManager(p, testNetwork())

		session, err := m.Connect(context.Background())
		require.NoError(t, err)
		assert.False(t, session.Connected)
		assert.Equal(t, []string{walletprovider.MethodRequestAccounts}, p.methods())
	})
}

func TestWalletManager_Disconnect(t *testing.T) {
	p := newFakeProvider().
		reply(walletprovider.MethodRequestAccounts, []string{testAccount}, nil).
		reply(walletprovider.MethodChainID, "0x515", nil)
	m := NewWalletManager(p, testNetwork())
	_, err := m.Connect(context.Background())
	require.NoError(t, err)

	session := m.Disconnect()
	assert.False(t, session.Connected)
	assert.Nil(t, session.Address)
	// chain id is still known; the wallet keeps its permission
	require.NotNil(t, session.ChainID)
	assert.True(t, session.IsCorrectNetwork)
}

func TestWalletManager_SwitchNetwork(t *testing.T) {
	t.Run("known chain", func(t *testing.T) {
		p := newFakeProvider().
			reply(walletprovider.MethodSwitchChain, nil, nil).
			reply(walletprovider.MethodChainID, "0x515", nil)
		m := NewWalletManager(p, testNetwork())

		session, err := m.SwitchNetwork(context.Background())
		require.NoError(t, err)
		assert.True(t, session.IsCorrectNetwork)
		assert.Equal(t, []string{walletprovider.MethodSwitchChain, walletprovider.MethodChainID}, p.methods())

		params, err := json.Marshal(p.calls[0].Params)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"chainId":"0x515"}]`, string(params))
	})

	t.Run("unknown chain is added then switched", func(t *testing.T) {
		p := newFakeProvider().
			reply(walletprovider.MethodSwitchChain, nil, &walletprovider.ProviderError{Code: 4902, Message: "Unrecognized chain ID"}).
			reply(walletprovider.MethodSwitchChain, nil, nil).
			reply(walletprovider.MethodAddChain, nil, nil).
			reply(walletprovider.MethodChainID, "0x515", nil)
		m := NewWalletManager(p, testNetwork())

		session, err := m.SwitchNetwork(context.Background())
		require.NoError(t, err)
		assert.True(t, session.IsCorrectNetwork)
		assert.Equal(t, []string{
			walletprovider.MethodSwitchChain,
			walletprovider.MethodAddChain,
			walletprovider.MethodSwitchChain,
			walletprovider.MethodChainID,
		}, p.methods())

		params, err := json.Marshal(p.calls[1].Params)
		require.NoError(t, err)
		assert.JSONEq(t, `[{
			"chainId":"0x515",
			"chainName":"Unichain Sepolia",
			"nativeCurrency":{"name":"ETH","symbol":"ETH","decimals":18},
			"rpcUrls":["https://rpc.sepolia.unichain.org"],
			"blockExplorerUrls":["https://sepolia.uniscan.xyz"]
		}]`, string(params))
	})

	t.Run("add failure is logged only", func(t *testing.T) {
		p := newFakeProvider().
			reply(walletprovider.MethodSwitchChain, nil, &walletprovider.ProviderError{Code: 4902, Message: "Unrecognized chain ID"}).
			reply(walletprovider.MethodAddChain, nil, &walletprovider.ProviderError{Code: 4001, Message: "rejected"})
		m := NewWalletManager(p, testNetwork())

		session, err := m.SwitchNetwork(context.Background())
		require.NoError(t, err)
		assert.Nil(t, session.ChainID)
		assert.Equal(t, []string{walletprovider.MethodSwitchChain, walletprovider.MethodAddChain}, p.methods())
	})

	t.Run("other errors do not add the chain", func(t *testing.T) {
		p := newFakeProvider().
			reply(walletprovider.MethodSwitchChain, nil, &walletprovider.ProviderError{Code: 4001, Message: "rejected"})
		m := NewWalletManager(p, testNetwork())

		_, err := m.SwitchNetwork(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{walletprovider.MethodSwitchChain}, p.methods())
	})
}

func TestWalletManager_StartAndEvents(t *testing.T) {
	p := newFakeProvider().
		reply(walletprovider.MethodAccounts, []string{testAccount}, nil).
		reply(walletprovider.MethodChainID, "0x515", nil)
	m := NewWalletManager(p, testNetwork())

	m.Start(context.Background())
	session := m.Session()
	assert.True(t, session.Connected)
	assert.True(t, session.IsCorrectNetwork)

	require.Equal(t, 1, p.emit(walletprovider.EventChainChanged, `"0x1"`))
	session = m.Session()
	assert.Equal(t, uint64(1), *session.ChainID)
	assert.False(t, session.IsCorrectNetwork)

	p.emit(walletprovider.EventChainChanged, `["0x515"]`)
	assert.True(t, m.Session().IsCorrectNetwork)

	p.emit(walletprovider.EventChainChanged, `"not-a-chain"`)
	assert.True(t, m.Session().IsCorrectNetwork)

	p.emit(walletprovider.EventAccountsChanged, `[["0x3333333333333333333333333333333333333333"]]`)
	assert.Equal(t, "0x3333333333333333333333333333333333333333", m.Session().AccountOrEmpty())

	p.emit(walletprovider.EventAccountsChanged, `[]`)
	session = m.Session()
	assert.False(t, session.Connected)
	assert.Nil(t, session.Address)

	p.emit(walletprovider.EventAccountsChanged, `{}`)
	assert.False(t, m.Session().Connected)

	m.Stop()
	assert.Equal(t, 0, p.emit(walletprovider.EventAccountsChanged, `["0x1"]`))
	assert.Equal(t, 0, p.emit(walletprovider.EventChainChanged, `"0x1"`))
}

func TestWalletManager_StartWithoutAuthorisedAccount(t *testing.T) {
	p := newFakeProvider().
		reply(walletprovider.MethodAccounts, []string{}, nil).
		reply(walletprovider.MethodChainID, "1301", nil)
	m := NewWalletManager(p, testNetwork())

	m.Start(context.Background())
	session := m.Session()
	assert.False(t, session.Connected)
	assert.True(t, session.IsCorrectNetwork)
	m.Stop()
}

func TestParseChainID(t *testing.T) {
	for raw, want := range map[string]uint64{"0x515": 1301, "0X515": 1301, "1301": 1301, " 0x1 ": 1} {
		got, err := parseChainID(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	for _, raw := range []string{"", "0x", "abc", "-1"} {
		_, err := parseChainID(raw)
		assert.Error(t, err, raw)
	}
}
