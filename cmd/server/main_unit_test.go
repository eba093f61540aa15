package main

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"tbond.backend/internal/config"
	"tbond.backend/internal/infrastructure/blockchain"
	"tbond.backend/internal/infrastructure/walletprovider"
	plog "tbond.backend/pkg/logger"
)

func withMainHooks(t *testing.T) {
	t.Helper()
	origLoadDotenv := loadDotenv
	origLoadCfg := loadCfg
	origInitLog := initLog
	origInitRedis := initRedis
	origDialProvider := dialProvider
	origGetEVMClient := getEVMClient
	origRunServer := runServer

	t.Cleanup(func() {
		loadDotenv = origLoadDotenv
		loadCfg = origLoadCfg
		initLog = origInitLog
		initRedis = origInitRedis
		dialProvider = origDialProvider
		getEVMClient = origGetEVMClient
		runServer = origRunServer
	})

	loadDotenv = func(...string) error { return errors.New("no .env") }
	initLog = plog.Init
	initRedis = func(string, string) error { return nil }
	dialProvider = func(context.Context, string) (walletprovider.Provider, error) {
		return nil, errors.New("no wallet bridge")
	}
	getEVMClient = func(*blockchain.ClientFactory, string) (*blockchain.EVMClient, error) {
		return blockchain.NewEVMClientWithCallView(big.NewInt(1301), func(context.Context, string, []byte) ([]byte, error) {
			return nil, errors.New("execution reverted")
		}), nil
	}
	runServer = func(*http.Server) error { return http.ErrServerClosed }
}

func baseTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port: "18080",
			Env:  "development",
		},
		Network: config.NetworkConfig{
			ChainID:          1301,
			ChainName:        "Unichain Sepolia",
			RPCURL:           "http://127.0.0.1:0",
			ExplorerURL:      "https://sepolia.uniscan.xyz",
			CurrencyName:     "ETH",
			CurrencySymbol:   "ETH",
			CurrencyDecimals: 18,
		},
		Contracts: config.ContractsConfig{
			BondAddress:       config.DefaultBondAddress,
			StablecoinAddress: config.DefaultStablecoinAddress,
		},
		Bond: config.BondConfig{
			PricePerToken:      1000,
			StablecoinDecimals: 6,
			MaxMintAmount:      100,
		},
	}
}

func TestRunMainProcess_SuccessPath(t *testing.T) {
	withMainHooks(t)
	loadCfg = baseTestConfig

	require.NoError(t, runMainProcess())
}

func TestRunMainProcess_LogLevel(t *testing.T) {
	withMainHooks(t)
	loadCfg = func() *config.Config {
		cfg := baseTestConfig()
		cfg.Server.LogLevel = "info"
		return cfg
	}
	require.NoError(t, runMainProcess())

	loadCfg = func() *config.Config {
		cfg := baseTestConfig()
		cfg.Server.LogLevel = "loud"
		return cfg
	}
	require.ErrorContains(t, runMainProcess(), "invalid LOG_LEVEL")
}

func TestRunMainProcess_RedisInitError(t *testing.T) {
	withMainHooks(t)
	loadCfg = func() *config.Config {
		cfg := baseTestConfig()
		cfg.Redis.URL = "redis://localhost:6379"
		return cfg
	}
	initRedis = func(string, string) error { return errors.New("redis down") }

	err := runMainProcess()
	require.ErrorContains(t, err, "failed to initialize redis")
}

func TestRunMainProcess_RedisNotConfiguredSkipsInit(t *testing.T) {
	withMainHooks(t)
	loadCfg = baseTestConfig
	initRedis = func(string, string) error {
		t.Fatal("redis must not be initialized without a url")
		return nil
	}

	require.NoError(t, runMainProcess())
}

func TestRunMainProcess_ABIError(t *testing.T) {
	withMainHooks(t)
	loadCfg = func() *config.Config {
		cfg := baseTestConfig()
		cfg.Contracts.BondABIPath = t.TempDir() + "/missing.json"
		return cfg
	}

	err := runMainProcess()
	require.ErrorContains(t, err, "failed to load contract abis")
}

func TestRunMainProcess_RPCError(t *testing.T) {
	withMainHooks(t)
	loadCfg = baseTestConfig
	getEVMClient = func(*blockchain.ClientFactory, string) (*blockchain.EVMClient, error) {
		return nil, errors.New("dial refused")
	}

	err := runMainProcess()
	require.ErrorContains(t, err, "failed to connect to Unichain Sepolia rpc")
}

func TestRunMainProcess_WalletProviderFailureIsNotFatal(t *testing.T) {
	withMainHooks(t)
	loadCfg = func() *config.Config {
		cfg := baseTestConfig()
		cfg.Wallet.ProviderURL = "ws://127.0.0.1:0"
		return cfg
	}

	dialed := false
	dialProvider = func(context.Context, string) (walletprovider.Provider, error) {
		dialed = true
		return nil, errors.New("connection refused")
	}

	require.NoError(t, runMainProcess())
	require.True(t, dialed)
}

func TestRunMainProcess_SignerKey(t *testing.T) {
	withMainHooks(t)

	loadCfg = func() *config.Config {
		cfg := baseTestConfig()
		cfg.Wallet.SignerPrivateKey = "not-a-key"
		return cfg
	}
	require.ErrorContains(t, runMainProcess(), "failed to initialize signer")

	loadCfg = func() *config.Config {
		cfg := baseTestConfig()
		cfg.Wallet.SignerPrivateKey = "0xb71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"
		return cfg
	}
	require.NoError(t, runMainProcess())
}

func TestRunMainProcess_ServerRunError(t *testing.T) {
	withMainHooks(t)
	loadCfg = baseTestConfig
	runServer = func(*http.Server) error { return errors.New("listen failed") }

	err := runMainProcess()
	require.ErrorContains(t, err, "failed to start server")
}

func TestNetworkFromConfig(t *testing.T) {
	network := networkFromConfig(baseTestConfig().Network)
	require.Equal(t, "0x515", network.HexChainID())
	require.Equal(t, "Unichain Sepolia", network.Name)
	require.Equal(t, 18, network.Currency.Decimals)
}
