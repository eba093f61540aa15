package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"tbond.backend/internal/config"
	"tbond.backend/internal/domain/entities"
	"tbond.backend/internal/infrastructure/blockchain"
	"tbond.backend/internal/infrastructure/locks"
	"tbond.backend/internal/infrastructure/walletprovider"
	"tbond.backend/internal/interfaces/http/handlers"
	"tbond.backend/internal/interfaces/http/middleware"
	"tbond.backend/internal/usecases"
	"tbond.backend/pkg/logger"
	"tbond.backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

var (
	loadDotenv   = godotenv.Load
	loadCfg      = config.Load
	initLog      = logger.Init
	initRedis    = redis.Init
	dialProvider = walletprovider.Dial
	getEVMClient = func(f *blockchain.ClientFactory, rpcURL string) (*blockchain.EVMClient, error) {
		return f.GetEVMClient(rpcURL)
	}
	runServer = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	if cfg.Server.LogLevel != "" {
		if err := logger.SetLevel(cfg.Server.LogLevel); err != nil {
			return fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
	}
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Busy flags are process-local unless Redis is configured
	var guard locks.BusyGuard = locks.NewMemoryBusyGuard()
	if cfg.Redis.URL != "" {
		if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
			logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer func() { _ = redis.Close() }()
		guard = locks.NewRedisBusyGuard("", locks.DefaultBusyTTL)
		logger.Info(ctx, "Redis initialized")
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	network := networkFromConfig(cfg.Network)

	gatewayCfg, err := usecases.NewGatewayConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to load contract abis: %w", err)
	}
	gateway := usecases.NewContractGateway(gatewayCfg)

	clientFactory := blockchain.NewClientFactory().WithPollInterval(cfg.Bond.ReceiptPollInterval)
	defer clientFactory.Close()

	client, err := getEVMClient(clientFactory, cfg.Network.RPCURL)
	if err != nil {
		return fmt.Errorf("failed to connect to %s rpc: %w", network.Name, err)
	}
	if chainID := client.ChainID(); chainID != nil && chainID.Uint64() != network.ChainID {
		logger.Warn(ctx, "RPC endpoint serves a different chain",
			zap.Uint64("expected", network.ChainID), zap.String("actual", chainID.String()))
	}
	logger.Info(ctx, "RPC client ready",
		zap.String("chain", network.GetCAIP2ID()),
		zap.String("rpc", client.RPCURL()))

	var provider walletprovider.Provider
	if cfg.Wallet.ProviderURL != "" {
		provider, err = dialProvider(ctx, cfg.Wallet.ProviderURL)
		if err != nil {
			logger.Warn(ctx, "Wallet provider unavailable, continuing without one", zap.Error(err))
			provider = nil
		} else {
			defer func() { _ = provider.Close() }()
		}
	}

	walletManager := usecases.NewWalletManager(provider, network)
	walletManager.Start(ctx)
	defer walletManager.Stop()

	handleFactory := usecases.NewHandleFactory(client, walletManager)
	if cfg.Wallet.SignerPrivateKey != "" {
		keyed, err := blockchain.NewKeyedSigner(client, cfg.Wallet.SignerPrivateKey)
		if err != nil {
			return fmt.Errorf("failed to initialize signer: %w", err)
		}
		handleFactory.WithKeyedSigner(keyed)
		logger.Info(ctx, "Using local key signer", zap.String("address", keyed.Address()))
	}

	dashboardUsecase := usecases.NewDashboardUsecase(walletManager, handleFactory.Reader(), gateway, network)
	mintUsecase := usecases.NewMintUsecase(gateway, walletManager, handleFactory.Reader(), handleFactory, guard, usecases.MintSettings{
		MaxMintAmount: cfg.Bond.MaxMintAmount,
		PricePerToken: cfg.Bond.PricePerToken,
		FaucetURL:     cfg.Bond.FaucetURL,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware(healthPath, metricsPath))

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		walletHandler:    handlers.NewWalletHandler(walletManager),
		tokenHandler:     handlers.NewTokenHandler(dashboardUsecase),
		mintHandler:      handlers.NewMintHandler(mintUsecase),
		dashboardHandler: handlers.NewDashboardHandler(dashboardUsecase),
		networkGate:      middleware.NetworkGate(walletManager, network),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info(ctx, "T-Bond backend starting",
		zap.String("port", cfg.Server.Port),
		zap.String("network", network.Name),
		zap.String("bond", gateway.BondAddress()))

	errCh := make(chan error, 1)
	go func() { errCh <- runServer(srv) }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info(context.Background(), "Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func networkFromConfig(cfg config.NetworkConfig) entities.Network {
	return entities.Network{
		ChainID:     cfg.ChainID,
		Name:        cfg.ChainName,
		RPCURL:      cfg.RPCURL,
		ExplorerURL: cfg.ExplorerURL,
		Currency: entities.NativeCurrency{
			Name:     cfg.CurrencyName,
			Symbol:   cfg.CurrencySymbol,
			Decimals: cfg.CurrencyDecimals,
		},
	}
}
