package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server    ServerConfig
	Wallet    WalletConfig
	Network   NetworkConfig
	Contracts ContractsConfig
	Bond      BondConfig
	Redis     RedisConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
	// LogLevel overrides the env default when set
	LogLevel string
}

// WalletConfig holds the wallet provider endpoint and optional local signer
type WalletConfig struct {
	// ProviderURL is the wallet bridge endpoint. Empty means no provider is available.
	ProviderURL      string
	SignerPrivateKey string
}

// NetworkConfig describes the only network the dApp operates on
type NetworkConfig struct {
	ChainID          uint64
	ChainName        string
	RPCURL           string
	ExplorerURL      string
	CurrencyName     string
	CurrencySymbol   string
	CurrencyDecimals int
}

// ContractsConfig holds contract addresses and ABI sources
type ContractsConfig struct {
	BondAddress        string
	StablecoinAddress  string
	BondABIPath        string
	StablecoinABIPath  string
	OwnedTokensMethods []string
	TokenURIMethods    []string
}

// BondConfig holds the product constants of the bond token
type BondConfig struct {
	PricePerToken       int64
	StablecoinDecimals  int
	MaxMintAmount       int
	FallbackMetadataURI string
	FaucetURL           string
	ReceiptPollInterval time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
}

const (
	DefaultBondAddress         = "0x51dCb56174957bd6e8e2cFA76e5081fa8eFc0787"
	DefaultStablecoinAddress   = "0x9e190a3FFfA34E513DD65741D2DaEa1CBf5Ca39C"
	DefaultFallbackMetadataURI = "https://moccasin-tiny-ladybug-156.mypinata.cloud/ipfs/bafkreiglbolyndhc3o2baekajhph4wtvcwh42uzsuw4fawuc7vbiggdwja"
)

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),

			LogLevel: getEnv("LOG_LEVEL", ""),
		},
		Wallet: WalletConfig{
			ProviderURL:      getEnv("WALLET_PROVIDER_URL", ""),
			SignerPrivateKey: getEnv("SIGNER_PRIVATE_KEY", ""),
		},
		Network: NetworkConfig{
			ChainID:          uint64(getEnvAsInt("NETWORK_CHAIN_ID", 1301)),
			ChainName:        getEnv("NETWORK_CHAIN_NAME", "Unichain Sepolia"),
			RPCURL:           getEnv("NETWORK_RPC_URL", "https://rpc.sepolia.unichain.org"),
			ExplorerURL:      getEnv("NETWORK_EXPLORER_URL", "https://sepolia.uniscan.xyz"),
			CurrencyName:     getEnv("NETWORK_CURRENCY_NAME", "ETH"),
			CurrencySymbol:   getEnv("NETWORK_CURRENCY_SYMBOL", "ETH"),
			CurrencyDecimals: getEnvAsInt("NETWORK_CURRENCY_DECIMALS", 18),
		},
		Contracts: ContractsConfig{
			BondAddress:        getEnv("BOND_CONTRACT_ADDRESS", DefaultBondAddress),
			StablecoinAddress:  getEnv("STABLECOIN_CONTRACT_ADDRESS", DefaultStablecoinAddress),
			BondABIPath:        getEnv("BOND_ABI_PATH", ""),
			StablecoinABIPath:  getEnv("STABLECOIN_ABI_PATH", ""),
			OwnedTokensMethods: getEnvAsList("BOND_OWNED_TOKENS_METHODS", []string{"getTokensOfOwner", "tokensOfOwner"}),
			TokenURIMethods:    getEnvAsList("BOND_TOKEN_URI_METHODS", []string{"uri", "tokenURI"}),
		},
		Bond: BondConfig{
			PricePerToken:       int64(getEnvAsInt("BOND_PRICE_PER_TOKEN", 1000)),
			StablecoinDecimals:  getEnvAsInt("STABLECOIN_DECIMALS", 6),
			MaxMintAmount:       getEnvAsInt("BOND_MAX_MINT_AMOUNT", 100),
			FallbackMetadataURI: getEnv("BOND_FALLBACK_METADATA_URI", DefaultFallbackMetadataURI),
			FaucetURL:           getEnv("STABLECOIN_FAUCET_URL", "https://mockfaucet.vercel.app/"),
			ReceiptPollInterval: getEnvAsDuration("RECEIPT_POLL_INTERVAL", time.Second),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsList reads a comma separated list, dropping blank entries.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
