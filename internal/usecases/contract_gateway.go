package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"tbond.backend/internal/config"
	"tbond.backend/internal/domain/entities"
	domainerrors "tbond.backend/internal/domain/errors"
	"tbond.backend/internal/infrastructure/walletprovider"
	"tbond.backend/pkg/logger"
	"tbond.backend/pkg/metrics"
)

const (
	contractBond       = "bond"
	contractStablecoin = "stablecoin"

	operationOwnedTokens = "owned_tokens"
	operationTokenURI    = "token_uri"
)

// ReadHandle performs read-only contract calls.
type ReadHandle interface {
	CallView(ctx context.Context, to string, data []byte) ([]byte, error)
}

// SignHandle can also submit transactions as Address and wait for them.
type SignHandle interface {
	ReadHandle
	Address() string
	Transact(ctx context.Context, to string, data []byte) (string, error)
	WaitMined(ctx context.Context, txHash string) (*types.Receipt, error)
}

// GatewayConfig holds the contracts and product constants the gateway talks to
type GatewayConfig struct {
	BondAddress         string
	StablecoinAddress   string
	BondABI             abi.ABI
	StablecoinABI       abi.ABI
	OwnedTokensMethods  []string
	TokenURIMethods     []string
	PricePerToken       int64
	StablecoinDecimals  int
	FallbackMetadataURI string
}

// NewGatewayConfig resolves ABIs and candidate lists from application config
func NewGatewayConfig(cfg *config.Config) (GatewayConfig, error) {
	bondABI, err := LoadABI(cfg.Contracts.BondABIPath, DefaultBondABI)
	if err != nil {
		return GatewayConfig{}, err
	}
	stablecoinABI, err := LoadABI(cfg.Contracts.StablecoinABIPath, DefaultStablecoinABI)
	if err != nil {
		return GatewayConfig{}, err
	}
	return GatewayConfig{
		BondAddress:         cfg.Contracts.BondAddress,
		StablecoinAddress:   cfg.Contracts.StablecoinAddress,
		BondABI:             bondABI,
		StablecoinABI:       stablecoinABI,
		OwnedTokensMethods:  cfg.Contracts.OwnedTokensMethods,
		TokenURIMethods:     cfg.Contracts.TokenURIMethods,
		PricePerToken:       cfg.Bond.PricePerToken,
		StablecoinDecimals:  cfg.Bond.StablecoinDecimals,
		FallbackMetadataURI: cfg.Bond.FallbackMetadataURI,
	}, nil
}

// ContractGateway is the stateless access layer for the bond and stablecoin contracts.
type ContractGateway struct {
	cfg GatewayConfig
}

func NewContractGateway(cfg GatewayConfig) *ContractGateway {
	if cfg.BondAddress == "" {
		cfg.BondAddress = config.DefaultBondAddress
	}
	if cfg.StablecoinAddress == "" {
		cfg.StablecoinAddress = config.DefaultStablecoinAddress
	}
	if len(cfg.BondABI.Methods) == 0 {
		cfg.BondABI = DefaultBondABI
	}
	if len(cfg.StablecoinABI.Methods) == 0 {
		cfg.StablecoinABI = DefaultStablecoinABI
	}
	if len(cfg.OwnedTokensMethods) == 0 {
		cfg.OwnedTokensMethods = []string{"getTokensOfOwner", "tokensOfOwner"}
	}
	if len(cfg.TokenURIMethods) == 0 {
		cfg.TokenURIMethods = []string{"uri", "tokenURI"}
	}
	if cfg.PricePerToken <= 0 {
		cfg.PricePerToken = 1000
	}
	if cfg.StablecoinDecimals <= 0 {
		cfg.StablecoinDecimals = 6
	}
	if cfg.FallbackMetadataURI == "" {
		cfg.FallbackMetadataURI = config.DefaultFallbackMetadataURI
	}
	return &ContractGateway{cfg: cfg}
}

// BondAddress returns the bond contract address
func (g *ContractGateway) BondAddress() string {
	return g.cfg.BondAddress
}

// GetStablecoinBalance reads the owner's stablecoin balance. Errors propagate.
func (g *ContractGateway) GetStablecoinBalance(ctx context.Context, h ReadHandle, owner string) (entities.StablecoinAmount, error) {
	raw, err := callTypedView[*big.Int](ctx, h, g.cfg.StablecoinAddress, g.cfg.StablecoinABI, "balanceOf", common.HexToAddress(owner))
	metrics.RecordContractCall(contractStablecoin, "balanceOf", err)
	if err != nil {
		return entities.StablecoinAmount{}, err
	}
	return entities.StablecoinAmount{
		Raw:       raw,
		Formatted: formatUnits(raw, g.cfg.StablecoinDecimals),
	}, nil
}

// GetOwnedTokens lists the owner's token ids in contract order. Never fails:
// when every candidate method fails the list is empty.
func (g *ContractGateway) GetOwnedTokens(ctx context.Context, h ReadHandle, owner string) []uint64 {
	ids, err := firstSuccessful(ctx, operationOwnedTokens, g.cfg.OwnedTokensMethods, func(method string) ([]uint64, error) {
		raw, err := callTypedView[[]*big.Int](ctx, h, g.cfg.BondAddress, g.cfg.BondABI, method, common.HexToAddress(owner))
		metrics.RecordContractCall(contractBond, method, err)
		if err != nil {
			return nil, err
		}
		out := make([]uint64, 0, len(raw))
		for _, id := range raw {
			if !id.IsUint64() {
				return nil, fmt.Errorf("token id %s out of range", id.String())
			}
			out = append(out, id.Uint64())
		}
		return out, nil
	})
	if err != nil {
		logger.Warn(ctx, "Failed to fetch owned tokens", zap.String("owner", owner), zap.Error(err))
		return []uint64{}
	}
	return ids
}

// GetTokenMetadata resolves display metadata for tokenID. Never fails: the
// hardcoded fallback record is returned when no candidate yields a usable URI.
func (g *ContractGateway) GetTokenMetadata(ctx context.Context, h ReadHandle, tokenID uint64) entities.TokenMetadata {
	id := new(big.Int).SetUint64(tokenID)
	metadata, err := firstSuccessful(ctx, operationTokenURI, g.cfg.TokenURIMethods, func(method string) (entities.TokenMetadata, error) {
		uri, err := callTypedView[string](ctx, h, g.cfg.BondAddress, g.cfg.BondABI, method, id)
		metrics.RecordContractCall(contractBond, method, err)
		if err != nil {
			return entities.TokenMetadata{}, err
		}
		return g.classifyTokenURI(tokenID, method, uri)
	})
	if err != nil {
		logger.Warn(ctx, "Falling back to default token metadata", zap.Uint64("token_id", tokenID), zap.Error(err))
		metrics.RecordMetadataFallback()
		fallback := g.placeholderMetadata(tokenID)
		fallback.ASCIIArtURL = g.cfg.FallbackMetadataURI
		return fallback
	}
	return metadata
}

// GetBondBalance reads balanceOf(account, tokenID) on the bond contract.
func (g *ContractGateway) GetBondBalance(ctx context.Context, h ReadHandle, account string, tokenID uint64) (*big.Int, error) {
	balance, err := callTypedView[*big.Int](ctx, h, g.cfg.BondAddress, g.cfg.BondABI, "balanceOf", common.HexToAddress(account), new(big.Int).SetUint64(tokenID))
	metrics.RecordContractCall(contractBond, "balanceOf", err)
	return balance, err
}

// RequiredAllowance is price × 10^decimals × amount in stablecoin base units.
func (g *ContractGateway) RequiredAllowance(amount int) *big.Int {
	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(g.cfg.StablecoinDecimals)), nil)
	total := new(big.Int).Mul(big.NewInt(g.cfg.PricePerToken), unit)
	return total.Mul(total, big.NewInt(int64(amount)))
}

// ApproveSpend authorizes the bond contract to pull the stablecoin cost of
// amount tokens from the signer, after checking the signer holds any at all.
func (g *ContractGateway) ApproveSpend(ctx context.Context, h SignHandle, amount int) error {
	balance, err := g.GetStablecoinBalance(ctx, h, h.Address())
	if err != nil {
		return domainerrors.UpstreamFailed("Failed to check USDC balance", err)
	}
	logger.Info(ctx, "USDC balance before approval", zap.String("balance", balance.Formatted))
	if balance.IsZero() {
		return domainerrors.NoStablecoinBalance()
	}

	required := g.RequiredAllowance(amount)
	data, err := g.cfg.StablecoinABI.Pack("approve", common.HexToAddress(g.cfg.BondAddress), required)
	if err != nil {
		return domainerrors.InternalError(err)
	}
	logger.Info(ctx, "Approving USDC", zap.String("amount", required.String()))
	return g.transact(ctx, h, contractStablecoin, g.cfg.StablecoinAddress, "approve", data)
}

// Mint mints amount bond tokens to the given account and waits for confirmation.
func (g *ContractGateway) Mint(ctx context.Context, h SignHandle, to string, amount int) error {
	data, err := g.cfg.BondABI.Pack("mint", common.HexToAddress(to), big.NewInt(int64(amount)))
	if err != nil {
		return domainerrors.InternalError(err)
	}
	logger.Info(ctx, "Minting tokens", zap.String("to", to), zap.Int("amount", amount))
	return g.transact(ctx, h, contractBond, g.cfg.BondAddress, "mint", data)
}

func (g *ContractGateway) transact(ctx context.Context, h SignHandle, contract, address, method string, data []byte) error {
	txHash, err := h.Transact(ctx, address, data)
	metrics.RecordContractCall(contract, method, err)
	if err != nil {
		return g.txError(method, err)
	}
	logger.Info(ctx, "Transaction sent", zap.String("method", method), zap.String("tx_hash", txHash))

	receipt, err := h.WaitMined(ctx, txHash)
	if err != nil {
		return g.txError(method, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return domainerrors.TransactionFailed(
			fmt.Sprintf("%s transaction %s reverted", method, txHash),
			domainerrors.ErrTransactionReverted,
		)
	}
	logger.Info(ctx, "Transaction confirmed", zap.String("method", method), zap.String("tx_hash", txHash))
	return nil
}

func (g *ContractGateway) txError(method string, err error) error {
	if walletprovider.IsUserRejected(err) {
		return domainerrors.TransactionFailed("Transaction rejected in wallet", err)
	}
	if walletprovider.IsUnauthorized(err) {
		return domainerrors.NotConnected()
	}
	if decoded, ok := decodeRevertDataFromError(err, g.cfg.StablecoinABI, g.cfg.BondABI); ok {
		return domainerrors.TransactionFailed(fmt.Sprintf("%s reverted: %s", method, decoded.Message), err)
	}
	return domainerrors.TransactionFailed(fmt.Sprintf("%s failed: %s", method, err.Error()), err)
}

// metadataFields are the JSON properties TokenMetadata carries as fields
var metadataFields = map[string]bool{
	"name": true, "description": true, "price": true, "id": true, "ascii_art": true, "ascii_art_url": true,
}

// classifyTokenURI turns the raw string returned by method into metadata: a
// JSON literal is parsed, anything else becomes a placeholder carrying the
// string. A plain tokenURI() value is a link; a plain uri() value is the art.
func (g *ContractGateway) classifyTokenURI(tokenID uint64, method, uri string) (entities.TokenMetadata, error) {
	metadata := g.placeholderMetadata(tokenID)

	switch {
	case strings.HasPrefix(uri, "{"):
		var fields map[string]interface{}
		if err := json.Unmarshal([]byte(uri), &fields); err != nil {
			return entities.TokenMetadata{}, fmt.Errorf("invalid token metadata format: %w", err)
		}
		for k, v := range fields {
			if metadataFields[k] {
				continue
			}
			if metadata.Extra == nil {
				metadata.Extra = make(map[string]interface{})
			}
			metadata.Extra[k] = v
		}
		if v, ok := fields["name"].(string); ok {
			metadata.Name = v
		}
		if v, ok := fields["description"].(string); ok {
			metadata.Description = v
		}
		if v, ok := fields["price"].(string); ok {
			metadata.Price = v
		}
		if v, ok := fields["ascii_art"].(string); ok {
			metadata.ASCIIArt = v
		}
		if v, ok := fields["ascii_art_url"].(string); ok {
			metadata.ASCIIArtURL = v
		}
	case strings.HasPrefix(uri, "http"), strings.HasPrefix(uri, "ipfs"), method == methodTokenURI:
		metadata.ASCIIArtURL = uri
	default:
		metadata.ASCIIArt = uri
	}
	return metadata, nil
}

const methodTokenURI = "tokenURI"

func (g *ContractGateway) placeholderMetadata(tokenID uint64) entities.TokenMetadata {
	return entities.TokenMetadata{
		Name:        fmt.Sprintf("UAE T-Bond #%d", tokenID),
		Description: "U.A.E T-Bonds",
		Price:       fmt.Sprintf("%d USDC", g.cfg.PricePerToken),
		ID:          tokenID,
	}
}

// firstSuccessful calls each candidate method in order and returns the first
// result that does not fail, or all failures joined.
func firstSuccessful[T any](ctx context.Context, operation string, methods []string, call func(method string) (T, error)) (T, error) {
	var zero T
	if len(methods) == 0 {
		return zero, fmt.Errorf("%s: no candidate methods configured", operation)
	}

	errs := make([]error, 0, len(methods))
	for i, method := range methods {
		value, err := call(method)
		if err == nil {
			return value, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", method, err))
		if i < len(methods)-1 {
			logger.Debug(ctx, "Candidate method failed, trying next",
				zap.String("operation", operation), zap.String("method", method), zap.Error(err))
			metrics.RecordCandidateFallback(operation)
		}
	}
	return zero, errors.Join(errs...)
}

func callTypedView[T any](
	ctx context.Context,
	h ReadHandle,
	contractAddress string,
	parsedABI abi.ABI,
	method string,
	args ...interface{},
) (T, error) {
	var zero T

	data, err := parsedABI.Pack(method, args...)
	if err != nil {
		return zero, err
	}
	out, err := h.CallView(ctx, contractAddress, data)
	if err != nil {
		return zero, err
	}
	vals, err := parsedABI.Unpack(method, out)
	if err != nil || len(vals) == 0 {
		return zero, fmt.Errorf("failed to decode %s", method)
	}
	value, ok := vals[0].(T)
	if !ok {
		return zero, fmt.Errorf("invalid %s return type", method)
	}
	return value, nil
}

// formatUnits renders raw base units with the given decimals the way ethers
// does: trailing zeros trimmed, at least one fractional digit ("0.0", "12.5").
func formatUnits(raw *big.Int, decimals int) string {
	if raw == nil {
		raw = new(big.Int)
	}
	if decimals <= 0 {
		return raw.String() + ".0"
	}

	negative := raw.Sign() < 0
	digits := new(big.Int).Abs(raw).String()
	if len(digits) <= decimals {
		digits = strings.Repeat("0", decimals-len(digits)+1) + digits
	}

	whole := digits[:len(digits)-decimals]
	fraction := strings.TrimRight(digits[len(digits)-decimals:], "0")
	if fraction == "" {
		fraction = "0"
	}

	out := whole + "." + fraction
	if negative {
		out = "-" + out
	}
	return out
}
