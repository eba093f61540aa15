package blockchain

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"tbond.backend/internal/infrastructure/walletprovider"
)

var performRawTransact = func(client *ethclient.Client, to common.Address, auth *bind.TransactOpts, data []byte) (*types.Transaction, error) {
	contract := bind.NewBoundContract(to, abi.ABI{}, client, client, client)
	return contract.RawTransact(auth, data)
}

// ProviderSigner sends transactions through the user's wallet as the
// connected account; the wallet signs and broadcasts.
type ProviderSigner struct {
	*EVMClient
	provider walletprovider.Provider
	from     common.Address
}

// NewProviderSigner creates a signer bound to the connected account
func NewProviderSigner(client *EVMClient, provider walletprovider.Provider, from string) *ProviderSigner {
	return &ProviderSigner{
		EVMClient: client,
		provider:  provider,
		from:      common.HexToAddress(from),
	}
}

// Address returns the sending account
func (s *ProviderSigner) Address() string {
	return s.from.Hex()
}

// Transact submits calldata to the contract and returns the tx hash
func (s *ProviderSigner) Transact(ctx context.Context, to string, data []byte) (string, error) {
	tx := map[string]string{
		"from": s.from.Hex(),
		"to":   common.HexToAddress(to).Hex(),
		"data": hexutil.Encode(data),
	}

	var hash common.Hash
	if err := s.provider.Request(ctx, &hash, walletprovider.MethodSendTransaction, tx); err != nil {
		return "", err
	}
	return hash.Hex(), nil
}

// KeyedSigner signs locally with a private key and broadcasts over RPC.
type KeyedSigner struct {
	*EVMClient
	auth *bind.TransactOpts
}

// NewKeyedSigner parses the hex private key (0x prefix optional)
func NewKeyedSigner(client *EVMClient, privateKeyHex string) (*KeyedSigner, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid signer private key: %w", err)
	}
	if client.ChainID() == nil {
		return nil, fmt.Errorf("chain id is nil")
	}

	auth, err := bind.NewKeyedTransactorWithChainID(privateKey, client.ChainID())
	if err != nil {
		return nil, err
	}
	return &KeyedSigner{EVMClient: client, auth: auth}, nil
}

// Address returns the key's account
func (s *KeyedSigner) Address() string {
	return s.auth.From.Hex()
}

// Transact signs and sends raw calldata to the contract
func (s *KeyedSigner) Transact(ctx context.Context, to string, data []byte) (string, error) {
	opts := *s.auth
	opts.Context = ctx

	tx, err := performRawTransact(s.client, common.HexToAddress(to), &opts, data)
	if err != nil {
		return "", err
	}
	return tx.Hash().Hex(), nil
}
