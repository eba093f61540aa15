package usecases

import (
	"tbond.backend/internal/domain/entities"
	domainerrors "tbond.backend/internal/domain/errors"
	"tbond.backend/internal/infrastructure/blockchain"
)

// SignerSource resolves the signing handle for a session
type SignerSource interface {
	Signer(session entities.WalletSession) (SignHandle, error)
}

// HandleFactory builds contract handles over the network's RPC client.
// Writes go through the wallet as the connected account unless a local key
// signer is configured.
type HandleFactory struct {
	client  *blockchain.EVMClient
	manager *WalletManager
	keyed   SignHandle
}

func NewHandleFactory(client *blockchain.EVMClient, manager *WalletManager) *HandleFactory {
	return &HandleFactory{client: client, manager: manager}
}

// WithKeyedSigner makes every write use the local key signer
func (f *HandleFactory) WithKeyedSigner(signer *blockchain.KeyedSigner) *HandleFactory {
	if signer != nil {
		f.keyed = signer
	}
	return f
}

// Reader returns the read-only handle
func (f *HandleFactory) Reader() ReadHandle {
	return f.client
}

func (f *HandleFactory) Signer(session entities.WalletSession) (SignHandle, error) {
	if f.keyed != nil {
		return f.keyed, nil
	}
	provider := f.manager.Provider()
	if provider == nil {
		return nil, domainerrors.ProviderMissing()
	}
	if !session.Connected || session.Address == nil {
		return nil, domainerrors.NotConnected()
	}
	return blockchain.NewProviderSigner(f.client, provider, *session.Address), nil
}
