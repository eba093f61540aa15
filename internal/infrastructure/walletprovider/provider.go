// Package walletprovider talks to the user's wallet over EIP-1193 style JSON-RPC.
package walletprovider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/rpc"
)

// Provider events
const (
	EventAccountsChanged = "accountsChanged"
	EventChainChanged    = "chainChanged"
)

// Provider methods
const (
	MethodRequestAccounts = "eth_requestAccounts"
	MethodAccounts        = "eth_accounts"
	MethodChainID         = "eth_chainId"
	MethodSwitchChain     = "wallet_switchEthereumChain"
	MethodAddChain        = "wallet_addEthereumChain"
	MethodSendTransaction = "eth_sendTransaction"
)

// EIP-1193 / EIP-3085 error codes
const (
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeUnrecognizedChain = 4902
)

var ErrProviderClosed = errors.New("wallet provider closed")

// Provider is a wallet that brokers accounts and signing.
type Provider interface {
	// Request performs one JSON-RPC call. result may be nil when the reply is ignored.
	Request(ctx context.Context, result interface{}, method string, params ...interface{}) error
	// On registers a handler for a provider event. Handlers run on the provider's
	// read goroutine and must not issue requests synchronously.
	On(event string, handler func(params json.RawMessage)) (unsubscribe func())
	Close() error
}

// ProviderError is a JSON-RPC error returned by the wallet.
type ProviderError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("wallet provider error %d: %s", e.Code, e.Message)
}

// ErrorCode implements rpc.Error
func (e *ProviderError) ErrorCode() int {
	return e.Code
}

// ErrorData implements rpc.DataError
func (e *ProviderError) ErrorData() interface{} {
	if len(e.Data) == 0 {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return string(e.Data)
	}
	return v
}

// ErrorCode extracts the JSON-RPC error code from err, from either this
// package's ProviderError or go-ethereum's rpc errors.
func ErrorCode(err error) (int, bool) {
	var coded rpc.Error
	if errors.As(err, &coded) {
		return coded.ErrorCode(), true
	}
	return 0, false
}

// IsUnrecognizedChain reports whether the wallet does not know the requested chain.
func IsUnrecognizedChain(err error) bool {
	code, ok := ErrorCode(err)
	return ok && code == CodeUnrecognizedChain
}

// IsUnauthorized reports whether the wallet refused because the account is
// not authorised for this origin.
func IsUnauthorized(err error) bool {
	code, ok := ErrorCode(err)
	return ok && code == CodeUnauthorized
}

// IsUserRejected reports whether the user declined the request in the wallet.
func IsUserRejected(err error) bool {
	code, ok := ErrorCode(err)
	return ok && code == CodeUserRejected
}

var (
	dialWS  = func(ctx context.Context, url string) (Provider, error) { return NewWSProvider(ctx, url, nil) }
	dialRPC = func(ctx context.Context, url string) (Provider, error) { return NewRPCProvider(ctx, url) }
)

// Dial connects to the wallet endpoint, choosing the transport from the URL scheme.
func Dial(ctx context.Context, url string) (Provider, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("wallet provider url is empty")
	}
	if strings.HasPrefix(url, "ws://") || strings.HasPrefix(url, "wss://") {
		return dialWS(ctx, url)
	}
	return dialRPC(ctx, url)
}

// eventBus fans provider notifications out to registered handlers.
type eventBus struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[string]map[uint64]func(json.RawMessage)
}

func newEventBus() *eventBus {
	return &eventBus{handlers: make(map[string]map[uint64]func(json.RawMessage))}
}

func (b *eventBus) on(event string, handler func(json.RawMessage)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if b.handlers[event] == nil {
		b.handlers[event] = make(map[uint64]func(json.RawMessage))
	}
	b.handlers[event][id] = handler

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers[event], id)
		})
	}
}

func (b *eventBus) emit(event string, params json.RawMessage) int {
	b.mu.RLock()
	handlers := make([]func(json.RawMessage), 0, len(b.handlers[event]))
	for _, h := range b.handlers[event] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(params)
	}
	return len(handlers)
}
