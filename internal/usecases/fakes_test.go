package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"tbond.backend/internal/config"
	"tbond.backend/internal/domain/entities"
	"tbond.backend/internal/infrastructure/walletprovider"
)

const (
	testAccount = "0x1111111111111111111111111111111111111111"
)

var errExecutionReverted = errors.New("execution reverted")

type viewFunc func(args []interface{}) ([]interface{}, error)

type chainCall struct {
	Key  string
	Args []interface{}
}

// fakeChain is an in-memory bond + stablecoin deployment that decodes
// calldata with the real ABIs.
type fakeChain struct {
	mu       sync.Mutex
	address  string
	views    map[string]viewFunc
	txErrs   map[string]error
	reverted map[string]bool
	waitErr  error

	calls    []chainCall
	txs      []chainCall
	txByHash map[string]string
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		address:  testAccount,
		views:    map[string]viewFunc{},
		txErrs:   map[string]error{},
		reverted: map[string]bool{},
		txByHash: map[string]string{},
	}
}

func (c *fakeChain) on(key string, fn viewFunc) *fakeChain {
	c.views[key] = fn
	return c
}

func (c *fakeChain) returns(key string, values ...interface{}) *fakeChain {
	return c.on(key, func([]interface{}) ([]interface{}, error) { return values, nil })
}

func (c *fakeChain) fails(key string) *fakeChain {
	return c.on(key, func([]interface{}) ([]interface{}, error) { return nil, errExecutionReverted })
}

func (c *fakeChain) decode(to string, data []byte) (string, *abi.Method, []interface{}, error) {
	contract, parsed := "stablecoin", DefaultStablecoinABI
	if strings.EqualFold(to, config.DefaultBondAddress) {
		contract, parsed = "bond", DefaultBondABI
	}
	if len(data) < 4 {
		return "", nil, nil, errors.New("short calldata")
	}
	method, err := parsed.MethodById(data[:4])
	if err != nil {
		return "", nil, nil, err
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return "", nil, nil, err
	}
	return contract + "." + method.Name, method, args, nil
}

func (c *fakeChain) CallView(_ context.Context, to string, data []byte) ([]byte, error) {
	key, method, args, err := c.decode(to, data)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.calls = append(c.calls, chainCall{Key: key, Args: args})
	fn := c.views[key]
	c.mu.Unlock()

	if fn == nil {
		return nil, errExecutionReverted
	}
	out, err := fn(args)
	if err != nil {
		return nil, err
	}
	return method.Outputs.Pack(out...)
}

func (c *fakeChain) Address() string {
	return c.address
}

func (c *fakeChain) Transact(_ context.Context, to string, data []byte) (string, error) {
	key, _, args, err := c.decode(to, data)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.txs = append(c.txs, chainCall{Key: key, Args: args})
	if err := c.txErrs[key]; err != nil {
		return "", err
	}
	hash := common.BigToHash(big.NewInt(int64(len(c.txs)))).Hex()
	c.txByHash[hash] = key
	return hash, nil
}

func (c *fakeChain) WaitMined(_ context.Context, txHash string) (*types.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.waitErr != nil {
		return nil, c.waitErr
	}
	status := types.ReceiptStatusSuccessful
	if c.reverted[c.txByHash[txHash]] {
		status = types.ReceiptStatusFailed
	}
	return &types.Receipt{Status: status, TxHash: common.HexToHash(txHash)}, nil
}

func (c *fakeChain) callKeys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.calls))
	for _, call := range c.calls {
		keys = append(keys, call.Key)
	}
	return keys
}

func (c *fakeChain) callsTo(key string) []chainCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []chainCall
	for _, call := range c.calls {
		if call.Key == key {
			out = append(out, call)
		}
	}
	return out
}

func (c *fakeChain) txKeys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.txs))
	for _, tx := range c.txs {
		keys = append(keys, tx.Key)
	}
	return keys
}

func ids(values ...int64) []*big.Int {
	out := make([]*big.Int, 0, len(values))
	for _, v := range values {
		out = append(out, big.NewInt(v))
	}
	return out
}

func usdc(whole int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(whole), big.NewInt(1_000_000))
}

func newTestGateway() *ContractGateway {
	return NewContractGateway(GatewayConfig{})
}

func testNetwork() entities.Network {
	return entities.Network{
		ChainID:     1301,
		Name:        "Unichain Sepolia",
		RPCURL:      "https://rpc.sepolia.unichain.org",
		ExplorerURL: "https://sepolia.uniscan.xyz",
		Currency:    entities.NativeCurrency{Name: "ETH", Symbol: "ETH", Decimals: 18},
	}
}

type staticSessions struct {
	session entities.WalletSession
}

func (s staticSessions) Session() entities.WalletSession {
	return s.session
}

func connectedSession(chainID uint64) entities.WalletSession {
	address := testAccount
	return entities.WalletSession{
		Address:          &address,
		ChainID:          &chainID,
		Connected:        true,
		IsCorrectNetwork: chainID == 1301,
	}
}

type staticSigners struct {
	signer SignHandle
	err    error
}

func (s staticSigners) Signer(entities.WalletSession) (SignHandle, error) {
	return s.signer, s.err
}

type providerCall struct {
	Method string
	Params []interface{}
}

// fakeProvider is a scripted wallet. Unscripted methods fail with -32601.
type fakeProvider struct {
	mu       sync.Mutex
	replies  map[string][]func(params []interface{}) (interface{}, error)
	calls    []providerCall
	handlers map[string][]func(json.RawMessage)
	closed   bool
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		replies:  map[string][]func([]interface{}) (interface{}, error){},
		handlers: map[string][]func(json.RawMessage){},
	}
}

// reply queues a response for method; the last one queued repeats.
func (p *fakeProvider) reply(method string, result interface{}, err error) *fakeProvider {
	p.replies[method] = append(p.replies[method], func([]interface{}) (interface{}, error) { return result, err })
	return p
}

func (p *fakeProvider) Request(_ context.Context, result interface{}, method string, params ...interface{}) error {
	p.mu.Lock()
	p.calls = append(p.calls, providerCall{Method: method, Params: params})
	queue := p.replies[method]
	var fn func([]interface{}) (interface{}, error)
	if len(queue) > 0 {
		fn = queue[0]
		if len(queue) > 1 {
			p.replies[method] = queue[1:]
		}
	}
	p.mu.Unlock()

	if fn == nil {
		return &walletprovider.ProviderError{Code: -32601, Message: fmt.Sprintf("method %s not found", method)}
	}
	value, err := fn(params)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, result)
}

func (p *fakeProvider) On(event string, handler func(json.RawMessage)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[event] = append(p.handlers[event], handler)
	idx := len(p.handlers[event]) - 1
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.handlers[event][idx] = nil
	}
}

func (p *fakeProvider) Close() error {
	p.closed = true
	return nil
}

func (p *fakeProvider) emit(event string, payload string) int {
	p.mu.Lock()
	handlers := append([]func(json.RawMessage){}, p.handlers[event]...)
	p.mu.Unlock()

	n := 0
	for _, h := range handlers {
		if h != nil {
			h(json.RawMessage(payload))
			n++
		}
	}
	return n
}

func (p *fakeProvider) methods() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.calls))
	for _, c := range p.calls {
		out = append(out, c.Method)
	}
	return out
}
