package walletprovider

import (
	"context"
	"encoding/json"

	"github.com/ethereum/go-ethereum/rpc"
)

var dialRPCClient = rpc.DialContext

// RPCProvider is a request-only provider over an HTTP JSON-RPC wallet endpoint.
// HTTP cannot push notifications, so On never fires.
type RPCProvider struct {
	client *rpc.Client
}

// NewRPCProvider dials the wallet endpoint
func NewRPCProvider(ctx context.Context, url string) (*RPCProvider, error) {
	client, err := dialRPCClient(ctx, url)
	if err != nil {
		return nil, err
	}
	return &RPCProvider{client: client}, nil
}

func (p *RPCProvider) Request(ctx context.Context, result interface{}, method string, params ...interface{}) error {
	return p.client.CallContext(ctx, result, method, params...)
}

func (p *RPCProvider) On(string, func(json.RawMessage)) func() {
	return func() {}
}

func (p *RPCProvider) Close() error {
	p.client.Close()
	return nil
}
