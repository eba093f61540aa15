package blockchain

import (
	"context"
	"math/big"
	"testing"
)

func expectPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic, got nil")
		}
	}()
	fn()
}

func TestEVMClient_Methods_PanicWhenClientNil(t *testing.T) {
	c := &EVMClient{client: nil, chainID: big.NewInt(1301), rpcURL: "http://unused"}
	ctx := context.Background()

	expectPanic(t, func() {
		_, _ = c.GetTransactionReceipt(ctx, "0x1111111111111111111111111111111111111111111111111111111111111111")
	})
	expectPanic(t, func() { _, _ = c.CallView(ctx, "0x3333333333333333333333333333333333333333", []byte{0x12, 0x34}) })

	// no-op without an underlying client
	c.Close()
}
