package walletprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tbond.backend/pkg/logger"
)

// WSConfig configures the WebSocket wallet bridge.
type WSConfig struct {
	// HandshakeTimeout bounds the initial dial.
	HandshakeTimeout time.Duration
	// WriteTimeout bounds a single frame write.
	WriteTimeout time.Duration
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
	}
}

type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// wsMessage is either a response (ID set) or a notification (Method set).
type wsMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *uint64         `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ProviderError  `json:"error,omitempty"`
}

// WSProvider is an EIP-1193 bridge over a WebSocket: requests are multiplexed
// by id and unsolicited notifications are dispatched as provider events.
type WSProvider struct {
	endpoint string
	config   WSConfig

	conn    *websocket.Conn
	writeMu sync.Mutex

	requestID atomic.Uint64
	pending   map[uint64]chan wsMessage
	pendingMu sync.Mutex

	events *eventBus

	closed atomic.Bool
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewWSProvider connects to the bridge endpoint and starts the reader.
func NewWSProvider(ctx context.Context, endpoint string, config *WSConfig) (*WSProvider, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}

	dialer := websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}

	p := &WSProvider{
		endpoint: endpoint,
		config:   cfg,
		conn:     conn,
		pending:  make(map[uint64]chan wsMessage),
		events:   newEventBus(),
		done:     make(chan struct{}),
	}

	p.wg.Add(1)
	go p.readLoop()

	return p, nil
}

// Request sends a JSON-RPC request and waits for the matching response.
func (p *WSProvider) Request(ctx context.Context, result interface{}, method string, params ...interface{}) error {
	if p.closed.Load() {
		return ErrProviderClosed
	}
	if params == nil {
		params = []interface{}{}
	}

	id := p.requestID.Add(1)
	respCh := make(chan wsMessage, 1)
	p.pendingMu.Lock()
	p.pending[id] = respCh
	p.pendingMu.Unlock()
	defer p.forget(id)

	p.writeMu.Lock()
	_ = p.conn.SetWriteDeadline(time.Now().Add(p.config.WriteTimeout))
	err := p.conn.WriteJSON(wsRequest{JSONRPC: "2.0", ID: id, Method: method, Params: params})
	p.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("write %s: %w", method, err)
	}

	select {
	case resp, ok := <-respCh:
		if !ok {
			return ErrProviderClosed
		}
		if resp.Error != nil {
			return resp.Error
		}
		if result == nil || len(resp.Result) == 0 {
			return nil
		}
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return ErrProviderClosed
	}
}

// On registers an event handler
func (p *WSProvider) On(event string, handler func(json.RawMessage)) func() {
	return p.events.on(event, handler)
}

// Close closes the WebSocket connection and fails in-flight requests.
func (p *WSProvider) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	close(p.done)

	p.writeMu.Lock()
	_ = p.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	err := p.conn.Close()
	p.writeMu.Unlock()

	p.wg.Wait()
	return err
}

func (p *WSProvider) forget(id uint64) {
	p.pendingMu.Lock()
	delete(p.pending, id)
	p.pendingMu.Unlock()
}

func (p *WSProvider) readLoop() {
	defer p.wg.Done()
	defer p.failPending()

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if !p.closed.Load() {
				logger.Warn(context.Background(), "wallet bridge connection lost",
					zap.String("endpoint", p.endpoint), zap.Error(err))
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warn(context.Background(), "wallet bridge sent malformed frame", zap.Error(err))
			continue
		}
		p.dispatch(msg)
	}
}

func (p *WSProvider) dispatch(msg wsMessage) {
	if msg.ID != nil && msg.Method == "" {
		p.pendingMu.Lock()
		ch, ok := p.pending[*msg.ID]
		p.pendingMu.Unlock()
		if ok {
			ch <- msg
		}
		return
	}
	if msg.Method != "" {
		p.events.emit(msg.Method, msg.Params)
	}
}

func (p *WSProvider) failPending() {
	p.pendingMu.Lock()
	defer p.pendingMu.Unlock()
	for id, ch := range p.pending {
		close(ch)
		delete(p.pending, id)
	}
}
