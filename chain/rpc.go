package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tidwall/gjson"
)

// Wallet provider error codes (EIP-1193 and JSON-RPC)
const (
	CodeUserRejected      = 4001
	CodeUnrecognizedChain = 4902
	CodeInternalError     = -32603
)

// Provider sends a JSON-RPC request to a wallet or node and returns the raw result
type Provider interface {
	Request(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error)
}

// RPCError is an error object returned by the provider
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// RPCProvider speaks JSON-RPC 2.0 over HTTP
type RPCProvider struct {
	url    string
	client *http.Client
	nextID uint64
}

// NewRPCProvider creates a provider for the node at url
func NewRPCProvider(url string, client *http.Client) *RPCProvider {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &RPCProvider{url: url, client: client}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// Request performs a single call
func (p *RPCProvider) Request(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	if params == nil {
		params = []interface{}{}
	}
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      atomic.AddUint64(&p.nextID, 1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", method, err)
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("invalid %s response (http %d)", method, resp.StatusCode)
	}

	if e := gjson.GetBytes(raw, "error"); e.Exists() && e.Type != gjson.Null {
		return nil, &RPCError{
			Code:    int(e.Get("code").Int()),
			Message: e.Get("message").String(),
		}
	}
	result := gjson.GetBytes(raw, "result")
	if !result.Exists() {
		return nil, fmt.Errorf("missing result in %s response", method)
	}
	return json.RawMessage(result.Raw), nil
}
