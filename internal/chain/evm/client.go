package evm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/chain/ratelimit"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/circuitbreaker"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/metrics"
)

// Client is a JSON-RPC client for EVM nodes. Every call passes the
// per-chain rate limiter and circuit breaker before touching the wire;
// transport failures and 5xx responses feed the breaker, JSON-RPC level
// errors do not (the node answered, it is the request that is wrong).
type Client struct {
	httpClient *http.Client
	rpcURL     string
	chain      string
	requestID  atomic.Int64
	limiter    *ratelimit.Limiter
	breaker    *circuitbreaker.Breaker
	logger     *slog.Logger
}

type ClientConfig struct {
	ChainID model.ChainID
	RPCURL  string
	Timeout time.Duration
	Limiter *ratelimit.Limiter
	Breaker *circuitbreaker.Breaker
}

func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		rpcURL:     cfg.RPCURL,
		chain:      cfg.ChainID.String(),
		limiter:    cfg.Limiter,
		breaker:    cfg.Breaker,
		logger:     logger,
	}
}

func (c *Client) call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	req := c.newRequest(method, params)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	respBody, err := c.post(ctx, method, body)
	if err != nil {
		return nil, err
	}

	var rpcResp Response
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if rpcResp.Error != nil {
		metrics.RPCErrorsTotal.WithLabelValues(c.chain, method).Inc()
		return nil, fmt.Errorf("%s: %w", method, rpcResp.Error)
	}

	return rpcResp.Result, nil
}

func (c *Client) callBatch(ctx context.Context, requests []Request) ([]Response, error) {
	if len(requests) == 0 {
		return []Response{}, nil
	}
	method := requests[0].Method

	body, err := json.Marshal(requests)
	if err != nil {
		return nil, fmt.Errorf("marshal batch request: %w", err)
	}

	respBody, err := c.post(ctx, method, body)
	if err != nil {
		return nil, err
	}

	var rpcResps []Response
	if err := json.Unmarshal(respBody, &rpcResps); err != nil {
		return nil, fmt.Errorf("unmarshal batch response: %w", err)
	}

	responseByID := make(map[int]Response, len(rpcResps))
	for _, rpcResp := range rpcResps {
		responseByID[rpcResp.ID] = rpcResp
	}

	// Nodes may answer batches in any order; reorder by request ID.
	ordered := make([]Response, len(requests))
	for i, req := range requests {
		rpcResp, ok := responseByID[req.ID]
		if !ok {
			return nil, fmt.Errorf("missing batch response id=%d method=%s", req.ID, req.Method)
		}
		ordered[i] = rpcResp
	}

	return ordered, nil
}

// post sends one HTTP round trip through the limiter and breaker and
// returns the raw response body.
func (c *Client) post(ctx context.Context, method string, body []byte) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			return nil, err
		}
	}

	metrics.RPCRequestsTotal.WithLabelValues(c.chain, method).Inc()
	start := time.Now()

	respBody, err := c.doPost(ctx, body)

	metrics.RPCRequestLatency.WithLabelValues(c.chain, method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RPCErrorsTotal.WithLabelValues(c.chain, method).Inc()
		if c.breaker != nil {
			c.breaker.RecordFailure()
		}
		return nil, err
	}
	if c.breaker != nil {
		c.breaker.RecordSuccess()
	}
	return respBody, nil
}

func (c *Client) doPost(ctx context.Context, body []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

func (c *Client) newRequest(method string, params []interface{}) Request {
	id := int(c.requestID.Add(1))
	return Request{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  params,
	}
}
