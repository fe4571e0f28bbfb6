package evm

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

type Request struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error,omitempty"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type Block struct {
	Number     string `json:"number"`
	Hash       string `json:"hash"`
	ParentHash string `json:"parentHash"`
	Timestamp  string `json:"timestamp"`
}

// Log is the eth_getLogs wire shape.
type Log struct {
	Address         string   `json:"address"`
	Topics          []string `json:"topics"`
	Data            string   `json:"data"`
	BlockNumber     string   `json:"blockNumber"`
	TransactionHash string   `json:"transactionHash"`
	LogIndex        string   `json:"logIndex"`
	Removed         bool     `json:"removed"`
}

type TransactionReceipt struct {
	TransactionHash   string `json:"transactionHash"`
	BlockNumber       string `json:"blockNumber"`
	Status            string `json:"status"`
	GasUsed           string `json:"gasUsed"`
	EffectiveGasPrice string `json:"effectiveGasPrice"`
	Logs              []*Log `json:"logs"`
}

// LogFilter is the eth_getLogs request filter. Topics follows the JSON-RPC
// position-matching convention: element i constrains topic i, and a slice
// at a position means "any of".
type LogFilter struct {
	FromBlock string     `json:"fromBlock"`
	ToBlock   string     `json:"toBlock"`
	Address   string     `json:"address,omitempty"`
	Topics    [][]string `json:"topics,omitempty"`
}

func ParseHexInt64(value string) (int64, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return 0, fmt.Errorf("empty hex value")
	}
	raw = strings.TrimPrefix(strings.ToLower(raw), "0x")
	if raw == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseUint(raw, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse hex %q: %w", value, err)
	}
	return int64(parsed), nil
}

// ParseHexBig converts a 0x-prefixed hex quantity into a decimal string.
// Wei amounts exceed int64, so gas math stays in string form end to end.
func ParseHexBig(value string) (string, error) {
	raw := strings.TrimSpace(value)
	raw = strings.TrimPrefix(strings.ToLower(raw), "0x")
	if raw == "" {
		return "0", nil
	}
	n, ok := new(big.Int).SetString(raw, 16)
	if !ok {
		return "", fmt.Errorf("parse hex quantity %q", value)
	}
	return n.String(), nil
}

func formatHexInt64(value int64) string {
	return fmt.Sprintf("0x%x", value)
}
