package evm

import (
	"encoding/hex"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ABI word decoding for the strategy registry's event data. Only the
// fragments the registry events emit are implemented: static words
// (uint256, int256, address, bool) and dynamic address[], uint256[],
// and string tails.

const wordHexLen = 64

var twoPow256 = new(big.Int).Lsh(big.NewInt(1), 256)

type abiData struct {
	hex string
}

func newABIData(data string) (abiData, error) {
	raw := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(data)), "0x")
	if len(raw)%wordHexLen != 0 {
		return abiData{}, fmt.Errorf("abi data length %d is not word aligned", len(raw))
	}
	if _, err := hex.DecodeString(raw); err != nil {
		return abiData{}, fmt.Errorf("abi data is not hex: %w", err)
	}
	return abiData{hex: raw}, nil
}

func (d abiData) words() int {
	return len(d.hex) / wordHexLen
}

func (d abiData) word(i int) (string, error) {
	if i < 0 || i >= d.words() {
		return "", fmt.Errorf("abi word %d out of range (%d words)", i, d.words())
	}
	return d.hex[i*wordHexLen : (i+1)*wordHexLen], nil
}

// uint64Word decodes a uint256 word that must fit in int64.
func (d abiData) uint64Word(i int) (int64, error) {
	w, err := d.word(i)
	if err != nil {
		return 0, err
	}
	if strings.TrimLeft(w[:48], "0") != "" {
		return 0, fmt.Errorf("abi word %d overflows uint64", i)
	}
	v, err := strconv.ParseUint(w[48:], 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse abi word %d: %w", i, err)
	}
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("abi word %d overflows int64", i)
	}
	return int64(v), nil
}

// bigWord decodes a uint256 word into a decimal string.
func (d abiData) bigWord(i int) (string, error) {
	w, err := d.word(i)
	if err != nil {
		return "", err
	}
	n, ok := new(big.Int).SetString(w, 16)
	if !ok {
		return "", fmt.Errorf("parse abi word %d as quantity", i)
	}
	return n.String(), nil
}

// signedWord decodes a two's-complement int256 word that must fit in int64.
func (d abiData) signedWord(i int) (int64, error) {
	w, err := d.word(i)
	if err != nil {
		return 0, err
	}
	n, ok := new(big.Int).SetString(w, 16)
	if !ok {
		return 0, fmt.Errorf("parse abi word %d as quantity", i)
	}
	if n.Bit(255) == 1 {
		n.Sub(n, twoPow256)
	}
	if !n.IsInt64() {
		return 0, fmt.Errorf("abi word %d overflows int64", i)
	}
	return n.Int64(), nil
}

func (d abiData) addressWord(i int) (string, error) {
	w, err := d.word(i)
	if err != nil {
		return "", err
	}
	if strings.TrimLeft(w[:24], "0") != "" {
		return "", fmt.Errorf("abi word %d is not an address", i)
	}
	return "0x" + w[24:], nil
}

func (d abiData) boolWord(i int) (bool, error) {
	v, err := d.uint64Word(i)
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("abi word %d is not a bool (value %d)", i, v)
	}
}

// offsetWord resolves a dynamic-type head word into the word index of its
// tail (the length word).
func (d abiData) offsetWord(i int) (int, error) {
	v, err := d.uint64Word(i)
	if err != nil {
		return 0, err
	}
	if v%32 != 0 {
		return 0, fmt.Errorf("abi word %d is not a word-aligned offset (%d)", i, v)
	}
	idx := int(v / 32)
	if idx >= d.words() {
		return 0, fmt.Errorf("abi offset in word %d points past data (%d >= %d)", i, idx, d.words())
	}
	return idx, nil
}

func (d abiData) addressArray(i int) ([]string, error) {
	base, err := d.offsetWord(i)
	if err != nil {
		return nil, err
	}
	n, err := d.uint64Word(base)
	if err != nil {
		return nil, err
	}
	if base+1+int(n) > d.words() {
		return nil, fmt.Errorf("abi address array at word %d truncated", i)
	}
	out := make([]string, n)
	for j := range out {
		addr, err := d.addressWord(base + 1 + j)
		if err != nil {
			return nil, err
		}
		out[j] = addr
	}
	return out, nil
}

func (d abiData) uint64Array(i int) ([]int64, error) {
	base, err := d.offsetWord(i)
	if err != nil {
		return nil, err
	}
	n, err := d.uint64Word(base)
	if err != nil {
		return nil, err
	}
	if base+1+int(n) > d.words() {
		return nil, fmt.Errorf("abi uint array at word %d truncated", i)
	}
	out := make([]int64, n)
	for j := range out {
		v, err := d.uint64Word(base + 1 + j)
		if err != nil {
			return nil, err
		}
		out[j] = v
	}
	return out, nil
}

func (d abiData) stringWord(i int) (string, error) {
	base, err := d.offsetWord(i)
	if err != nil {
		return "", err
	}
	byteLen, err := d.uint64Word(base)
	if err != nil {
		return "", err
	}
	tailWords := (int(byteLen) + 31) / 32
	if base+1+tailWords > d.words() {
		return "", fmt.Errorf("abi string at word %d truncated", i)
	}
	start := (base + 1) * wordHexLen
	raw := d.hex[start : start+int(byteLen)*2]
	b, err := hex.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("decode abi string at word %d: %w", i, err)
	}
	return string(b), nil
}

// addressFromTopic extracts the address packed into an indexed topic.
func addressFromTopic(topic string) (string, error) {
	raw := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(topic)), "0x")
	if len(raw) != wordHexLen {
		return "", fmt.Errorf("topic length %d, want %d", len(raw), wordHexLen)
	}
	if strings.TrimLeft(raw[:24], "0") != "" {
		return "", fmt.Errorf("topic %q is not an address", topic)
	}
	return "0x" + raw[24:], nil
}

// int64FromTopic extracts a uint256 indexed topic that must fit in int64.
func int64FromTopic(topic string) (int64, error) {
	raw := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(topic)), "0x")
	if len(raw) != wordHexLen {
		return 0, fmt.Errorf("topic length %d, want %d", len(raw), wordHexLen)
	}
	if strings.TrimLeft(raw[:48], "0") != "" {
		return 0, fmt.Errorf("topic %q overflows uint64", topic)
	}
	v, err := strconv.ParseUint(raw[48:], 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse topic %q: %w", topic, err)
	}
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("topic %q overflows int64", topic)
	}
	return int64(v), nil
}
