// Package asset defines asset identities and the canonical pair ordering
// used by the on-chain pool contracts.
package asset

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// DefaultDecimals is the base-unit precision assumed when an asset does not
// declare its own.
const DefaultDecimals uint8 = 9

// idHexLen is the hex length of a 256-bit identifier without the 0x prefix.
const idHexLen = 64

var (
	// ErrIdenticalAssets reports an attempt to order a pair against itself.
	// This is a caller bug, never a user-triggerable condition.
	ErrIdenticalAssets = errors.New("identical assets")

	// ErrInvalidID reports a malformed asset identifier.
	ErrInvalidID = errors.New("invalid asset id")
)

// ID is a 256-bit asset identifier, hex-encoded with a 0x prefix and
// normalized to lower case.
type ID string

// ParseID validates and normalizes a hex asset identifier.
func ParseID(s string) (ID, error) {
	s = strings.ToLower(s)
	if !strings.HasPrefix(s, "0x") || len(s) != idHexLen+2 {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	for _, c := range s[2:] {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", fmt.Errorf("%w: %q", ErrInvalidID, s)
		}
	}
	return ID(s), nil
}

// MustParseID is ParseID for identifiers known to be well formed.
func MustParseID(s string) ID {
	id, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Big returns the identifier's value as an unsigned integer. The zero ID
// maps to zero.
func (id ID) Big() *big.Int {
	v, ok := new(big.Int).SetString(strings.TrimPrefix(string(id), "0x"), 16)
	if !ok {
		return new(big.Int)
	}
	return v
}

func (id ID) String() string { return string(id) }

// Asset couples an on-chain identifier with its display symbol and base-unit
// precision.
type Asset struct {
	ID       ID
	Symbol   string
	Decimals uint8
}

// New builds an Asset, substituting DefaultDecimals when decimals is zero.
func New(id ID, symbol string, decimals uint8) Asset {
	if decimals == 0 {
		decimals = DefaultDecimals
	}
	return Asset{ID: id, Symbol: symbol, Decimals: decimals}
}

// Sort orders two distinct assets canonically: the pool contract stores
// reserves keyed by the numerically smaller identifier first, independent of
// the from/to order a user picked. Callers must re-derive this order before
// every reserve lookup.
func Sort(a, b Asset) (asset0, asset1 Asset, err error) {
	cmp := a.ID.Big().Cmp(b.ID.Big())
	if cmp == 0 {
		return Asset{}, Asset{}, ErrIdenticalAssets
	}
	if cmp < 0 {
		return a, b, nil
	}
	return b, a, nil
}

// Pair is a two-asset pool key held in canonical order.
type Pair struct {
	Asset0 Asset
	Asset1 Asset
}

// NewPair sorts the two assets into a canonical Pair.
func NewPair(a, b Asset) (Pair, error) {
	a0, a1, err := Sort(a, b)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Asset0: a0, Asset1: a1}, nil
}

// IsAsset0 reports whether id occupies the canonical asset0 slot.
func (p Pair) IsAsset0(id ID) bool { return p.Asset0.ID == id }

// Other returns the counterpart of id within the pair.
func (p Pair) Other(id ID) Asset {
	if p.Asset0.ID == id {
		return p.Asset1
	}
	return p.Asset0
}

func (p Pair) String() string {
	return p.Asset0.Symbol + "/" + p.Asset1.Symbol
}
