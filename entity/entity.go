package entity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/streamingfast/eth-go"
)

// BundleID is the fixed identifier of the singleton Bundle row.
const BundleID = "1"

var ErrInvalidAddress = errors.New("invalid address")

// Pair is the state of a liquidity pool as indexed by the pipeline.
// Token0Price is the amount of token0 for one token1 (reserve0/reserve1),
// Token1Price the amount of token1 for one token0 (reserve1/reserve0).
type Pair struct {
	ID     string `json:"id"`
	Token0 string `json:"token0"`
	Token1 string `json:"token1"`

	Reserve0    decimal.Decimal `json:"reserve0"`
	Reserve1    decimal.Decimal `json:"reserve1"`
	Token0Price decimal.Decimal `json:"token0Price"`
	Token1Price decimal.Decimal `json:"token1Price"`

	ReserveETH        decimal.Decimal `json:"reserveETH"`
	ReserveUSD        decimal.Decimal `json:"reserveUSD"`
	TrackedReserveETH decimal.Decimal `json:"trackedReserveETH"`

	LiquidityProviderCount uint64 `json:"liquidityProviderCount"`
}

// Side returns 0 or 1 depending on which side of the pair token sits, -1 when
// the token is not part of the pair.
func (p *Pair) Side(token string) int {
	switch token {
	case p.Token0:
		return 0
	case p.Token1:
		return 1
	}
	return -1
}

type Token struct {
	ID       string `json:"id"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint32 `json:"decimals"`

	DerivedETH decimal.Decimal `json:"derivedETH"`
	DerivedUSD decimal.Decimal `json:"derivedUSD"`
}

// DerivedETHOrZero is nil-safe, an absent token is unpriced.
func (t *Token) DerivedETHOrZero() decimal.Decimal {
	if t == nil {
		return decimal.Zero
	}
	return t.DerivedETH
}

type Bundle struct {
	ID       string          `json:"id"`
	EthPrice decimal.Decimal `json:"ethPrice"`
}

func NewBundle() *Bundle {
	return &Bundle{ID: BundleID}
}

// NormalizeAddress returns the canonical lowercase 0x-prefixed form of a
// 20 bytes hex address.
func NormalizeAddress(in string) (string, error) {
	addr, err := eth.NewAddress(strings.TrimSpace(in))
	if err != nil {
		return "", fmt.Errorf("%w %q: %s", ErrInvalidAddress, in, err)
	}
	if len(addr) != 20 {
		return "", fmt.Errorf("%w %q: expected 20 bytes, got %d", ErrInvalidAddress, in, len(addr))
	}
	return addr.Pretty(), nil
}

func MustNormalizeAddress(in string) string {
	out, err := NormalizeAddress(in)
	if err != nil {
		panic(err)
	}
	return out
}

// TokensKey is the lookup key of a pair by its two tokens, independent of
// the order in which they are given.
func TokensKey(tokenA, tokenB string) string {
	if tokenA > tokenB {
		return tokenB + ":" + tokenA
	}
	return tokenA + ":" + tokenB
}
