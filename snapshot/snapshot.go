// Package snapshot loads liquidity graph records described in YAML:
//
//	storeData:
//	  - type: pair
//	    entity:
//	      id: "0x9656de03021d2ecc6d1620b044087b444b768dde"
//	      token0: "0x55d398326f99059ff775485246999027b3197955"
//	      token1: "0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c"
//	      reserve0: "3000"
//	      reserve1: "10"
//	      token0Price: "300"
//	  - type: token
//	    entity:
//	      id: "0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c"
//	      derivedETH: "1"
//	  - type: bundle
//	    entity:
//	      ethPrice: "300"
package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/streamingfast/substreams-pcs-pricing/entity"
	"github.com/streamingfast/substreams-pcs-pricing/store"
	"github.com/streamingfast/substreams-pcs-pricing/tokens"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Snapshot struct {
	StoreData []StoreData `yaml:"storeData"`
}

type StoreData struct {
	Type   string    `yaml:"type"`
	Entity yaml.Node `yaml:"entity"`
}

type Stats struct {
	Pairs   int
	Tokens  int
	Bundles int
}

type rawPair struct {
	ID                     string `yaml:"id"`
	Token0                 string `yaml:"token0"`
	Token1                 string `yaml:"token1"`
	Reserve0               string `yaml:"reserve0"`
	Reserve1               string `yaml:"reserve1"`
	Token0Price            string `yaml:"token0Price"`
	Token1Price            string `yaml:"token1Price"`
	ReserveETH             string `yaml:"reserveETH"`
	ReserveUSD             string `yaml:"reserveUSD"`
	TrackedReserveETH      string `yaml:"trackedReserveETH"`
	LiquidityProviderCount uint64 `yaml:"liquidityProviderCount"`
}

type rawToken struct {
	ID         string `yaml:"id"`
	Symbol     string `yaml:"symbol"`
	Name       string `yaml:"name"`
	Decimals   uint32 `yaml:"decimals"`
	DerivedETH string `yaml:"derivedETH"`
	DerivedUSD string `yaml:"derivedUSD"`
}

type rawBundle struct {
	EthPrice string `yaml:"ethPrice"`
}

func DecodeFile(path string) (*Snapshot, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot file %q: %w", path, err)
	}

	snap, err := Decode(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("decoding snapshot file %q: %w", path, err)
	}
	return snap, nil
}

func Decode(r io.Reader) (*Snapshot, error) {
	snap := &Snapshot{}
	if err := yaml.NewDecoder(r).Decode(snap); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	return snap, nil
}

// Load writes every record of the snapshot, in file order, through w.
func (s *Snapshot) Load(ctx context.Context, w store.Writer) (Stats, error) {
	var stats Stats
	for i, data := range s.StoreData {
		switch data.Type {
		case "pair":
			pair, err := data.pair()
			if err != nil {
				return stats, fmt.Errorf("store data #%d: %w", i, err)
			}
			if err := w.SavePair(ctx, pair); err != nil {
				return stats, fmt.Errorf("saving pair %s: %w", pair.ID, err)
			}
			stats.Pairs++
		case "token":
			token, err := data.token()
			if err != nil {
				return stats, fmt.Errorf("store data #%d: %w", i, err)
			}
			if err := w.SaveToken(ctx, token); err != nil {
				return stats, fmt.Errorf("saving token %s: %w", token.ID, err)
			}
			stats.Tokens++
		case "bundle":
			bundle, err := data.bundle()
			if err != nil {
				return stats, fmt.Errorf("store data #%d: %w", i, err)
			}
			if err := w.SaveBundle(ctx, bundle); err != nil {
				return stats, fmt.Errorf("saving bundle: %w", err)
			}
			stats.Bundles++
		default:
			return stats, fmt.Errorf("store data #%d: unknown type %q", i, data.Type)
		}
	}

	zlog.Info("snapshot loaded", zap.Int("pairs", stats.Pairs), zap.Int("tokens", stats.Tokens), zap.Int("bundles", stats.Bundles))
	return stats, nil
}

func (d StoreData) pair() (*entity.Pair, error) {
	raw := rawPair{}
	if err := d.Entity.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding pair: %w", err)
	}

	id, err := entity.NormalizeAddress(raw.ID)
	if err != nil {
		return nil, fmt.Errorf("pair id: %w", err)
	}

	pair := &entity.Pair{
		ID:                     id,
		LiquidityProviderCount: raw.LiquidityProviderCount,
	}
	if pair.Token0, err = optionalAddress(raw.Token0); err != nil {
		return nil, fmt.Errorf("pair %s token0: %w", id, err)
	}
	if pair.Token1, err = optionalAddress(raw.Token1); err != nil {
		return nil, fmt.Errorf("pair %s token1: %w", id, err)
	}

	fields := []struct {
		name string
		in   string
		out  *decimal.Decimal
	}{
		{"reserve0", raw.Reserve0, &pair.Reserve0},
		{"reserve1", raw.Reserve1, &pair.Reserve1},
		{"token0Price", raw.Token0Price, &pair.Token0Price},
		{"token1Price", raw.Token1Price, &pair.Token1Price},
		{"reserveETH", raw.ReserveETH, &pair.ReserveETH},
		{"reserveUSD", raw.ReserveUSD, &pair.ReserveUSD},
		{"trackedReserveETH", raw.TrackedReserveETH, &pair.TrackedReserveETH},
	}
	for _, f := range fields {
		if *f.out, err = optionalDecimal(f.in); err != nil {
			return nil, fmt.Errorf("pair %s %s: %w", id, f.name, err)
		}
	}

	return pair, nil
}

func (d StoreData) token() (*entity.Token, error) {
	raw := rawToken{}
	if err := d.Entity.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}

	id, err := entity.NormalizeAddress(raw.ID)
	if err != nil {
		return nil, fmt.Errorf("token id: %w", err)
	}

	token := &entity.Token{
		ID:       id,
		Symbol:   raw.Symbol,
		Name:     raw.Name,
		Decimals: raw.Decimals,
	}
	if token.Symbol == "" {
		if def, ok := tokens.FromAddress(id); ok {
			token.Symbol = def.Symbol
			token.Name = def.Name
			token.Decimals = def.Decimals
		}
	}

	if token.DerivedETH, err = optionalDecimal(raw.DerivedETH); err != nil {
		return nil, fmt.Errorf("token %s derivedETH: %w", id, err)
	}
	if token.DerivedUSD, err = optionalDecimal(raw.DerivedUSD); err != nil {
		return nil, fmt.Errorf("token %s derivedUSD: %w", id, err)
	}
	return token, nil
}

func (d StoreData) bundle() (*entity.Bundle, error) {
	raw := rawBundle{}
	if err := d.Entity.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding bundle: %w", err)
	}

	bundle := entity.NewBundle()
	price, err := optionalDecimal(raw.EthPrice)
	if err != nil {
		return nil, fmt.Errorf("bundle ethPrice: %w", err)
	}
	bundle.EthPrice = price
	return bundle, nil
}

func optionalAddress(in string) (string, error) {
	if in == "" {
		return "", nil
	}
	return entity.NormalizeAddress(in)
}

func optionalDecimal(in string) (decimal.Decimal, error) {
	if in == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(in)
}
