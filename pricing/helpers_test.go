package pricing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/streamingfast/substreams-pcs-pricing/entity"
	"github.com/streamingfast/substreams-pcs-pricing/snapshot"
	"github.com/streamingfast/substreams-pcs-pricing/state"
	"github.com/streamingfast/substreams-pcs-pricing/store"
	"github.com/stretchr/testify/require"
)

const (
	busdToken = "0xe9e7cea3dedca5984780bafc599bd69add087d56"
	usdtToken = "0x55d398326f99059ff775485246999027b3197955"
	usdcToken = "0x8ac76a51cc950d9822d68b83fe1ad97b32cd580d"

	busdWethPair = "0x2dd380f80a33603610daa8e300157506e300d28f"
	usdcWethPair = "0x044f032faab3ad26225b95e1c29d164fd1d40d5b"
	usdtWethPair = "0x9656de03021d2ecc6d1620b044087b444b768dde"

	// not whitelisted
	tinyToken  = "0x1111111111111111111111111111111111111111"
	otherToken = "0x2222222222222222222222222222222222222222"

	tinyWethPair = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	tinyBusdPair = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	tinyUsdtPair = "0xcccccccccccccccccccccccccccccccccccccccc"
)

// newTestStore loads a `storeData:` YAML document in a fresh KV store.
func newTestStore(t *testing.T, storeYaml string) *store.KVStore {
	t.Helper()

	kv := store.NewKVStore(state.New("graph"))
	if strings.TrimSpace(storeYaml) == "" {
		return kv
	}

	snap, err := snapshot.Decode(strings.NewReader(storeYaml))
	require.NoError(t, err)

	_, err = snap.Load(context.Background(), kv)
	require.NoError(t, err)
	return kv
}

func newTestPricer(t *testing.T, storeYaml string) (*Pricer, *store.KVStore) {
	t.Helper()
	kv := newTestStore(t, storeYaml)
	return New(kv, kv), kv
}

func d(in string) decimal.Decimal {
	return decimal.RequireFromString(in)
}

func token(id string, derivedETH string) *entity.Token {
	return &entity.Token{ID: id, DerivedETH: d(derivedETH)}
}

// mapLocator answers pair lookups from a fixed table, regardless of what the
// graph holds.
type mapLocator map[string]string

func (m mapLocator) PairForTokens(ctx context.Context, tokenA, tokenB string) (string, bool, error) {
	id, found := m[entity.TokensKey(tokenA, tokenB)]
	return id, found, nil
}

var errBackend = errors.New("backend unavailable")

type failingReader struct{}

func (failingReader) GetPair(ctx context.Context, id string) (*entity.Pair, bool, error) {
	return nil, false, errBackend
}

func (failingReader) GetToken(ctx context.Context, id string) (*entity.Token, bool, error) {
	return nil, false, errBackend
}

func (failingReader) GetBundle(ctx context.Context) (*entity.Bundle, bool, error) {
	return nil, false, errBackend
}
