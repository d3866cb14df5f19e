package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/streamingfast/substreams-pcs-pricing/entity"
	"github.com/streamingfast/substreams-pcs-pricing/state"
	"go.uber.org/zap"
)

const (
	pairPrefix   = "pair:"
	tokensPrefix = "tokens:"
	tokenPrefix  = "token:"
	bundleKey    = "bundle:" + entity.BundleID
)

// KVStore keeps the graph in a state.Builder. Each write gets the next
// ordinal so that At can expose the graph as it was at any point of the
// current batch.
type KVStore struct {
	builder *state.Builder
	ordinal uint64
}

func NewKVStore(builder *state.Builder) *KVStore {
	return &KVStore{builder: builder, ordinal: builder.LastOrdinal()}
}

func (s *KVStore) Builder() *state.Builder {
	return s.builder
}

// Ordinal is the ordinal of the last write.
func (s *KVStore) Ordinal() uint64 {
	return s.ordinal
}

// At returns a read-only view of the graph including every write up to ord.
func (s *KVStore) At(ord uint64) *Snapshot {
	return &Snapshot{reader: s.builder, ordinal: ord}
}

func (s *KVStore) nextOrdinal() uint64 {
	s.ordinal++
	return s.ordinal
}

func (s *KVStore) GetPair(ctx context.Context, id string) (*entity.Pair, bool, error) {
	return decodeValue[entity.Pair](s.builder.GetLast(pairPrefix + id))
}

func (s *KVStore) GetToken(ctx context.Context, id string) (*entity.Token, bool, error) {
	return decodeValue[entity.Token](s.builder.GetLast(tokenPrefix + id))
}

func (s *KVStore) GetBundle(ctx context.Context) (*entity.Bundle, bool, error) {
	return decodeValue[entity.Bundle](s.builder.GetLast(bundleKey))
}

func (s *KVStore) PairForTokens(ctx context.Context, tokenA, tokenB string) (string, bool, error) {
	val, found := s.builder.GetLast(tokensPrefix + entity.TokensKey(tokenA, tokenB))
	if !found {
		return "", false, nil
	}
	return val.String(), true, nil
}

func (s *KVStore) SavePair(ctx context.Context, pair *entity.Pair) error {
	data, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("encoding pair %s: %w", pair.ID, err)
	}

	ord := s.nextOrdinal()
	s.builder.SetBytes(ord, pairPrefix+pair.ID, data)
	if pair.Token0 != "" && pair.Token1 != "" {
		s.builder.Set(ord, tokensPrefix+entity.TokensKey(pair.Token0, pair.Token1), pair.ID)
	}
	return nil
}

func (s *KVStore) SaveToken(ctx context.Context, token *entity.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encoding token %s: %w", token.ID, err)
	}
	s.builder.SetBytes(s.nextOrdinal(), tokenPrefix+token.ID, data)
	return nil
}

func (s *KVStore) SaveBundle(ctx context.Context, bundle *entity.Bundle) error {
	data, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("encoding bundle: %w", err)
	}
	s.builder.SetBytes(s.nextOrdinal(), bundleKey, data)
	return nil
}

// PairIDs lists every indexed pair, sorted.
func (s *KVStore) PairIDs() []string {
	keys := s.builder.KeysWithPrefix(pairPrefix)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k[len(pairPrefix):]
	}
	return out
}

// Snapshot is a view of a KVStore pinned at an ordinal.
type Snapshot struct {
	reader  state.Reader
	ordinal uint64
}

func (s *Snapshot) GetPair(ctx context.Context, id string) (*entity.Pair, bool, error) {
	return decodeValue[entity.Pair](s.reader.GetAt(s.ordinal, pairPrefix+id))
}

func (s *Snapshot) GetToken(ctx context.Context, id string) (*entity.Token, bool, error) {
	return decodeValue[entity.Token](s.reader.GetAt(s.ordinal, tokenPrefix+id))
}

func (s *Snapshot) GetBundle(ctx context.Context) (*entity.Bundle, bool, error) {
	return decodeValue[entity.Bundle](s.reader.GetAt(s.ordinal, bundleKey))
}

func (s *Snapshot) PairForTokens(ctx context.Context, tokenA, tokenB string) (string, bool, error) {
	val, found := s.reader.GetAt(s.ordinal, tokensPrefix+entity.TokensKey(tokenA, tokenB))
	if !found {
		return "", false, nil
	}
	return val.String(), true, nil
}

func decodeValue[T any](val state.Value, found bool) (*T, bool, error) {
	if !found {
		return nil, false, nil
	}

	out := new(T)
	if err := json.Unmarshal(val.Value, out); err != nil {
		zlog.Warn("undecodable state value", zap.ByteString("value", val.Value), zap.Error(err))
		return nil, false, fmt.Errorf("decoding %T: %w", out, err)
	}
	return out, true, nil
}
