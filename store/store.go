package store

import (
	"context"

	"github.com/streamingfast/substreams-pcs-pricing/entity"
)

// Reader gives access to the liquidity graph. A record that was not indexed
// yet is reported with found == false and a nil error.
type Reader interface {
	GetPair(ctx context.Context, id string) (pair *entity.Pair, found bool, err error)
	GetToken(ctx context.Context, id string) (token *entity.Token, found bool, err error)
	GetBundle(ctx context.Context) (bundle *entity.Bundle, found bool, err error)
}

// PairLocator answers the single hop question "is there a pair between those
// two tokens", in any order of the arguments.
type PairLocator interface {
	PairForTokens(ctx context.Context, tokenA, tokenB string) (pairID string, found bool, err error)
}

type Writer interface {
	SavePair(ctx context.Context, pair *entity.Pair) error
	SaveToken(ctx context.Context, token *entity.Token) error
	SaveBundle(ctx context.Context, bundle *entity.Bundle) error
}

type Store interface {
	Reader
	PairLocator
	Writer
}
