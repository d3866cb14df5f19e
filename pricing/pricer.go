package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/streamingfast/substreams-pcs-pricing/entity"
	"github.com/streamingfast/substreams-pcs-pricing/store"
)

// Pricer derives prices and tracked amounts from the liquidity graph. It never
// writes to graph, RefreshPair writes through the Writer it is given.
type Pricer struct {
	graph   store.Reader
	locator store.PairLocator
}

func New(graph store.Reader, locator store.PairLocator) *Pricer {
	return &Pricer{
		graph:   graph,
		locator: locator,
	}
}

// currentEthPrice is the stored bundle price, zero when no bundle exists yet.
func (p *Pricer) currentEthPrice(ctx context.Context) (decimal.Decimal, error) {
	bundle, found, err := p.graph.GetBundle(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("loading bundle: %w", err)
	}
	if !found {
		return decimal.Zero, nil
	}
	return bundle.EthPrice, nil
}

func tokenID(t *entity.Token) string {
	if t == nil {
		return ""
	}
	return t.ID
}
