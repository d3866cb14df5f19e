package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/streamingfast/substreams-pcs-pricing/entity"
	"go.uber.org/zap"
)

// EthPriceInUSD blends the WETH price of the reference basket pools, each
// weighted by its WETH reserve. With a single pool indexed its price is used
// as is, with none the price is zero.
//
// Pools of the basket are created with non-zero reserves, a zero WETH reserve
// total across two or more present pools is not handled.
func (p *Pricer) EthPriceInUSD(ctx context.Context) (decimal.Decimal, error) {
	var present []referencePair
	for _, ref := range ReferenceBasket {
		pair, found, err := p.graph.GetPair(ctx, ref.Address)
		if err != nil {
			return decimal.Zero, fmt.Errorf("loading %s reference pair %s: %w", ref.Symbol, ref.Address, err)
		}
		if !found {
			continue
		}
		present = append(present, referencePair{ref: ref, pair: pair})
	}

	price := weightedEthPrice(present)
	zlog.Debug("computed eth price in usd", zap.Int("reference_pairs", len(present)), zap.Stringer("price", price))
	return price, nil
}

type referencePair struct {
	ref  ReferencePool
	pair *entity.Pair
}

func weightedEthPrice(present []referencePair) decimal.Decimal {
	switch len(present) {
	case 0:
		return decimal.Zero
	case 1:
		return present[0].ref.StablePrice(present[0].pair)
	}

	totalLiquidityETH := decimal.Zero
	for _, rp := range present {
		totalLiquidityETH = totalLiquidityETH.Add(rp.ref.NativeReserve(rp.pair))
	}

	price := decimal.Zero
	for _, rp := range present {
		weight := rp.ref.NativeReserve(rp.pair).Div(totalLiquidityETH)
		price = price.Add(rp.ref.StablePrice(rp.pair).Mul(weight))
	}
	return price
}
