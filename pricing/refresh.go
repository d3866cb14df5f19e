package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/streamingfast/substreams-pcs-pricing/entity"
	"github.com/streamingfast/substreams-pcs-pricing/store"
	"github.com/streamingfast/substreams-pcs-pricing/tokens"
	"go.uber.org/zap"
)

var ErrPairNotFound = errors.New("pair not found")

type RefreshResult struct {
	Bundle *entity.Bundle
	Pair   *entity.Pair
	Token0 *entity.Token
	Token1 *entity.Token
}

// RefreshPair recomputes, after a reserve change of pairID, the ETH/USD
// bundle price, the derived prices of both tokens and the pair's ETH and
// tracked reserves, and saves them through w. Each record is saved before the
// next one is computed, so when w writes to the graph the Pricer reads from,
// token1 is priced with the fresh token0 price.
func (p *Pricer) RefreshPair(ctx context.Context, w store.Writer, pairID string) (*RefreshResult, error) {
	pair, found, err := p.graph.GetPair(ctx, pairID)
	if err != nil {
		return nil, fmt.Errorf("loading pair %s: %w", pairID, err)
	}
	if !found {
		zlog.Warn("pair not found for a refresh", zap.String("pair", pairID))
		return nil, fmt.Errorf("%w: %s", ErrPairNotFound, pairID)
	}

	ethPrice, err := p.EthPriceInUSD(ctx)
	if err != nil {
		return nil, err
	}

	bundle := entity.NewBundle()
	bundle.EthPrice = ethPrice
	if err := w.SaveBundle(ctx, bundle); err != nil {
		return nil, fmt.Errorf("saving bundle: %w", err)
	}

	token0, err := p.refreshToken(ctx, w, pair.Token0, ethPrice)
	if err != nil {
		return nil, err
	}
	token1, err := p.refreshToken(ctx, w, pair.Token1, ethPrice)
	if err != nil {
		return nil, err
	}

	// get tracked liquidity - will be 0 if neither is in whitelist
	trackedLiquidityETH := decimal.Zero
	if !ethPrice.IsZero() {
		trackedLiquidityETH = trackedLiquidityUSD(ethPrice, pair.Reserve0, token0, pair.Reserve1, token1).Div(ethPrice)
	}

	pair.TrackedReserveETH = trackedLiquidityETH
	pair.ReserveETH = pair.Reserve0.Mul(token0.DerivedETH).Add(pair.Reserve1.Mul(token1.DerivedETH))
	pair.ReserveUSD = pair.ReserveETH.Mul(ethPrice)

	if err := w.SavePair(ctx, pair); err != nil {
		return nil, fmt.Errorf("saving pair %s: %w", pair.ID, err)
	}

	zlog.Debug("refreshed pair",
		zap.String("pair", pair.ID),
		zap.Stringer("eth_price", ethPrice),
		zap.Stringer("token0_derived_eth", token0.DerivedETH),
		zap.Stringer("token1_derived_eth", token1.DerivedETH),
		zap.Stringer("tracked_reserve_eth", pair.TrackedReserveETH),
	)

	return &RefreshResult{
		Bundle: bundle,
		Pair:   pair,
		Token0: token0,
		Token1: token1,
	}, nil
}

func (p *Pricer) refreshToken(ctx context.Context, w store.Writer, tokenAddress string, ethPrice decimal.Decimal) (*entity.Token, error) {
	token, found, err := p.graph.GetToken(ctx, tokenAddress)
	if err != nil {
		return nil, fmt.Errorf("loading token %s: %w", tokenAddress, err)
	}
	if !found {
		token = newToken(tokenAddress)
	}

	derivedETH, err := p.FindEthPerToken(ctx, tokenAddress)
	if err != nil {
		return nil, fmt.Errorf("finding eth price of %s: %w", tokenAddress, err)
	}

	token.DerivedETH = derivedETH
	token.DerivedUSD = derivedETH.Mul(ethPrice)
	if err := w.SaveToken(ctx, token); err != nil {
		return nil, fmt.Errorf("saving token %s: %w", tokenAddress, err)
	}
	return token, nil
}

func newToken(address string) *entity.Token {
	token := &entity.Token{ID: address}
	if def, ok := tokens.FromAddress(address); ok {
		token.Symbol = def.Symbol
		token.Name = def.Name
		token.Decimals = def.Decimals
	}
	return token
}
