package pricing

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/streamingfast/substreams-pcs-pricing/entity"
)

// TrackedVolumeUSD returns the USD value of a swap that may count towards
// volume statistics. Only whitelisted legs are valued, pairs in
// UntrackedPairs never count, and pairs with fewer than
// MinimumLiquidityProviders need MinimumUSDThresholdNewPairs of liquidity.
func (p *Pricer) TrackedVolumeUSD(ctx context.Context, amount0 decimal.Decimal, token0 *entity.Token, amount1 decimal.Decimal, token1 *entity.Token, pair *entity.Pair) (decimal.Decimal, error) {
	ethPrice, err := p.currentEthPrice(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return trackedVolumeUSD(ethPrice, amount0, token0, amount1, token1, pair), nil
}

// TrackedLiquidityUSD returns the USD value of reserves that may count
// towards liquidity statistics. A single whitelisted side is doubled.
func (p *Pricer) TrackedLiquidityUSD(ctx context.Context, amount0 decimal.Decimal, token0 *entity.Token, amount1 decimal.Decimal, token1 *entity.Token) (decimal.Decimal, error) {
	ethPrice, err := p.currentEthPrice(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return trackedLiquidityUSD(ethPrice, amount0, token0, amount1, token1), nil
}

func trackedVolumeUSD(ethPrice decimal.Decimal, amount0 decimal.Decimal, token0 *entity.Token, amount1 decimal.Decimal, token1 *entity.Token, pair *entity.Pair) decimal.Decimal {
	// dont count tracked volume on these pairs - usually rebase tokens
	if IsUntrackedPair(pair.ID) {
		return decimal.Zero
	}

	price0 := token0.DerivedETHOrZero().Mul(ethPrice)
	price1 := token1.DerivedETHOrZero().Mul(ethPrice)

	token0Whitelisted := IsWhitelisted(tokenID(token0))
	token1Whitelisted := IsWhitelisted(tokenID(token1))

	// if less than 5 LPs, require high minimum reserve amount or return 0
	if pair.LiquidityProviderCount < MinimumLiquidityProviders {
		reserve0USD := pair.Reserve0.Mul(price0)
		reserve1USD := pair.Reserve1.Mul(price1)

		switch {
		case token0Whitelisted && token1Whitelisted:
			if reserve0USD.Add(reserve1USD).LessThan(MinimumUSDThresholdNewPairs) {
				return decimal.Zero
			}
		case token0Whitelisted:
			if reserve0USD.Mul(two).LessThan(MinimumUSDThresholdNewPairs) {
				return decimal.Zero
			}
		case token1Whitelisted:
			if reserve1USD.Mul(two).LessThan(MinimumUSDThresholdNewPairs) {
				return decimal.Zero
			}
		}
	}

	switch {
	case token0Whitelisted && token1Whitelisted:
		// both are whitelist tokens, take average of both amounts
		return amount0.Mul(price0).Add(amount1.Mul(price1)).Div(two)
	case token0Whitelisted:
		// take full value of the whitelisted token amount
		return amount0.Mul(price0)
	case token1Whitelisted:
		return amount1.Mul(price1)
	}

	// neither token is on white list, tracked volume is 0
	return decimal.Zero
}

func trackedLiquidityUSD(ethPrice decimal.Decimal, amount0 decimal.Decimal, token0 *entity.Token, amount1 decimal.Decimal, token1 *entity.Token) decimal.Decimal {
	price0 := token0.DerivedETHOrZero().Mul(ethPrice)
	price1 := token1.DerivedETHOrZero().Mul(ethPrice)

	token0Whitelisted := IsWhitelisted(tokenID(token0))
	token1Whitelisted := IsWhitelisted(tokenID(token1))

	switch {
	case token0Whitelisted && token1Whitelisted:
		return amount0.Mul(price0).Add(amount1.Mul(price1))
	case token0Whitelisted:
		// take double value of the whitelisted token amount
		return amount0.Mul(price0).Mul(two)
	case token1Whitelisted:
		return amount1.Mul(price1).Mul(two)
	}

	return decimal.Zero
}
