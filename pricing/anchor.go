package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var one = decimal.NewFromInt(1)

// FindEthPerToken returns the WETH price of a token through the first
// whitelisted token, in Whitelist order, that has a direct pair with it
// holding more than MinimumLiquidityThresholdETH. Zero means unpriced.
func (p *Pricer) FindEthPerToken(ctx context.Context, tokenAddress string) (decimal.Decimal, error) {
	if tokenAddress == WETHAddress {
		return one, nil
	}
	return p.resolveViaAnchors(ctx, tokenAddress, Whitelist)
}

// resolveViaAnchors evaluates anchors strictly in order and returns on the
// first qualifying one.
func (p *Pricer) resolveViaAnchors(ctx context.Context, tokenAddress string, anchors []string) (decimal.Decimal, error) {
	for _, anchor := range anchors {
		price, ok, err := p.anchorPrice(ctx, tokenAddress, anchor)
		if err != nil {
			return decimal.Zero, err
		}
		if ok {
			return price, nil
		}
	}
	return decimal.Zero, nil
}

func (p *Pricer) anchorPrice(ctx context.Context, tokenAddress, anchor string) (decimal.Decimal, bool, error) {
	pairAddress, found, err := p.locator.PairForTokens(ctx, tokenAddress, anchor)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("locating pair for %s and %s: %w", tokenAddress, anchor, err)
	}
	if !found {
		zlog.Debug("pair not found for tokens", zap.String("left", tokenAddress), zap.String("right", anchor))
		return decimal.Zero, false, nil
	}

	pair, found, err := p.graph.GetPair(ctx, pairAddress)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("loading pair %s: %w", pairAddress, err)
	}
	if !found {
		zlog.Debug("located pair not indexed yet", zap.String("pair", pairAddress))
		return decimal.Zero, false, nil
	}

	if !pair.ReserveETH.GreaterThan(MinimumLiquidityThresholdETH) {
		zlog.Debug("pair below anchor liquidity threshold",
			zap.String("pair", pairAddress),
			zap.Stringer("reserve_eth", pair.ReserveETH),
		)
		return decimal.Zero, false, nil
	}

	// price of the other token in ours, times its own WETH price
	var otherPrice decimal.Decimal
	var otherToken string
	switch pair.Side(tokenAddress) {
	case 0:
		otherPrice, otherToken = pair.Token1Price, pair.Token1
	case 1:
		otherPrice, otherToken = pair.Token0Price, pair.Token0
	default:
		zlog.Warn("located pair does not hold token", zap.String("pair", pairAddress), zap.String("token", tokenAddress))
		return decimal.Zero, false, nil
	}

	token, _, err := p.graph.GetToken(ctx, otherToken)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("loading token %s: %w", otherToken, err)
	}

	return otherPrice.Mul(token.DerivedETHOrZero()), true, nil
}
