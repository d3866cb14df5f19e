package pricing

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEthPriceInUSD_NoReferencePair(t *testing.T) {
	p, _ := newTestPricer(t, "")

	res, err := p.EthPriceInUSD(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Equal(decimal.Zero), "got %s", res)
}

func TestEthPriceInUSD_BUSDOnly(t *testing.T) {
	p, _ := newTestPricer(t, `---
storeData:
  - type: pair
    entity:
      id: "0x2dd380f80a33603610daa8e300157506e300d28f"
      token1Price: "10.00"
      reserve0: "100"
`)

	res, err := p.EthPriceInUSD(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Equal(d("10")), "got %s", res)
}

func TestEthPriceInUSD_USDTOnly(t *testing.T) {
	p, _ := newTestPricer(t, `---
storeData:
  - type: pair
    entity:
      id: "0x9656de03021d2ecc6d1620b044087b444b768dde"
      token0Price: "5.00"
      token1Price: "0.2"
      reserve1: "50"
`)

	res, err := p.EthPriceInUSD(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Equal(d("5")), "got %s", res)
}

func TestEthPriceInUSD_TwoPairs(t *testing.T) {
	p, _ := newTestPricer(t, `---
storeData:
  - type: pair
    entity:
      id: "0x2dd380f80a33603610daa8e300157506e300d28f"
      token1Price: "10.00"
      reserve0: "100"
  - type: pair
    entity:
      id: "0x044f032faab3ad26225b95e1c29d164fd1d40d5b"
      token0Price: "5.00"
      reserve1: "50"
`)

	res, err := p.EthPriceInUSD(context.Background())
	require.NoError(t, err)

	resFloat, _ := res.Float64()
	assert.InEpsilon(t, 8.333333, resFloat, 0.0001)
}

func TestEthPriceInUSD_ThreePairs(t *testing.T) {
	p, _ := newTestPricer(t, `---
storeData:
  - type: pair
    entity:
      id: "0x2dd380f80a33603610daa8e300157506e300d28f"
      token1Price: "300"
      reserve0: "100"
  - type: pair
    entity:
      id: "0x044f032faab3ad26225b95e1c29d164fd1d40d5b"
      token0Price: "302"
      reserve1: "50"
  - type: pair
    entity:
      id: "0x9656de03021d2ecc6d1620b044087b444b768dde"
      token0Price: "298"
      reserve1: "50"
`)

	res, err := p.EthPriceInUSD(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Equal(d("300")), "got %s", res)
}

func TestEthPriceInUSD_ThreePairs_WeightsSumToOne(t *testing.T) {
	ctx := context.Background()
	p, kv := newTestPricer(t, `---
storeData:
  - type: pair
    entity:
      id: "0x2dd380f80a33603610daa8e300157506e300d28f"
      token1Price: "301.7"
      reserve0: "1"
  - type: pair
    entity:
      id: "0x044f032faab3ad26225b95e1c29d164fd1d40d5b"
      token0Price: "299.9"
      reserve1: "7"
  - type: pair
    entity:
      id: "0x9656de03021d2ecc6d1620b044087b444b768dde"
      token0Price: "300.2"
      reserve1: "3"
`)

	total := decimal.Zero
	minPrice, maxPrice := decimal.Zero, decimal.Zero
	for i, ref := range ReferenceBasket {
		pair, found, err := kv.GetPair(ctx, ref.Address)
		require.NoError(t, err)
		require.True(t, found)

		total = total.Add(ref.NativeReserve(pair))
		price := ref.StablePrice(pair)
		if i == 0 || price.LessThan(minPrice) {
			minPrice = price
		}
		if i == 0 || price.GreaterThan(maxPrice) {
			maxPrice = price
		}
	}

	weights := decimal.Zero
	for _, ref := range ReferenceBasket {
		pair, _, err := kv.GetPair(ctx, ref.Address)
		require.NoError(t, err)
		weights = weights.Add(ref.NativeReserve(pair).Div(total))
	}
	assert.True(t, weights.Sub(decimal.NewFromInt(1)).Abs().LessThan(d("0.000000000001")), "weights sum to %s", weights)

	res, err := p.EthPriceInUSD(ctx)
	require.NoError(t, err)
	assert.True(t, res.GreaterThanOrEqual(minPrice), "%s below %s", res, minPrice)
	assert.True(t, res.LessThanOrEqual(maxPrice), "%s above %s", res, maxPrice)
}

func TestEthPriceInUSD_ZeroReservesIsAPreconditionViolation(t *testing.T) {
	p, _ := newTestPricer(t, `---
storeData:
  - type: pair
    entity:
      id: "0x2dd380f80a33603610daa8e300157506e300d28f"
      token1Price: "10.00"
      reserve0: "0"
  - type: pair
    entity:
      id: "0x9656de03021d2ecc6d1620b044087b444b768dde"
      token0Price: "5.00"
      reserve1: "0"
`)

	assert.Panics(t, func() {
		_, _ = p.EthPriceInUSD(context.Background())
	})
}

func TestEthPriceInUSD_BackendError(t *testing.T) {
	p := New(failingReader{}, mapLocator{})

	_, err := p.EthPriceInUSD(context.Background())
	assert.ErrorIs(t, err, errBackend)
}
