package pricing

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindEthPerToken_WETH(t *testing.T) {
	p, _ := newTestPricer(t, "")

	res, err := p.FindEthPerToken(context.Background(), WETHAddress)
	require.NoError(t, err)
	assert.True(t, res.Equal(decimal.NewFromInt(1)), "got %s", res)
}

func TestFindEthPerToken(t *testing.T) {
	tests := []struct {
		name      string
		storeYaml string
		token     string
		expect    string
	}{
		{
			name:   "no anchor pair",
			token:  tinyToken,
			expect: "0",
		},
		{
			name: "direct weth pair with token as token0",
			storeYaml: `---
storeData:
  - type: pair
    entity:
      id: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
      token0: "0x1111111111111111111111111111111111111111"
      token1: "0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c"
      token0Price: "2"
      token1Price: "0.5"
      reserveETH: "10"
  - type: token
    entity:
      id: "0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c"
      derivedETH: "1"
`,
			token:  tinyToken,
			expect: "0.5",
		},
		{
			name: "direct weth pair with token as token1",
			storeYaml: `---
storeData:
  - type: pair
    entity:
      id: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
      token0: "0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c"
      token1: "0x1111111111111111111111111111111111111111"
      token0Price: "0.25"
      token1Price: "4"
      reserveETH: "10"
  - type: token
    entity:
      id: "0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c"
      derivedETH: "1"
`,
			token:  tinyToken,
			expect: "0.25",
		},
		{
			name: "reserve exactly at the threshold is skipped",
			storeYaml: `---
storeData:
  - type: pair
    entity:
      id: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
      token0: "0x1111111111111111111111111111111111111111"
      token1: "0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c"
      token1Price: "0.5"
      reserveETH: "2"
  - type: token
    entity:
      id: "0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c"
      derivedETH: "1"
`,
			token:  tinyToken,
			expect: "0",
		},
		{
			name: "whitelist order wins over deeper liquidity",
			storeYaml: `---
storeData:
  - type: pair
    entity:
      id: "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
      token0: "0x1111111111111111111111111111111111111111"
      token1: "0xe9e7cea3dedca5984780bafc599bd69add087d56"
      token1Price: "2"
      reserveETH: "5"
  - type: pair
    entity:
      id: "0xcccccccccccccccccccccccccccccccccccccccc"
      token0: "0x1111111111111111111111111111111111111111"
      token1: "0x55d398326f99059ff775485246999027b3197955"
      token1Price: "3"
      reserveETH: "1000"
  - type: token
    entity:
      id: "0xe9e7cea3dedca5984780bafc599bd69add087d56"
      derivedETH: "0.0033"
  - type: token
    entity:
      id: "0x55d398326f99059ff775485246999027b3197955"
      derivedETH: "0.0034"
`,
			token:  tinyToken,
			expect: "0.0066",
		},
		{
			name: "shallow earlier anchor falls through to next one",
			storeYaml: `---
storeData:
  - type: pair
    entity:
      id: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
      token0: "0x1111111111111111111111111111111111111111"
      token1: "0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c"
      token1Price: "0.5"
      reserveETH: "1.5"
  - type: pair
    entity:
      id: "0xcccccccccccccccccccccccccccccccccccccccc"
      token0: "0x1111111111111111111111111111111111111111"
      token1: "0x55d398326f99059ff775485246999027b3197955"
      token1Price: "3"
      reserveETH: "1000"
  - type: token
    entity:
      id: "0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c"
      derivedETH: "1"
  - type: token
    entity:
      id: "0x55d398326f99059ff775485246999027b3197955"
      derivedETH: "0.0034"
`,
			token:  tinyToken,
			expect: "0.0102",
		},
		{
			name: "qualifying anchor without a token record prices at zero",
			storeYaml: `---
storeData:
  - type: pair
    entity:
      id: "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
      token0: "0x1111111111111111111111111111111111111111"
      token1: "0xe9e7cea3dedca5984780bafc599bd69add087d56"
      token1Price: "2"
      reserveETH: "5"
  - type: pair
    entity:
      id: "0xcccccccccccccccccccccccccccccccccccccccc"
      token0: "0x1111111111111111111111111111111111111111"
      token1: "0x55d398326f99059ff775485246999027b3197955"
      token1Price: "3"
      reserveETH: "1000"
  - type: token
    entity:
      id: "0x55d398326f99059ff775485246999027b3197955"
      derivedETH: "0.0034"
`,
			token:  tinyToken,
			expect: "0",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p, _ := newTestPricer(t, test.storeYaml)

			res, err := p.FindEthPerToken(context.Background(), test.token)
			require.NoError(t, err)
			assert.True(t, res.Equal(d(test.expect)), "expected %s, got %s", test.expect, res)

			again, err := p.FindEthPerToken(context.Background(), test.token)
			require.NoError(t, err)
			assert.True(t, res.Equal(again))
		})
	}
}

func TestFindEthPerToken_LocatedPairNotIndexed(t *testing.T) {
	kv := newTestStore(t, `---
storeData:
  - type: pair
    entity:
      id: "0xcccccccccccccccccccccccccccccccccccccccc"
      token0: "0x1111111111111111111111111111111111111111"
      token1: "0x55d398326f99059ff775485246999027b3197955"
      token1Price: "3"
      reserveETH: "1000"
  - type: token
    entity:
      id: "0x55d398326f99059ff775485246999027b3197955"
      derivedETH: "0.0034"
`)
	locator := mapLocator{
		"0x1111111111111111111111111111111111111111:0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c": tinyWethPair,
		"0x1111111111111111111111111111111111111111:0x55d398326f99059ff775485246999027b3197955": tinyUsdtPair,
	}
	p := New(kv, locator)

	res, err := p.FindEthPerToken(context.Background(), tinyToken)
	require.NoError(t, err)
	assert.True(t, res.Equal(d("0.0102")), "got %s", res)
}

func TestFindEthPerToken_LocatedPairWithoutToken(t *testing.T) {
	kv := newTestStore(t, `---
storeData:
  - type: pair
    entity:
      id: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
      token0: "0x2222222222222222222222222222222222222222"
      token1: "0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c"
      token1Price: "0.5"
      reserveETH: "10"
`)
	p := New(kv, mapLocator{
		"0x1111111111111111111111111111111111111111:0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c": tinyWethPair,
	})

	res, err := p.FindEthPerToken(context.Background(), tinyToken)
	require.NoError(t, err)
	assert.True(t, res.IsZero(), "got %s", res)
}

func TestFindEthPerToken_BackendError(t *testing.T) {
	p := New(failingReader{}, mapLocator{
		"0x1111111111111111111111111111111111111111:0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c": tinyWethPair,
	})

	_, err := p.FindEthPerToken(context.Background(), tinyToken)
	assert.ErrorIs(t, err, errBackend)
}
