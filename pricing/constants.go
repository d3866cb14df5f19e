package pricing

import (
	"github.com/shopspring/decimal"
	"github.com/streamingfast/substreams-pcs-pricing/entity"
)

// WETHAddress is the wrapped native asset every derived price is expressed in.
const WETHAddress = "0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c"

// ReferencePool is a stablecoin/WETH pair of the reference basket. The token
// layout is fixed at pair creation, StableIsToken0 tells which side holds the
// stablecoin.
type ReferencePool struct {
	Symbol         string
	Address        string
	StableIsToken0 bool
}

// NativeReserve is the WETH side reserve of the pool.
func (r ReferencePool) NativeReserve(p *entity.Pair) decimal.Decimal {
	if r.StableIsToken0 {
		return p.Reserve1
	}
	return p.Reserve0
}

// StablePrice is the stored amount of stablecoin for one WETH.
func (r ReferencePool) StablePrice(p *entity.Pair) decimal.Decimal {
	if r.StableIsToken0 {
		return p.Token0Price
	}
	return p.Token1Price
}

var ReferenceBasket = []ReferencePool{
	{Symbol: "BUSD", Address: "0x2dd380f80a33603610daa8e300157506e300d28f", StableIsToken0: false}, // busd is token1, wbnb is token0
	{Symbol: "USDC", Address: "0x044f032faab3ad26225b95e1c29d164fd1d40d5b", StableIsToken0: true},  // usdc is token0, wbnb is token1
	{Symbol: "USDT", Address: "0x9656de03021d2ecc6d1620b044087b444b768dde", StableIsToken0: true},  // usdt is token0, wbnb is token1
}

// Whitelist is a slice because its order is the anchor search priority, it
// must not be turned into a map unless the ordering is kept elsewhere.
var Whitelist = []string{
	"0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c", // WETH
	"0x5fac926bf1e638944bb16fb5b787b5ba4bc85b0a", // JF
	"0xe9e7cea3dedca5984780bafc599bd69add087d56", // BUSD
	"0x55d398326f99059ff775485246999027b3197955", // USDT
	"0x8ac76a51cc950d9822d68b83fe1ad97b32cd580d", // USDC
	"0x1af3f329e8be154074d8769d1ffa4ee058b1dbc3", // DAI
	"0x14016e85a25aeb13065688cafb43044c2ef86784", // TUSD
	"0x2170ed0880ac9a755fd29b2688956bd959f933f8", // ETH
	"0x7130d2a12b9bcbfae4f2634d864a1ee1ce3ead9c", // BTCB
	"0x7083609fce4d1d8dc0c979aab8c869ea2c873402", // DOT
	"0x1d2f0da169ceb9fc7b3144628db156f3f6c60dbe", // XRP
	"0xf8a0bf9cf54bb92f17374d9e9a321e6a111a51bd", // LINK
	"0xbf5140a22578168fd562dccf235e5d43a02ce9b1", // UNI
	"0x947950bcc74888a40ffa2593c5798f11fc9124c4", // SUSHI
	"0x4338665cbb7b2485a8855a139b75d5e34ab0db94", // LTC
	"0x0d8ce2a99bb6e3b7db580ed848240e4a0f9ae153", // FIL
	"0x8ff795a6f4d97e7887c79bea79aba5cc76444adf", // BCH
	"0x85eac5ac2f758618dfa09bdbe0cf174e7d574d5b", // TRX
}

// UntrackedPairs never count towards tracked volume, usually rebase tokens.
var UntrackedPairs = []string{
	"0x9ea3b5b4ec044b70375236a281986106457b20ef",
}

var (
	// MinimumUSDThresholdNewPairs is the liquidity required for pairs with
	// fewer than MinimumLiquidityProviders to count towards tracked volume.
	MinimumUSDThresholdNewPairs = decimal.NewFromInt(40)

	// MinimumLiquidityThresholdETH is the reserve a pair needs for its price
	// to be used as an anchor.
	MinimumLiquidityThresholdETH = decimal.NewFromInt(2)
)

const MinimumLiquidityProviders = 5

var (
	whitelistSet      = map[string]bool{}
	untrackedPairsSet = map[string]bool{}

	two = decimal.NewFromInt(2)
)

func init() {
	for _, addr := range Whitelist {
		whitelistSet[addr] = true
	}
	for _, addr := range UntrackedPairs {
		untrackedPairsSet[addr] = true
	}
}

func IsWhitelisted(token string) bool {
	return whitelistSet[token]
}

func IsUntrackedPair(pairID string) bool {
	return untrackedPairsSet[pairID]
}
