// Package tokens holds the static metadata of tokens whose contracts do not
// answer the ERC20 metadata calls properly.
package tokens

type Definition struct {
	Address  string
	Symbol   string
	Name     string
	Decimals uint32
}

var staticDefinitions = []Definition{
	{Address: "0x5fac926bf1e638944bb16fb5b787b5ba4bc85b0a", Symbol: "JF", Name: "Jswap Finance Token", Decimals: 18},
	{Address: "0xe9e7cea3dedca5984780bafc599bd69add087d56", Symbol: "BUSD", Name: "BUSD", Decimals: 18},
	{Address: "0x7130d2a12b9bcbfae4f2634d864a1ee1ce3ead9c", Symbol: "BTCB", Name: "BTCB", Decimals: 18},
	{Address: "0x2170ed0880ac9a755fd29b2688956bd959f933f8", Symbol: "ETH", Name: "ETH", Decimals: 18},
	{Address: "0x55d398326f99059ff775485246999027b3197955", Symbol: "USDT", Name: "USDT", Decimals: 18},
	{Address: "0x1af3f329e8be154074d8769d1ffa4ee058b1dbc3", Symbol: "DAI", Name: "DAI", Decimals: 18},
	{Address: "0x8ac76a51cc950d9822d68b83fe1ad97b32cd580d", Symbol: "USDC", Name: "USDC", Decimals: 18},
}

var byAddress = map[string]Definition{}

func init() {
	for _, def := range staticDefinitions {
		byAddress[def.Address] = def
	}
}

// FromAddress looks up a static definition by lowercase address.
func FromAddress(address string) (Definition, bool) {
	def, ok := byAddress[address]
	return def, ok
}

// StaticDefinitions returns a copy of every static definition.
func StaticDefinitions() []Definition {
	out := make([]Definition, len(staticDefinitions))
	copy(out, staticDefinitions)
	return out
}
