package chain

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/streamingfast/substreams-pcs-pricing/entity"
	"github.com/streamingfast/substreams-pcs-pricing/store"
	"go.uber.org/zap"
)

const factoryGetPairABIJSON = `[
  {"inputs": [{"internalType": "address", "name": "", "type": "address"}, {"internalType": "address", "name": "", "type": "address"}], "name": "getPair", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"}
]`

var (
	factoryABI     abi.ABI
	factoryABIOnce sync.Once
	factoryABIErr  error
)

func getFactoryABI() (abi.ABI, error) {
	factoryABIOnce.Do(func() {
		factoryABI, factoryABIErr = abi.JSON(strings.NewReader(factoryGetPairABIJSON))
	})
	return factoryABI, factoryABIErr
}

var _ store.PairLocator = (*FactoryLocator)(nil)

// FactoryLocator answers pair lookups with the factory getPair view. Pair
// addresses never change once created, so found pairs are cached; misses
// are not since the pair may be created later.
type FactoryLocator struct {
	caller    ethereum.ContractCaller
	factory   common.Address
	rpcClient *rpc.Client

	mu    sync.RWMutex
	pairs map[string]string
}

func NewFactoryLocator(caller ethereum.ContractCaller, factoryAddress string) (*FactoryLocator, error) {
	if !common.IsHexAddress(factoryAddress) {
		return nil, fmt.Errorf("invalid factory address %q", factoryAddress)
	}

	return &FactoryLocator{
		caller:  caller,
		factory: common.HexToAddress(factoryAddress),
		pairs:   make(map[string]string),
	}, nil
}

// Dial connects to a JSON-RPC endpoint and returns a locator querying the
// given factory through it.
func Dial(ctx context.Context, rpcURL string, factoryAddress string) (*FactoryLocator, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc %s: %w", rpcURL, err)
	}

	locator, err := NewFactoryLocator(ethclient.NewClient(rpcClient), factoryAddress)
	if err != nil {
		rpcClient.Close()
		return nil, err
	}
	locator.rpcClient = rpcClient
	return locator, nil
}

func (l *FactoryLocator) Close() {
	if l.rpcClient != nil {
		l.rpcClient.Close()
	}
}

func (l *FactoryLocator) PairForTokens(ctx context.Context, tokenA, tokenB string) (string, bool, error) {
	if !common.IsHexAddress(tokenA) || !common.IsHexAddress(tokenB) {
		return "", false, fmt.Errorf("invalid token address %q or %q", tokenA, tokenB)
	}

	key := cacheKey(tokenA, tokenB)
	l.mu.RLock()
	pairID, ok := l.pairs[key]
	l.mu.RUnlock()
	if ok {
		return pairID, true, nil
	}

	pair, err := l.getPair(ctx, common.HexToAddress(tokenA), common.HexToAddress(tokenB))
	if err != nil {
		return "", false, err
	}
	if pair == (common.Address{}) {
		return "", false, nil
	}

	pairID = strings.ToLower(pair.Hex())
	l.mu.Lock()
	l.pairs[key] = pairID
	l.mu.Unlock()

	zlog.Debug("located pair on chain", zap.String("left", tokenA), zap.String("right", tokenB), zap.String("pair", pairID))
	return pairID, true, nil
}

func (l *FactoryLocator) getPair(ctx context.Context, tokenA, tokenB common.Address) (common.Address, error) {
	parsed, err := getFactoryABI()
	if err != nil {
		return common.Address{}, err
	}

	data, err := parsed.Pack("getPair", tokenA, tokenB)
	if err != nil {
		return common.Address{}, fmt.Errorf("pack getPair: %w", err)
	}

	msg := ethereum.CallMsg{To: &l.factory, Data: data}
	resp, err := l.caller.CallContract(ctx, msg, nil)
	if err != nil {
		return common.Address{}, fmt.Errorf("call getPair: %w", err)
	}

	values, err := parsed.Unpack("getPair", resp)
	if err != nil {
		return common.Address{}, fmt.Errorf("unpack getPair: %w", err)
	}
	if len(values) != 1 {
		return common.Address{}, fmt.Errorf("getPair return size %d", len(values))
	}
	pair, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("getPair unexpected type %T", values[0])
	}
	return pair, nil
}

func cacheKey(tokenA, tokenB string) string {
	return entity.TokensKey(strings.ToLower(tokenA), strings.ToLower(tokenB))
}
