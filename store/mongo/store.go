package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/streamingfast/substreams-pcs-pricing/entity"
	"github.com/streamingfast/substreams-pcs-pricing/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	pairsCollection   = "pairs"
	tokensCollection  = "tokens"
	bundlesCollection = "bundles"
)

var _ store.Store = (*Store)(nil)

// Store keeps the liquidity graph in MongoDB, one collection per entity.
// Decimals are kept as strings, BSON doubles would lose precision.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewStore(ctx context.Context, url, databaseName string) (*Store, error) {
	if url == "" {
		return nil, fmt.Errorf("mongo url is required")
	}
	if databaseName == "" {
		return nil, fmt.Errorf("mongo database name is required")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	zlog.Info("connected to mongo", zap.String("database", databaseName))
	return &Store{client: client, db: client.Database(databaseName)}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the unordered token pair index used by PairForTokens.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(pairsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "tokensKey", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("creating tokens key index: %w", err)
	}
	return nil
}

type pairDocument struct {
	ID                     string `bson:"_id"`
	Token0                 string `bson:"token0"`
	Token1                 string `bson:"token1"`
	TokensKey              string `bson:"tokensKey,omitempty"`
	Reserve0               string `bson:"reserve0"`
	Reserve1               string `bson:"reserve1"`
	Token0Price            string `bson:"token0Price"`
	Token1Price            string `bson:"token1Price"`
	ReserveETH             string `bson:"reserveETH"`
	ReserveUSD             string `bson:"reserveUSD"`
	TrackedReserveETH      string `bson:"trackedReserveETH"`
	LiquidityProviderCount int64  `bson:"liquidityProviderCount"`
}

type tokenDocument struct {
	ID         string `bson:"_id"`
	Symbol     string `bson:"symbol"`
	Name       string `bson:"name"`
	Decimals   int32  `bson:"decimals"`
	DerivedETH string `bson:"derivedETH"`
	DerivedUSD string `bson:"derivedUSD"`
}

type bundleDocument struct {
	ID       string `bson:"_id"`
	EthPrice string `bson:"ethPrice"`
}

func (s *Store) GetPair(ctx context.Context, id string) (*entity.Pair, bool, error) {
	doc := pairDocument{}
	found, err := s.findOne(ctx, pairsCollection, bson.M{"_id": id}, &doc)
	if err != nil || !found {
		return nil, false, err
	}

	pair := &entity.Pair{
		ID:                     doc.ID,
		Token0:                 doc.Token0,
		Token1:                 doc.Token1,
		LiquidityProviderCount: uint64(doc.LiquidityProviderCount),
	}
	err = parseDecimals(
		[]string{doc.Reserve0, doc.Reserve1, doc.Token0Price, doc.Token1Price, doc.ReserveETH, doc.ReserveUSD, doc.TrackedReserveETH},
		[]*decimal.Decimal{&pair.Reserve0, &pair.Reserve1, &pair.Token0Price, &pair.Token1Price, &pair.ReserveETH, &pair.ReserveUSD, &pair.TrackedReserveETH},
	)
	if err != nil {
		return nil, false, fmt.Errorf("pair %s: %w", id, err)
	}
	return pair, true, nil
}

func (s *Store) GetToken(ctx context.Context, id string) (*entity.Token, bool, error) {
	doc := tokenDocument{}
	found, err := s.findOne(ctx, tokensCollection, bson.M{"_id": id}, &doc)
	if err != nil || !found {
		return nil, false, err
	}

	token := &entity.Token{
		ID:       doc.ID,
		Symbol:   doc.Symbol,
		Name:     doc.Name,
		Decimals: uint32(doc.Decimals),
	}
	if err := parseDecimals([]string{doc.DerivedETH, doc.DerivedUSD}, []*decimal.Decimal{&token.DerivedETH, &token.DerivedUSD}); err != nil {
		return nil, false, fmt.Errorf("token %s: %w", id, err)
	}
	return token, true, nil
}

func (s *Store) GetBundle(ctx context.Context) (*entity.Bundle, bool, error) {
	doc := bundleDocument{}
	found, err := s.findOne(ctx, bundlesCollection, bson.M{"_id": entity.BundleID}, &doc)
	if err != nil || !found {
		return nil, false, err
	}

	bundle := entity.NewBundle()
	if err := parseDecimals([]string{doc.EthPrice}, []*decimal.Decimal{&bundle.EthPrice}); err != nil {
		return nil, false, fmt.Errorf("bundle: %w", err)
	}
	return bundle, true, nil
}

func (s *Store) PairForTokens(ctx context.Context, tokenA, tokenB string) (string, bool, error) {
	doc := pairDocument{}
	found, err := s.findOne(ctx, pairsCollection, bson.M{"tokensKey": entity.TokensKey(tokenA, tokenB)}, &doc)
	if err != nil || !found {
		return "", false, err
	}
	return doc.ID, true, nil
}

func (s *Store) SavePair(ctx context.Context, pair *entity.Pair) error {
	doc := pairDocument{
		ID:                     pair.ID,
		Token0:                 pair.Token0,
		Token1:                 pair.Token1,
		Reserve0:               pair.Reserve0.String(),
		Reserve1:               pair.Reserve1.String(),
		Token0Price:            pair.Token0Price.String(),
		Token1Price:            pair.Token1Price.String(),
		ReserveETH:             pair.ReserveETH.String(),
		ReserveUSD:             pair.ReserveUSD.String(),
		TrackedReserveETH:      pair.TrackedReserveETH.String(),
		LiquidityProviderCount: int64(pair.LiquidityProviderCount),
	}
	if pair.Token0 != "" && pair.Token1 != "" {
		doc.TokensKey = entity.TokensKey(pair.Token0, pair.Token1)
	}
	return s.replace(ctx, pairsCollection, pair.ID, doc)
}

func (s *Store) SaveToken(ctx context.Context, token *entity.Token) error {
	return s.replace(ctx, tokensCollection, token.ID, tokenDocument{
		ID:         token.ID,
		Symbol:     token.Symbol,
		Name:       token.Name,
		Decimals:   int32(token.Decimals),
		DerivedETH: token.DerivedETH.String(),
		DerivedUSD: token.DerivedUSD.String(),
	})
}

func (s *Store) SaveBundle(ctx context.Context, bundle *entity.Bundle) error {
	return s.replace(ctx, bundlesCollection, entity.BundleID, bundleDocument{
		ID:       entity.BundleID,
		EthPrice: bundle.EthPrice.String(),
	})
}

func (s *Store) findOne(ctx context.Context, collectionName string, filter bson.M, out interface{}) (bool, error) {
	err := s.db.Collection(collectionName).FindOne(ctx, filter).Decode(out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("find in %s: %w", collectionName, err)
	}
	return true, nil
}

func (s *Store) replace(ctx context.Context, collectionName string, id string, doc interface{}) error {
	_, err := s.db.Collection(collectionName).ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("saving %s in %s: %w", id, collectionName, err)
	}
	return nil
}

func parseDecimals(in []string, out []*decimal.Decimal) error {
	for i, raw := range in {
		if raw == "" {
			*out[i] = decimal.Zero
			continue
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("invalid decimal %q: %w", raw, err)
		}
		*out[i] = value
	}
	return nil
}
