package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/streamingfast/substreams-pcs-pricing/entity"
	"github.com/streamingfast/substreams-pcs-pricing/store"
	"go.uber.org/zap"
)

// Schema creates the liquidity graph tables. Decimals are stored as numeric
// and read back as text so no precision is lost on the way.
const Schema = `
CREATE TABLE IF NOT EXISTS pairs (
	id TEXT PRIMARY KEY,
	token0 TEXT NOT NULL,
	token1 TEXT NOT NULL,
	reserve0 NUMERIC NOT NULL DEFAULT 0,
	reserve1 NUMERIC NOT NULL DEFAULT 0,
	token0_price NUMERIC NOT NULL DEFAULT 0,
	token1_price NUMERIC NOT NULL DEFAULT 0,
	reserve_eth NUMERIC NOT NULL DEFAULT 0,
	reserve_usd NUMERIC NOT NULL DEFAULT 0,
	tracked_reserve_eth NUMERIC NOT NULL DEFAULT 0,
	liquidity_provider_count BIGINT NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS pairs_tokens_idx ON pairs (LEAST(token0, token1), GREATEST(token0, token1));

CREATE TABLE IF NOT EXISTS tokens (
	id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL DEFAULT '',
	name TEXT NOT NULL DEFAULT '',
	decimals INTEGER NOT NULL DEFAULT 0,
	derived_eth NUMERIC NOT NULL DEFAULT 0,
	derived_usd NUMERIC NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS bundles (
	id TEXT PRIMARY KEY,
	eth_price NUMERIC NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

var _ store.Store = (*Store)(nil)

// Store keeps the liquidity graph in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	zlog.Info("connected to postgres", zap.String("host", config.ConnConfig.Host), zap.String("database", config.ConnConfig.Database))
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

const selectPair = `
	SELECT id, token0, token1,
		reserve0::text, reserve1::text, token0_price::text, token1_price::text,
		reserve_eth::text, reserve_usd::text, tracked_reserve_eth::text,
		liquidity_provider_count
	FROM pairs WHERE id = $1`

func (s *Store) GetPair(ctx context.Context, id string) (*entity.Pair, bool, error) {
	var (
		pair     entity.Pair
		decimals [7]string
		lpCount  int64
	)
	err := s.pool.QueryRow(ctx, selectPair, id).Scan(
		&pair.ID, &pair.Token0, &pair.Token1,
		&decimals[0], &decimals[1], &decimals[2], &decimals[3],
		&decimals[4], &decimals[5], &decimals[6],
		&lpCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("query pair %s: %w", id, err)
	}

	targets := []*decimal.Decimal{
		&pair.Reserve0, &pair.Reserve1, &pair.Token0Price, &pair.Token1Price,
		&pair.ReserveETH, &pair.ReserveUSD, &pair.TrackedReserveETH,
	}
	if err := parseDecimals(decimals[:], targets); err != nil {
		return nil, false, fmt.Errorf("pair %s: %w", id, err)
	}
	pair.LiquidityProviderCount = uint64(lpCount)

	return &pair, true, nil
}

func (s *Store) GetToken(ctx context.Context, id string) (*entity.Token, bool, error) {
	var (
		token      entity.Token
		derivedETH string
		derivedUSD string
		tokenDecs  int32
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, symbol, name, decimals, derived_eth::text, derived_usd::text
		FROM tokens WHERE id = $1`, id,
	).Scan(&token.ID, &token.Symbol, &token.Name, &tokenDecs, &derivedETH, &derivedUSD)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("query token %s: %w", id, err)
	}

	if err := parseDecimals([]string{derivedETH, derivedUSD}, []*decimal.Decimal{&token.DerivedETH, &token.DerivedUSD}); err != nil {
		return nil, false, fmt.Errorf("token %s: %w", id, err)
	}
	token.Decimals = uint32(tokenDecs)

	return &token, true, nil
}

func (s *Store) GetBundle(ctx context.Context) (*entity.Bundle, bool, error) {
	var ethPrice string
	err := s.pool.QueryRow(ctx, `SELECT eth_price::text FROM bundles WHERE id = $1`, entity.BundleID).Scan(&ethPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("query bundle: %w", err)
	}

	bundle := entity.NewBundle()
	if bundle.EthPrice, err = decimal.NewFromString(ethPrice); err != nil {
		return nil, false, fmt.Errorf("bundle eth price %q: %w", ethPrice, err)
	}
	return bundle, true, nil
}

// PairForTokens finds the pair holding both tokens, whatever their side.
func (s *Store) PairForTokens(ctx context.Context, tokenA, tokenB string) (string, bool, error) {
	low, high := tokenA, tokenB
	if low > high {
		low, high = high, low
	}

	var id string
	err := s.pool.QueryRow(ctx, `
		SELECT id FROM pairs
		WHERE LEAST(token0, token1) = $1 AND GREATEST(token0, token1) = $2
		ORDER BY id LIMIT 1`, low, high,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("query pair for tokens %s and %s: %w", tokenA, tokenB, err)
	}
	return id, true, nil
}

func (s *Store) SavePair(ctx context.Context, pair *entity.Pair) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pairs (
			id, token0, token1, reserve0, reserve1, token0_price, token1_price,
			reserve_eth, reserve_usd, tracked_reserve_eth, liquidity_provider_count, updated_at
		) VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7::numeric, $8::numeric, $9::numeric, $10::numeric, $11, now())
		ON CONFLICT (id) DO UPDATE SET
			token0 = EXCLUDED.token0,
			token1 = EXCLUDED.token1,
			reserve0 = EXCLUDED.reserve0,
			reserve1 = EXCLUDED.reserve1,
			token0_price = EXCLUDED.token0_price,
			token1_price = EXCLUDED.token1_price,
			reserve_eth = EXCLUDED.reserve_eth,
			reserve_usd = EXCLUDED.reserve_usd,
			tracked_reserve_eth = EXCLUDED.tracked_reserve_eth,
			liquidity_provider_count = EXCLUDED.liquidity_provider_count,
			updated_at = now()
	`,
		pair.ID,
		pair.Token0,
		pair.Token1,
		pair.Reserve0.String(),
		pair.Reserve1.String(),
		pair.Token0Price.String(),
		pair.Token1Price.String(),
		pair.ReserveETH.String(),
		pair.ReserveUSD.String(),
		pair.TrackedReserveETH.String(),
		int64(pair.LiquidityProviderCount),
	)
	if err != nil {
		return fmt.Errorf("upsert pair %s: %w", pair.ID, err)
	}
	return nil
}

func (s *Store) SaveToken(ctx context.Context, token *entity.Token) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tokens (id, symbol, name, decimals, derived_eth, derived_usd, updated_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, now())
		ON CONFLICT (id) DO UPDATE SET
			symbol = EXCLUDED.symbol,
			name = EXCLUDED.name,
			decimals = EXCLUDED.decimals,
			derived_eth = EXCLUDED.derived_eth,
			derived_usd = EXCLUDED.derived_usd,
			updated_at = now()
	`,
		token.ID,
		token.Symbol,
		token.Name,
		int32(token.Decimals),
		token.DerivedETH.String(),
		token.DerivedUSD.String(),
	)
	if err != nil {
		return fmt.Errorf("upsert token %s: %w", token.ID, err)
	}
	return nil
}

func (s *Store) SaveBundle(ctx context.Context, bundle *entity.Bundle) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO bundles (id, eth_price, updated_at)
		VALUES ($1, $2::numeric, now())
		ON CONFLICT (id) DO UPDATE SET eth_price = EXCLUDED.eth_price, updated_at = now()
	`, entity.BundleID, bundle.EthPrice.String())
	if err != nil {
		return fmt.Errorf("upsert bundle: %w", err)
	}
	return nil
}

func parseDecimals(in []string, out []*decimal.Decimal) error {
	for i, raw := range in {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("invalid numeric %q: %w", raw, err)
		}
		*out[i] = value
	}
	return nil
}
