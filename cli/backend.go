package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/streamingfast/substreams-pcs-pricing/chain"
	"github.com/streamingfast/substreams-pcs-pricing/config"
	"github.com/streamingfast/substreams-pcs-pricing/pricing"
	"github.com/streamingfast/substreams-pcs-pricing/state"
	"github.com/streamingfast/substreams-pcs-pricing/store"
	"github.com/streamingfast/substreams-pcs-pricing/store/mongo"
	"github.com/streamingfast/substreams-pcs-pricing/store/postgres"
	"go.uber.org/zap"
)

// backend is the opened liquidity graph with the pricer reading from it.
type backend struct {
	config config.Config
	store  store.Store
	pricer *pricing.Pricer

	// kv is set with the kv backend only, its state is written back on commit
	kv      *store.KVStore
	closers []func(ctx context.Context) error
}

func openBackend(cmd *cobra.Command) (*backend, error) {
	ctx := cmd.Context()

	cfg, err := config.Load(mustGetString(cmd, "config"), cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	b := &backend{config: cfg}
	switch cfg.Backend {
	case config.BackendKV:
		builder := state.New("graph")
		if err := builder.ReadState(cfg.StateFile); err != nil {
			return nil, err
		}
		b.kv = store.NewKVStore(builder)
		b.store = b.kv
	case config.BackendPostgres:
		pg, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, fmt.Errorf("creating postgres store: %w", err)
		}
		b.closers = append(b.closers, func(context.Context) error { pg.Close(); return nil })
		if err := pg.EnsureSchema(ctx); err != nil {
			b.close(ctx)
			return nil, err
		}
		b.store = pg
	case config.BackendMongo:
		mg, err := mongo.NewStore(ctx, cfg.MongoURL, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("creating mongo store: %w", err)
		}
		b.closers = append(b.closers, mg.Close)
		if err := mg.EnsureIndexes(ctx); err != nil {
			b.close(ctx)
			return nil, err
		}
		b.store = mg
	}

	var locator store.PairLocator = b.store
	if cfg.UsesChainLocator() {
		factory, err := chain.Dial(ctx, cfg.RPCEndpoint, cfg.FactoryAddress)
		if err != nil {
			b.close(ctx)
			return nil, fmt.Errorf("setting up pair locator: %w", err)
		}
		b.closers = append(b.closers, func(context.Context) error { factory.Close(); return nil })
		locator = factory
	}

	b.pricer = pricing.New(b.store, locator)

	zlog.Debug("backend opened",
		zap.String("backend", cfg.Backend),
		zap.Bool("chain_locator", cfg.UsesChainLocator()),
	)
	return b, nil
}

// commit persists the kv state file, other backends write through.
func (b *backend) commit() error {
	if b.kv == nil {
		return nil
	}
	if err := b.kv.Builder().WriteState(b.config.StateFile); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	zlog.Info("state saved", zap.String("path", b.config.StateFile))
	return nil
}

func (b *backend) close(ctx context.Context) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil {
			zlog.Warn("closing backend", zap.Error(err))
		}
	}
}
