package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/streamingfast/substreams-pcs-pricing/pricing"
	"github.com/streamingfast/substreams-pcs-pricing/state"
	"github.com/streamingfast/substreams-pcs-pricing/subscription"
	"go.uber.org/zap"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh [<pair>]",
	Short: "Recompute the eth price, the token prices and the tracked reserves of a pair",
	Long: `Recompute the eth price, the derived prices of both tokens and the eth and
tracked reserves of a pair, then save them. With --all and the kv backend,
every indexed pair is refreshed in order.`,
	RunE: runRefresh,
	Args: cobra.MaximumNArgs(1),
}

func init() {
	refreshCmd.Flags().Bool("all", false, "Refresh every pair of the kv backend")
	refreshCmd.Flags().Bool("print-deltas", false, "Print the state deltas of each refresh, kv backend only")

	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	all := mustGetBool(cmd, "all")
	if all == (len(args) == 1) {
		return fmt.Errorf("expecting either a pair argument or --all")
	}

	var pairIDs []string
	if len(args) == 1 {
		pairID, err := addressArg("pair", args[0])
		if err != nil {
			return err
		}
		pairIDs = append(pairIDs, pairID)
	}

	b, err := openBackend(cmd)
	if err != nil {
		return err
	}
	defer b.close(ctx)

	printDeltas := mustGetBool(cmd, "print-deltas")
	if (all || printDeltas) && b.kv == nil {
		return fmt.Errorf("--all and --print-deltas are only supported by the kv backend, got %q", b.config.Backend)
	}
	if all {
		pairIDs = b.kv.PairIDs()
	}

	out := cmd.OutOrStdout()

	var deltas *deltaPrinter
	if printDeltas {
		if deltas, err = newDeltaPrinter(ctx, b.kv.Builder(), out); err != nil {
			return err
		}
	}

	var results []*pricing.RefreshResult
	for _, pairID := range pairIDs {
		res, err := b.pricer.RefreshPair(ctx, b.store, pairID)
		if err != nil {
			if deltas != nil {
				deltas.stop()
			}
			return fmt.Errorf("refreshing pair %s: %w", pairID, err)
		}
		results = append(results, res)

		if deltas != nil {
			if err := deltas.publish(); err != nil {
				deltas.stop()
				return err
			}
		}
	}
	if deltas != nil {
		deltas.stop()
	}

	for _, res := range results {
		fmt.Fprintf(out, "pair %s: eth price %s, %s derived eth %s, %s derived eth %s, tracked reserve eth %s\n",
			res.Pair.ID,
			res.Bundle.EthPrice,
			res.Token0.ID, res.Token0.DerivedETH,
			res.Token1.ID, res.Token1.DerivedETH,
			res.Pair.TrackedReserveETH,
		)
	}

	zlog.Info("pairs refreshed", zap.Int("count", len(pairIDs)))
	return b.commit()
}

// deltaPrinter streams the deltas of a builder to w through a subscription
// hub, the builder is flushed after each publish.
type deltaPrinter struct {
	builder *state.Builder
	hub     *subscription.Hub
	done    chan struct{}
}

func newDeltaPrinter(ctx context.Context, builder *state.Builder, w io.Writer) (*deltaPrinter, error) {
	hub := subscription.NewHub()
	if err := hub.RegisterTopic(builder.Name); err != nil {
		return nil, err
	}

	sub := subscription.NewSubscriber()
	if err := hub.Subscribe(sub, builder.Name); err != nil {
		return nil, err
	}

	p := &deltaPrinter{builder: builder, hub: hub, done: make(chan struct{})}
	go func() {
		defer close(p.done)
		for {
			delta, err := sub.Next(ctx)
			if err != nil {
				if err != io.EOF {
					zlog.Warn("delta subscriber stopped", zap.Error(err))
				}
				return
			}
			state.WriteDelta(w, delta)
		}
	}()
	return p, nil
}

func (p *deltaPrinter) publish() error {
	if err := p.hub.BroadcastDeltas(p.builder.Name, p.builder.Deltas); err != nil {
		return fmt.Errorf("broadcasting deltas of %s: %w", p.builder.Name, err)
	}
	p.builder.Flush()
	return nil
}

// stop waits for every published delta to be written.
func (p *deltaPrinter) stop() {
	p.hub.Close()
	<-p.done
}
