package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/streamingfast/substreams-pcs-pricing/entity"
	"github.com/streamingfast/substreams-pcs-pricing/pricing"
)

var trackedVolumeCmd = &cobra.Command{
	Use:   "tracked-volume <pair> <amount0> <amount1>",
	Short: "Print the USD amount of a swap on pair that counts towards tracked volume",
	RunE:  runTrackedVolume,
	Args:  cobra.ExactArgs(3),
}

var trackedLiquidityCmd = &cobra.Command{
	Use:   "tracked-liquidity <pair>",
	Short: "Print the USD amount of the pair reserves that counts towards tracked liquidity",
	RunE:  runTrackedLiquidity,
	Args:  cobra.ExactArgs(1),
}

func init() {
	rootCmd.AddCommand(trackedVolumeCmd)
	rootCmd.AddCommand(trackedLiquidityCmd)
}

func runTrackedVolume(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	pairID, err := addressArg("pair", args[0])
	if err != nil {
		return err
	}
	amount0, err := decimalArg("amount0", args[1])
	if err != nil {
		return err
	}
	amount1, err := decimalArg("amount1", args[2])
	if err != nil {
		return err
	}

	b, err := openBackend(cmd)
	if err != nil {
		return err
	}
	defer b.close(ctx)

	pair, token0, token1, err := loadPairWithTokens(ctx, b, pairID)
	if err != nil {
		return err
	}

	volume, err := b.pricer.TrackedVolumeUSD(ctx, amount0, token0, amount1, token1, pair)
	if err != nil {
		return fmt.Errorf("computing tracked volume: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), volume.String())
	return nil
}

func runTrackedLiquidity(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	pairID, err := addressArg("pair", args[0])
	if err != nil {
		return err
	}

	b, err := openBackend(cmd)
	if err != nil {
		return err
	}
	defer b.close(ctx)

	pair, token0, token1, err := loadPairWithTokens(ctx, b, pairID)
	if err != nil {
		return err
	}

	liquidity, err := b.pricer.TrackedLiquidityUSD(ctx, pair.Reserve0, token0, pair.Reserve1, token1)
	if err != nil {
		return fmt.Errorf("computing tracked liquidity: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), liquidity.String())
	return nil
}

// loadPairWithTokens returns the pair and its tokens, a token that was never
// priced is returned as nil.
func loadPairWithTokens(ctx context.Context, b *backend, pairID string) (*entity.Pair, *entity.Token, *entity.Token, error) {
	pair, found, err := b.store.GetPair(ctx, pairID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading pair %s: %w", pairID, err)
	}
	if !found {
		return nil, nil, nil, fmt.Errorf("%w: %s", pricing.ErrPairNotFound, pairID)
	}

	token0, _, err := b.store.GetToken(ctx, pair.Token0)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading token %s: %w", pair.Token0, err)
	}
	token1, _, err := b.store.GetToken(ctx, pair.Token1)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading token %s: %w", pair.Token1, err)
	}
	return pair, token0, token1, nil
}
