package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ethPriceCmd = &cobra.Command{
	Use:   "eth-price",
	Short: "Print the ETH price in USD blended from the stablecoin reference pairs",
	RunE:  runEthPrice,
	Args:  cobra.NoArgs,
}

var tokenPriceCmd = &cobra.Command{
	Use:   "token-price <token>",
	Short: "Print the ETH and USD price of a token anchored on the whitelist",
	RunE:  runTokenPrice,
	Args:  cobra.ExactArgs(1),
}

func init() {
	rootCmd.AddCommand(ethPriceCmd)
	rootCmd.AddCommand(tokenPriceCmd)
}

func runEthPrice(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	b, err := openBackend(cmd)
	if err != nil {
		return err
	}
	defer b.close(ctx)

	ethPrice, err := b.pricer.EthPriceInUSD(ctx)
	if err != nil {
		return fmt.Errorf("computing eth price: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), ethPrice.String())
	return nil
}

func runTokenPrice(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	token, err := addressArg("token", args[0])
	if err != nil {
		return err
	}

	b, err := openBackend(cmd)
	if err != nil {
		return err
	}
	defer b.close(ctx)

	derivedETH, err := b.pricer.FindEthPerToken(ctx, token)
	if err != nil {
		return fmt.Errorf("finding eth price of %s: %w", token, err)
	}
	ethPrice, err := b.pricer.EthPriceInUSD(ctx)
	if err != nil {
		return fmt.Errorf("computing eth price: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "token:       %s\n", token)
	fmt.Fprintf(out, "derived eth: %s\n", derivedETH)
	fmt.Fprintf(out, "derived usd: %s\n", derivedETH.Mul(ethPrice))
	return nil
}
