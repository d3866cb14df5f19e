package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/streamingfast/substreams-pcs-pricing/snapshot"
)

var loadCmd = &cobra.Command{
	Use:   "load <snapshot.yaml>",
	Short: "Load pairs, tokens and the bundle of a YAML snapshot in the backend",
	RunE:  runLoad,
	Args:  cobra.ExactArgs(1),
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	snap, err := snapshot.DecodeFile(args[0])
	if err != nil {
		return err
	}

	b, err := openBackend(cmd)
	if err != nil {
		return err
	}
	defer b.close(ctx)

	stats, err := snap.Load(ctx, b.store)
	if err != nil {
		return fmt.Errorf("loading snapshot %q: %w", args[0], err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "loaded %d pairs, %d tokens, %d bundles\n", stats.Pairs, stats.Tokens, stats.Bundles)
	return b.commit()
}
