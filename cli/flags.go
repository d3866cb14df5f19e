package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/streamingfast/substreams-pcs-pricing/entity"
)

func mustGetString(cmd *cobra.Command, flagName string) string {
	val, err := cmd.Flags().GetString(flagName)
	if err != nil {
		panic(fmt.Sprintf("flags: couldn't find flag %q", flagName))
	}
	return val
}

func mustGetBool(cmd *cobra.Command, flagName string) bool {
	val, err := cmd.Flags().GetBool(flagName)
	if err != nil {
		panic(fmt.Sprintf("flags: couldn't find flag %q", flagName))
	}
	return val
}

func addressArg(name, in string) (string, error) {
	address, err := entity.NormalizeAddress(in)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return address, nil
}

func decimalArg(name, in string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(in)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s %q: %w", name, in, err)
	}
	return value, nil
}
