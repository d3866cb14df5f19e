package cli

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:          "pcs-pricing",
	Short:        "Reference prices and tracked amounts of a PancakeSwap liquidity graph",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a config file, defaults to ./pcs-pricing.{yaml,json,toml} when present")
	rootCmd.PersistentFlags().String("backend", "kv", "Liquidity graph backend, one of kv, postgres or mongo")
	rootCmd.PersistentFlags().String("state-file", "./localdata/graph.json", "State file of the kv backend")
	rootCmd.PersistentFlags().String("pg-dsn", "", "dsn for postgres database")
	rootCmd.PersistentFlags().String("mongo-url", "mongodb://localhost:27017", "Set mongo database url")
	rootCmd.PersistentFlags().String("mongo-database", "pcs", "Mongo database name")
	rootCmd.PersistentFlags().String("rpc-endpoint", "", "RPC endpoint of blockchain node, pairs are then located through the factory contract")
	rootCmd.PersistentFlags().String("factory-address", "", "Address of the pair factory, required with --rpc-endpoint")
}
