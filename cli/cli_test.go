package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cliFixture = `---
storeData:
  - type: pair
    entity:
      id: "0x2dd380f80a33603610daa8e300157506e300d28f"
      token0: "0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c"
      token1: "0xe9e7cea3dedca5984780bafc599bd69add087d56"
      reserve0: "100"
      reserve1: "30000"
      token1Price: "300"
      reserveETH: "200"
      liquidityProviderCount: 100
  - type: pair
    entity:
      id: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
      token0: "0x1111111111111111111111111111111111111111"
      token1: "0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c"
      reserve0: "1000"
      reserve1: "20"
      token0Price: "50"
      token1Price: "0.02"
      reserveETH: "40"
      liquidityProviderCount: 10
  - type: token
    entity:
      id: "0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c"
      derivedETH: "1"
`

const testPair = "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

func runCLI(t *testing.T, stateFile string, args ...string) (string, error) {
	t.Helper()

	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(append(args, "--state-file", stateFile))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI_KVBackend(t *testing.T) {
	dir := t.TempDir()
	stateFile := filepath.Join(dir, "state", "graph.json")
	snapshotFile := filepath.Join(dir, "snapshot.yaml")
	require.NoError(t, os.WriteFile(snapshotFile, []byte(cliFixture), 0644))

	out, err := runCLI(t, stateFile, "load", snapshotFile)
	require.NoError(t, err)
	assert.Contains(t, out, "loaded 2 pairs, 1 tokens, 0 bundles")
	assert.FileExists(t, stateFile)

	out, err = runCLI(t, stateFile, "eth-price")
	require.NoError(t, err)
	assert.Equal(t, "300", strings.TrimSpace(out))

	out, err = runCLI(t, stateFile, "token-price", "0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	assert.Contains(t, out, "derived eth: 0.02\n")
	assert.Contains(t, out, "derived usd: 6\n")

	out, err = runCLI(t, stateFile, "tracked-liquidity", testPair)
	require.NoError(t, err)
	assert.Equal(t, "0", strings.TrimSpace(out), "no bundle saved yet")

	out, err = runCLI(t, stateFile, "refresh", testPair)
	require.NoError(t, err)
	assert.Contains(t, out, "tracked reserve eth 40")

	out, err = runCLI(t, stateFile, "tracked-liquidity", testPair)
	require.NoError(t, err)
	assert.Equal(t, "12000", strings.TrimSpace(out))

	out, err = runCLI(t, stateFile, "tracked-volume", testPair, "100", "1")
	require.NoError(t, err)
	assert.Equal(t, "300", strings.TrimSpace(out))

	out, err = runCLI(t, stateFile, "refresh", "--all", "--print-deltas")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "pair 0x"))
	assert.Contains(t, out, `KEY: "token:0xe9e7cea3dedca5984780bafc599bd69add087d56"`)
	require.NoError(t, refreshCmd.Flags().Set("all", "false"))
	require.NoError(t, refreshCmd.Flags().Set("print-deltas", "false"))
}

func TestCLI_Errors(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "graph.json")

	_, err := runCLI(t, stateFile, "token-price", "not-an-address")
	assert.Error(t, err)

	_, err = runCLI(t, stateFile, "tracked-volume", testPair, "abc", "1")
	assert.Error(t, err)

	_, err = runCLI(t, stateFile, "tracked-liquidity", testPair)
	assert.ErrorContains(t, err, "pair not found")

	_, err = runCLI(t, stateFile, "refresh")
	assert.Error(t, err)

	_, err = runCLI(t, stateFile, "eth-price", "--backend", "redis")
	assert.ErrorContains(t, err, "unknown backend")
	require.NoError(t, rootCmd.PersistentFlags().Set("backend", "kv"))
}
