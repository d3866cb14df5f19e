package main

import (
	"github.com/streamingfast/substreams-pcs-pricing/cli"
)

func main() {
	cli.Main()
}
