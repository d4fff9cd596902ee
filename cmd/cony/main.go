package main

import (
	"os"

	"github.com/lazypower/cony/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
