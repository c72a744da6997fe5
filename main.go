package main

import (
	"os"

	"github.com/moyoez/moneylens-go/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
