package main

import (
	"os"

	"github.com/scribeworks/redline/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
