package main

import (
	"os"

	"github.com/msalah0e/nodeweave/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
