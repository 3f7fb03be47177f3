package main

import (
	"os"

	"github.com/gfbarbieri/coffer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
