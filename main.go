package main

import (
	"os"

	"github.com/oratohq/orato/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
