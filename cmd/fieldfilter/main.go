package main

import (
	"os"

	"github.com/solatis/fieldfilter/cmd/fieldfilter/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
