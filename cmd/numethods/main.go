package main

import (
	"os"

	"github.com/njchilds90/numethods/cmd/numethods/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
