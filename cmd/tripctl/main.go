package main

import (
	"os"

	"github.com/sheikh-saqib/tripsync/cmd/tripctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
