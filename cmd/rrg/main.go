package main

import (
	"os"

	"github.com/hintstechnology/bandarmolony-sub008/cmd/rrg/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
