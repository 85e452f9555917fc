package main

import (
	"fmt"
	"os"

	"github.com/krun-tools/stepcraft/cmd/stepcraft/commands"
)

func main() {
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "stepcraft:", err)
		os.Exit(1)
	}
}
