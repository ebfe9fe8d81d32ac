package main

import (
	"fmt"
	"os"

	"frameloop/netcode/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "frameloop:", err)
		os.Exit(1)
	}
}
