package main

import (
	"fmt"
	"os"

	"github.com/ci-tools/docker-scout-action/cmd/scout-action/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
