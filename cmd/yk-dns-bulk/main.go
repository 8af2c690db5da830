package main

import (
	"fmt"
	"os"

	"github.com/yuriy-kovalchuk/yk-dns-bulk/cmd/yk-dns-bulk/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
