package main

import (
	"github.com/wwwzy/RagAgent/internal/cli"
	"os"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
