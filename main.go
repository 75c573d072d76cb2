package main

import (
	"fmt"
	"os"

	"github.com/ytget/ytmux/internal/cli"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

// main lets `go run .` and `fyne package` build the same binary as cmd/ytmux
func main() {
	if err := cli.Execute(version); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
