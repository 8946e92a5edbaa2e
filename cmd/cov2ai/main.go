package main

import (
	"fmt"
	"os"

	"github.com/zjy-dev/cov2ai/cmd/cov2ai/app"
)

func main() {
	if err := app.NewCov2AICommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
