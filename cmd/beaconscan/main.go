// cmd/beaconscan/main.go
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "beaconscan: %v\n", err)
		os.Exit(1)
	}
}
