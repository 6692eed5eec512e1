package main

import (
	"fmt"
	"os"

	"sdutil/internal/cli"
)

// main is the entry point for the sdutil command.
func main() {
	if applicationExecutionError := cli.Execute(); applicationExecutionError != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", applicationExecutionError)
		os.Exit(1)
	}
}
