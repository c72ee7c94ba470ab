// Command daybook is a personal self-tracking CLI. All state lives in one
// JSON document in a user-controlled remote file store; commands mutate the
// in-memory document and persist it through a debounced, single-flight save
// coordinator.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
