// Command adt inspects Delta and parquet directory tables: prints their
// resolved schemas and views their contents through the scan planner.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
