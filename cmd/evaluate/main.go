// Command evaluate runs one burst coverage evaluation over a file of product
// ids and prints the report.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
