// Command mapview inspects and renders signal map scenes.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		bad.Fprintf(os.Stderr, "mapview: %v\n", err)
		os.Exit(1)
	}
}
