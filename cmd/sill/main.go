// Command sill loads discrete factor models and runs exact junction-
// tree inference on them.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
