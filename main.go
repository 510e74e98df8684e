// The main package for the feedboard executable.
package main

import (
	"github.com/feedboard/feedboard/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
