// ExactMass - chemical formula and exact mass calculator
package main

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/exactmass/cmd/exactmass/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
