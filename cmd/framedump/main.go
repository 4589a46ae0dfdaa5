// Command framedump drives the frame pipeline headlessly: it renders demo
// scenes to PNG, prints element and layer trees, and serves the debug
// endpoints of a running engine.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/framecore/cmd/framedump/cmd"
)

func main() {
	if err := cmd.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
