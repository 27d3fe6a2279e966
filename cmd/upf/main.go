// Command upf checks, inspects and runs UPF projects.
package main

import (
	"fmt"
	"os"

	"github.com/ultraviolet-go/upf/cmd/upf/cmd"
)

func main() {
	if err := cmd.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
