// Command rpctypingctl is a small operator CLI over the typing core: load
// IDL, validate a payload against a declared type, inspect a registered
// type or interface, stream loaded IDL bodies back out, or poke at a
// loaded registry interactively from a REPL.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/arcflow/rpctyping/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", color.RedString("Error"), err)
		os.Exit(1)
	}
}
