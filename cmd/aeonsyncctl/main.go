// Command aeonsyncctl is the operator CLI for a running aeonsyncd: it
// inspects retained conflicts, resolves them, mints admin API tokens,
// and dumps the JSON schema for the operation and config wire shapes.
package main

import (
	"fmt"
	"os"

	"github.com/aeonsync/core/cmd/aeonsyncctl/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
