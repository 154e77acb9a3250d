// Command sitecrew-admin is an operational CLI for the membership
// service. It talks to the database directly, so it runs where the
// database is reachable, not against the public API.
package main

import (
	"fmt"
	"os"

	"github.com/sitecrew/api/cmd/sitecrew-admin/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
