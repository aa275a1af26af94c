// inventory is the operator command line of the inventory tracker.
//
// Usage:
//
//	inventory --user admin --password ... product list
//	inventory backup create
//
// Settings come from the environment or a .env file (see config.LoadSettings).
package main

import (
	"fmt"
	"os"

	"github.com/awnumar/memguard"
)

func main() {
	err := rootCmd.Execute()
	// wipe the backup key and any other sealed memory before exiting
	memguard.Purge()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
