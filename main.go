// ABOUTME: Entry point for the storefront CLI
// ABOUTME: Terminal client for the store management backend

package main

import (
	"fmt"
	"os"

	"github.com/markalston/storefront/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
