// Package main is the entry point for the eslintsync CLI.
//
// All logic lives in the commands package.
package main

import (
	"os"

	"github.com/JNZader/eslintsync/cmd/eslintsync/commands"
)

func main() {
	// Execute prints the error chain itself
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
