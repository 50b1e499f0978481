// Package main is the entry point for the biznes CLI.
package main

import (
	"os"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
