package main

import (
	"os"

	"github.com/vnykmshr/robocmd/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
