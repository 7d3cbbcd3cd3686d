package main

import (
	"fmt"
	"os"

	"github.com/bimmerbailey/sift/cmd"
	"github.com/bimmerbailey/sift/internal/output"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, output.Errorf(output.ColorAuto, os.Stderr, "Error: "+err.Error()))
		os.Exit(1)
	}
}
