package main

import (
	"fmt"
	"os"

	"github.com/goliatone/go-persist/internal/persistctl"
)

func main() {
	rootCmd := persistctl.NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
