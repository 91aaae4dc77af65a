package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/alpaca-client/cmd/alpaca/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := commands.NewRootCommand(version, commit, date)

	cobra.OnInitialize(func() {
		err := commands.InitConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading configuration: %v\n", err)
			os.Exit(1)
		}
	})

	err := rootCmd.Execute()

	_ = commands.Logger().Sync()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
