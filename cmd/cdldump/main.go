package main

import (
	"os"

	"github.com/spf13/cobra"
	_ "github.com/tliron/commonlog/simple"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cdldump",
		Short: "Validate and inspect crash diagnostic layer dumps",
	}

	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newBrowseCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
