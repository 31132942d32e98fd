package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"apix/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create an apix.toml template",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		entry, err := cmd.Flags().GetString("entry")
		if err != nil {
			return err
		}
		path, err := config.WriteTemplate(dir, entry)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().String("entry", "", "entry point written to [project].entryPoint")
}
