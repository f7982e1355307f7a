package main

import (
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file.bib>",
	Short: "Extract all publications and print them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pubs, err := parseFile(cmd, args[0])
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), pubs)
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
