package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newExpandCommand() *cobra.Command {
	var varsFile string
	var evals []string

	cmd := &cobra.Command{
		Use:   "expand <text>",
		Short: "Expand text through a fresh make emulation",
		Long: `expand runs one expansion and prints the result, e.g.:

  gmk expand '$(calc 6*7)'
  gmk expand --eval 'X := world' '$(X)'`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := newSession(varsFile)
			if err != nil {
				return err
			}
			for _, text := range evals {
				m.Eval(text)
			}
			fmt.Fprintln(cmd.OutOrStdout(), m.Expand(strings.Join(args, " ")))
			return nil
		},
	}

	cmd.Flags().StringVar(&varsFile, "vars", "", "YAML file of variables to preseed")
	cmd.Flags().StringArrayVar(&evals, "eval", nil, "makefile line to evaluate first (repeatable)")

	return cmd
}
