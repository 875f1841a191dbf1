package main

import "github.com/spf13/cobra"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gmk",
		Short: "Developer tool for gmk make plugins",
		Long: `gmk exercises plugin code outside of make: the repl runs your
functions against an in-memory make emulation with the standard library
packs loaded, and the escape and expand commands show what the bridge
would send and receive.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newReplCommand())
	cmd.AddCommand(newEscapeCommand())
	cmd.AddCommand(newExpandCommand())

	return cmd
}
