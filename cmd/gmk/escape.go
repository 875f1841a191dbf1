package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/feather-lang/gmk"
)

func newEscapeCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "escape",
		Short: "Escape stdin for embedding in a define block",
		Long: `escape applies the transformation the bridge applies before writing
a value into a define/endef block. With --all, dollar signs are doubled
too, the form used for frozen text like error messages.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			text := string(raw)
			if all {
				text = gmk.EscapeAll(text)
			} else {
				text = gmk.Escape(text)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), text)
			return err
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "double dollar signs as well")

	return cmd
}
