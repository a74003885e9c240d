package cli

import (
	"github.com/spf13/cobra"

	"github.com/AisKreme/brot-backer/internal/display"
)

func newInventoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inventory",
		Short: "Show the flour inventory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.closeLog()
			ctx := cmd.Context()

			items, err := a.flours.ListItems(ctx)
			if err != nil {
				return err
			}
			a.say(ctx, display.FlourTable(items))
			return nil
		},
	}
}
