package cli

import (
	"github.com/spf13/cobra"
)

func newThresholdsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "thresholds",
		Short: "Show the effective lag thresholds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.settings()
			if err != nil {
				return err
			}

			out := newRenderer(cmd.OutOrStdout(), s)
			return out.render(s.Thresholds, func() error {
				out.thresholds(s.Thresholds)
				return nil
			})
		},
	}
}
