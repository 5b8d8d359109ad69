package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/johnquangdev/voice-call-analytics/internal/usecase/lag"
)

func newAnalyzeCommand(a *app) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run lag analysis over a call export",
		Long:  "Reads a JSON array of call rows (use '-' for stdin), validates it and prints the lag report.",
		Example: `  lagctl analyze --input calls.json
  lagctl analyze -i calls.json --workers 4 -o json
  cat calls.json | lagctl analyze -i -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.settings()
			if err != nil {
				return err
			}

			var r io.Reader = cmd.InOrStdin()
			if input != "-" {
				f, err := os.Open(input)
				if err != nil {
					return fmt.Errorf("failed to open input: %w", err)
				}
				defer f.Close()
				r = f
			}

			calls, err := LoadCalls(r)
			if err != nil {
				return err
			}
			a.logger.Debug("Calls loaded", zap.Int("count", len(calls)), zap.String("input", input))

			report, err := lag.AggregateParallel(cmd.Context(), calls, lag.Options{
				Thresholds:   s.Thresholds,
				EpisodeLimit: s.EpisodeLimit,
				DailyAvgMode: s.DailyAvgMode,
				OnUnreadable: func(callID string, status lag.ParseStatus) {
					a.logger.Debug("Unreadable transcript",
						zap.String("call_id", callID),
						zap.String("status", string(status)),
					)
				},
			}, s.Workers)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			out := newRenderer(cmd.OutOrStdout(), s)
			return out.render(report, func() error {
				return out.report(report)
			})
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "call export file, or - for stdin")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
