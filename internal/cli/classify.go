package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/voice-call-analytics/internal/domain/entities"
	"github.com/johnquangdev/voice-call-analytics/internal/usecase/lag"
)

// Classification is the result of the classify command
type Classification struct {
	Value     float64           `json:"value"`
	Threshold float64           `json:"threshold"`
	Severity  entities.Severity `json:"severity"`
}

func newClassifyCommand(a *app) *cobra.Command {
	var lagType string

	cmd := &cobra.Command{
		Use:   "classify <value> [threshold]",
		Short: "Grade a latency value against a threshold",
		Long: "Prints normal, warning or critical. The threshold is taken from the second argument, " +
			"or from the configured threshold of --type (" + joinLagTypes() + ").",
		Example: `  lagctl classify 5.2 4
  lagctl classify 0.9 --type tts_ttfb`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.settings()
			if err != nil {
				return err
			}

			value, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", args[0], err)
			}

			var threshold float64
			switch {
			case len(args) == 2:
				threshold, err = strconv.ParseFloat(args[1], 64)
				if err != nil {
					return fmt.Errorf("invalid threshold %q: %w", args[1], err)
				}
			case lagType != "":
				threshold = s.Thresholds.For(entities.LagType(lagType))
				if threshold == 0 {
					return fmt.Errorf("unknown lag type %q", lagType)
				}
			default:
				return fmt.Errorf("either a threshold argument or --type is required")
			}

			result := Classification{
				Value:     value,
				Threshold: threshold,
				Severity:  lag.Classify(value, threshold),
			}

			out := newRenderer(cmd.OutOrStdout(), s)
			return out.render(result, func() error {
				out.printf("%s\n", out.severityColor(result.Severity)(string(result.Severity)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&lagType, "type", "t", "", "lag type whose configured threshold applies")
	return cmd
}
