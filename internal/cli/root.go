// Package cli implements lagctl, the offline lag analysis tool. It runs the
// same engine as the API against a JSON export of call rows.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/johnquangdev/voice-call-analytics/internal/domain/entities"
	"github.com/johnquangdev/voice-call-analytics/internal/usecase/lag"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatDump = "dump"
)

// thresholdFlags maps flag names to viper keys and lag types
var thresholdFlags = []struct {
	flag    string
	key     string
	lagType entities.LagType
	usage   string
}{
	{"e2e", "thresholds.e2e_latency", entities.LagTypeE2E, "end-to-end latency threshold (s)"},
	{"llm-ttft", "thresholds.llm_ttft", entities.LagTypeLLMTTFT, "LLM time-to-first-token threshold (s)"},
	{"tts-ttfb", "thresholds.tts_ttfb", entities.LagTypeTTSTTFB, "TTS time-to-first-byte threshold (s)"},
	{"stt", "thresholds.transcription_delay", entities.LagTypeSTT, "transcription delay threshold (s)"},
	{"end-of-turn", "thresholds.end_of_turn", entities.LagTypeEndOfTurn, "end-of-turn delay threshold (s)"},
}

// Settings is the resolved configuration for one command run
type Settings struct {
	Format       string
	Debug        bool
	NoColor      bool
	Workers      int
	EpisodeLimit int
	DailyAvgMode lag.DailyAvgMode
	Thresholds   entities.Thresholds
}

// app carries the per-invocation state shared by subcommands
type app struct {
	v       *viper.Viper
	cfgFile string
	logger  *zap.Logger
}

// NewRootCommand builds the lagctl command tree with its own viper instance
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New(), logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:           "lagctl",
		Short:         "Analyze voice call latency from a call export",
		Long:          "lagctl runs the lag analysis engine over a JSON export of voice calls and reports episodes, daily stats and the per-stage breakdown.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(); err != nil {
				return err
			}
			return a.initLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./lagctl.yaml)")
	flags.Bool("debug", false, "enable debug logging")
	flags.Bool("no-color", false, "disable colored output")
	flags.StringP("format", "o", FormatText, "output format: text, json or dump")
	flags.Int("workers", 1, "number of analysis goroutines")
	flags.Int("episode-limit", lag.DefaultEpisodeLimit, "maximum number of episodes reported")
	flags.String("daily-avg-mode", string(lag.DailyAvgRunning), "daily average mode: running or legacy")

	defaults := entities.DefaultThresholds()
	for _, tf := range thresholdFlags {
		flags.Float64(tf.flag, defaults.For(tf.lagType), tf.usage)
	}

	for _, key := range []string{"debug", "no-color", "format", "workers", "episode-limit", "daily-avg-mode"} {
		_ = a.v.BindPFlag(strings.ReplaceAll(key, "-", "_"), flags.Lookup(key))
	}
	for _, tf := range thresholdFlags {
		_ = a.v.BindPFlag(tf.key, flags.Lookup(tf.flag))
	}

	a.v.SetEnvPrefix("LAGCTL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	rootCmd.AddCommand(
		newAnalyzeCommand(a),
		newClassifyCommand(a),
		newThresholdsCommand(a),
	)
	return rootCmd
}

// Execute runs lagctl with os.Args and exits non-zero on failure
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file if one is given or found. A missing
// default file is fine.
func (a *app) loadConfig() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.SetConfigName("lagctl")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

func (a *app) initLogger() error {
	if !a.v.GetBool("debug") {
		return nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	a.logger = logger
	a.logger.Debug("Config loaded", zap.String("file", a.v.ConfigFileUsed()))
	return nil
}

// settings resolves flags, environment and config file into Settings
func (a *app) settings() (Settings, error) {
	s := Settings{
		Format:       a.v.GetString("format"),
		Debug:        a.v.GetBool("debug"),
		NoColor:      a.v.GetBool("no_color"),
		Workers:      a.v.GetInt("workers"),
		EpisodeLimit: a.v.GetInt("episode_limit"),
		DailyAvgMode: lag.DailyAvgMode(a.v.GetString("daily_avg_mode")),
		Thresholds: entities.Thresholds{
			E2ELatency:         a.v.GetFloat64("thresholds.e2e_latency"),
			LLMTTFT:            a.v.GetFloat64("thresholds.llm_ttft"),
			TTSTTFB:            a.v.GetFloat64("thresholds.tts_ttfb"),
			TranscriptionDelay: a.v.GetFloat64("thresholds.transcription_delay"),
			EndOfTurn:          a.v.GetFloat64("thresholds.end_of_turn"),
		},
	}

	switch s.Format {
	case FormatText, FormatJSON, FormatDump:
	default:
		return s, fmt.Errorf("unknown output format %q", s.Format)
	}
	if !s.DailyAvgMode.Valid() {
		return s, fmt.Errorf("unknown daily average mode %q", s.DailyAvgMode)
	}
	if s.Workers < 1 {
		return s, fmt.Errorf("workers must be >= 1, got %d", s.Workers)
	}
	if err := s.Thresholds.Validate(); err != nil {
		return s, err
	}
	return s, nil
}
