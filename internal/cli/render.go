package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/k0kubun/pp"

	"github.com/johnquangdev/voice-call-analytics/internal/domain/entities"
	"github.com/johnquangdev/voice-call-analytics/internal/usecase/lag"
)

// maxTextEpisodes limits the episode table of the text report
const maxTextEpisodes = 20

// renderer writes reports in the selected format
type renderer struct {
	w       io.Writer
	format  string
	noColor bool

	title   lipgloss.Style
	section lipgloss.Style
	muted   lipgloss.Style
}

func newRenderer(w io.Writer, s Settings) *renderer {
	lr := lipgloss.NewRenderer(w)
	return &renderer{
		w:       w,
		format:  s.Format,
		noColor: s.NoColor,
		title:   lr.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		section: lr.NewStyle().Bold(true).Underline(true),
		muted:   lr.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// severityColor returns a color func for a severity label
func (r *renderer) severityColor(s entities.Severity) func(a ...interface{}) string {
	var c *color.Color
	switch s {
	case entities.SeverityCritical:
		c = color.New(color.FgRed, color.Bold)
	case entities.SeverityWarning:
		c = color.New(color.FgYellow)
	default:
		c = color.New(color.FgGreen)
	}
	if r.noColor {
		c.DisableColor()
	}
	return c.SprintFunc()
}

// render writes v as JSON or a pp dump, or calls text for the text format
func (r *renderer) render(v any, text func() error) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatDump:
		_, err := pp.Fprintln(r.w, v)
		return err
	default:
		return text()
	}
}

func (r *renderer) printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}

// report writes the human readable lag report
func (r *renderer) report(rep *lag.Report) error {
	r.printf("%s\n", r.title.Render("Lag report"))
	r.printf("Calls analyzed:  %d\n", rep.CallsAnalyzed)
	r.printf("Lag episodes:    %d (showing %d)\n", rep.TotalEpisodes, min(len(rep.LagEpisodes), maxTextEpisodes))
	r.printf("Unreadable:      %d\n\n", rep.UnreadableTranscripts)

	r.breakdown("Component breakdown", rep.ComponentBreakdown)

	if len(rep.EpisodeCounts) > 0 {
		r.printf("%s\n", r.section.Render("Episodes by stage"))
		for _, lt := range entities.AllLagTypes {
			if n := rep.EpisodeCounts[lt]; n > 0 {
				r.printf("  %-12s %d\n", lt, n)
			}
		}
		r.printf("\n")
	}

	if len(rep.DailyStats) > 0 {
		r.printf("%s\n", r.section.Render("Daily"))
		r.printf("  %-10s %6s %8s %8s %8s %7s %7s %7s\n", "DATE", "HIGH", "AVG E2E", "MAX E2E", "DROPOFF", "STT", "LLM", "TTS")
		for _, d := range rep.DailyStats {
			r.printf("  %-10s %6d %8.2f %8.2f %8d %7.2f %7.2f %7.2f\n",
				d.Date, d.HighLatencyCount, d.AvgE2ELatency, d.MaxE2ELatency, d.DropoffCount, d.AvgSTT, d.AvgLLM, d.AvgTTS)
		}
		r.printf("\n")
	}

	if len(rep.LanguageBreakdown) > 0 {
		langs := make([]string, 0, len(rep.LanguageBreakdown))
		for lang := range rep.LanguageBreakdown {
			langs = append(langs, lang)
		}
		sort.Strings(langs)

		r.printf("%s\n", r.section.Render("By language"))
		r.printf("  %-10s %8s %8s %8s %6s\n", "LANG", "AVG E2E", "P95 E2E", "AVG LLM", "N")
		for _, lang := range langs {
			b := rep.LanguageBreakdown[lang]
			r.printf("  %-10s %8.2f %8.2f %8.2f %6d\n", lang, b.E2E.Avg, b.E2E.P95, b.LLM.Avg, b.E2E.Count)
		}
		r.printf("\n")
	}

	if len(rep.LagEpisodes) == 0 {
		r.printf("%s\n", r.muted.Render("No lag episodes."))
		return nil
	}

	r.printf("%s\n", r.section.Render("Episodes"))
	r.printf("  %-20s %-12s %-12s %7s %7s  %s\n", "CALL", "ITEM", "STAGE", "VALUE", "LIMIT", "SEVERITY")
	for _, ep := range rep.LagEpisodes[:min(len(rep.LagEpisodes), maxTextEpisodes)] {
		sev := lag.Classify(ep.LagValue, ep.Threshold)
		r.printf("  %-20s %-12s %-12s %7.2f %7.2f  %s\n",
			truncate(ep.CallID, 20), truncate(ep.ItemID, 12), ep.LagType, ep.LagValue, ep.Threshold, r.severityColor(sev)(string(sev)))
	}
	return nil
}

func (r *renderer) breakdown(heading string, b lag.ComponentBreakdown) {
	r.printf("%s\n", r.section.Render(heading))
	r.printf("  %-12s %7s %7s %7s %7s %7s\n", "STAGE", "AVG", "P50", "P95", "N", "%E2E")
	row := func(name string, s lag.StageStats, pct string) {
		r.printf("  %-12s %7.2f %7.2f %7.2f %7d %7s\n", name, s.Avg, s.P50, s.P95, s.Count, pct)
	}
	row("e2e", b.E2E, "")
	row("llm_ttft", b.LLM.StageStats, fmt.Sprintf("%.1f", b.LLM.PctOfE2E))
	row("tts_ttfb", b.TTS.StageStats, fmt.Sprintf("%.1f", b.TTS.PctOfE2E))
	row("stt", b.STT, "")
	row("end_of_turn", b.EndOfTurn, "")
	r.printf("  %-12s %7.2f %7s %7s %7s %7.1f\n\n", "other", b.Other.Avg, "", "", "", b.Other.PctOfE2E)
}

// thresholds writes the effective thresholds with their critical limits
func (r *renderer) thresholds(t entities.Thresholds) {
	r.printf("%s\n", r.title.Render("Thresholds"))
	r.printf("  %-12s %8s %9s\n", "STAGE", "WARNING", "CRITICAL")
	for _, lt := range entities.AllLagTypes {
		v := t.For(lt)
		r.printf("  %-12s %8.2f %9.2f\n", lt, v, v*lag.CriticalMultiplier)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "~"
}

// joinLagTypes renders lag type names for help text
func joinLagTypes() string {
	names := make([]string, len(entities.AllLagTypes))
	for i, lt := range entities.AllLagTypes {
		names[i] = string(lt)
	}
	return strings.Join(names, ", ")
}
