package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/flowread/internal/adaptive"
	"github.com/verte-zerg/flowread/internal/config"
	"github.com/verte-zerg/flowread/internal/model"
	"github.com/verte-zerg/flowread/internal/stats"
	"github.com/verte-zerg/flowread/internal/statsui"
)

const (
	defaultCurveWindow = 3
	defaultPlotWidth   = 80
)

var (
	statsMode        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool
	statsJSON        bool
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsMode, "mode", "", "mode filter (baseline, assessment, main, training, test)")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", stats.DefaultLimit, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print the report instead of opening the TUI")
	cmd.Flags().BoolVar(&statsJSON, "json", false, "print stats and progress points as JSON")
	return cmd
}

func parseStatsConfig() (model.StatsConfig, error) {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	mode := model.Mode(strings.TrimSpace(statsMode))
	switch mode {
	case "", model.ModeBaseline, model.ModeAssessment, model.ModeMain, model.ModeTraining, model.ModeTest:
	default:
		return model.StatsConfig{}, fmt.Errorf("--mode must be one of baseline, assessment, main, training, test")
	}
	if statsLast < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be > 0")
	}
	return model.StatsConfig{
		Mode:        mode,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}, nil
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var cfg model.StatsConfig
	e, err := setup(cmd, func(fileCfg config.FileConfig) error {
		applyIntConfig(cmd, "last", &statsLast, fileCfg.Stats.Last)
		applyIntConfig(cmd, "curve-window", &statsCurveWindow, fileCfg.Stats.CurveWindow)
		if statsPlain && statsJSON {
			return fmt.Errorf("--plain and --json are mutually exclusive")
		}
		var err error
		cfg, err = parseStatsConfig()
		return err
	})
	if err != nil {
		return err
	}
	defer e.close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	engine := adaptive.Default()
	out := cmd.OutOrStdout()
	switch {
	case statsJSON:
		report := stats.Load(ctx, e.repo, cfg, e.log)
		return writeStatsJSON(out, report)
	case statsPlain:
		report := stats.Load(ctx, e.repo, cfg, e.log)
		if report.Unavailable {
			logErrln("history unavailable; showing empty stats")
		}
		return writePlainStats(out, report, engine, cfg.CurveWindow, terminalWidth(), false)
	}

	m := statsui.NewModel(e.repo, cfg, engine, e.log)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

type statsJSONOutput struct {
	Stats    model.Stats           `json:"stats"`
	Progress []model.ProgressPoint `json:"progress"`
}

func writeStatsJSON(w io.Writer, r stats.Report) error {
	progress := r.Progress
	if progress == nil {
		progress = []model.ProgressPoint{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(statsJSONOutput{Stats: r.Stats, Progress: progress}); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func writePlainStats(w io.Writer, r stats.Report, engine *adaptive.Engine, window, width int, color bool) error {
	if err := stats.RenderSummary(w, r.Stats); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if _, err := fmt.Fprintf(w, "Reading level: %s\nNext target: %d WPM\n\n",
		adaptive.ReadingLevel(r.Stats), engine.AdaptiveWPM(r.Stats, r.Progress)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderSessions(w, r.Sessions, r.Comprehension); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(r.Progress) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderCurves(w, r.Progress, window, width, color); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultPlotWidth
	}
	return width
}

func newSuggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest",
		Short: "Recommend the next speed and technique",
		Args:  cobra.NoArgs,
		RunE:  runSuggestCmd,
	}
}

func runSuggestCmd(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd, nil)
	if err != nil {
		return err
	}
	defer e.close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	report := stats.Load(ctx, e.repo, model.StatsConfig{}, e.log)
	return writeSuggestion(cmd.OutOrStdout(), report, adaptive.Default())
}

func writeSuggestion(w io.Writer, r stats.Report, engine *adaptive.Engine) error {
	lines := []string{
		fmt.Sprintf("Recommended speed: %d WPM", engine.AdaptiveWPM(r.Stats, r.Progress)),
		fmt.Sprintf("Recommended technique: %s", engine.RecommendTechnique(r.Stats)),
		fmt.Sprintf("Reading level: %s", adaptive.ReadingLevel(r.Stats)),
		"",
		engine.Suggestion(r.Stats, r.Progress),
	}
	if _, err := fmt.Fprintln(w, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print a Markdown progress report",
		Args:  cobra.NoArgs,
		RunE:  runReportCmd,
	}
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd, nil)
	if err != nil {
		return err
	}
	defer e.close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	report := stats.Load(ctx, e.repo, model.StatsConfig{}, e.log)
	if _, err := io.WriteString(cmd.OutOrStdout(), adaptive.Default().Report(report.Stats, report.Progress)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
