package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/flowread/internal/adaptive"
	"github.com/verte-zerg/flowread/internal/config"
	"github.com/verte-zerg/flowread/internal/importer"
	"github.com/verte-zerg/flowread/internal/model"
	"github.com/verte-zerg/flowread/internal/pacing"
	"github.com/verte-zerg/flowread/internal/quiz"
	"github.com/verte-zerg/flowread/internal/samples"
	"github.com/verte-zerg/flowread/internal/session"
	"github.com/verte-zerg/flowread/internal/stats"
	"github.com/verte-zerg/flowread/internal/textproc"
	"github.com/verte-zerg/flowread/internal/tui"
)

const (
	defaultTechnique = string(model.TechniqueNormal)
	defaultTrainer   = string(pacing.TrainerWord)
	maxChunkSize     = 10
	minLineLength    = 20
)

var (
	readWPM        int
	readTechnique  string
	readChunkSize  int
	readLineLength int
	readAdaptive   bool
	readSample     int
	readTextID     string
	readTitle      string
	readQuestions  int
	readNoQuiz     bool
	readLimit      time.Duration
	readTrainer    string

	quizQuestions int
	quizPlain     bool
)

func addTextSourceFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&readSample, "sample", 0, "read sample text N (see: flowread texts samples)")
	cmd.Flags().StringVar(&readTextID, "text-id", "", "read a stored text by id")
	cmd.Flags().StringVar(&readTitle, "title", "", "title for the saved text")
}

func addReadingFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&readWPM, "wpm", session.DefaultWPM, "target words per minute")
	cmd.Flags().StringVar(&readTechnique, "technique", defaultTechnique, "normal, pacer, flash or chunking")
	cmd.Flags().IntVar(&readChunkSize, "chunk-size", session.DefaultChunkSize, "words per chunk for chunking")
	cmd.Flags().IntVar(&readLineLength, "line-length", textproc.DefaultLineLength, "display line length")
	cmd.Flags().BoolVar(&readAdaptive, "adaptive", false, "start at the adaptive recommended speed")
	addTextSourceFlags(cmd)
}

func newReadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read [file]",
		Short: "Timed reading session followed by a comprehension quiz",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReading(cmd, args, model.ModeMain)
		},
	}
	addReadingFlags(cmd)
	cmd.Flags().IntVar(&readQuestions, "questions", quiz.DefaultQuestions, "number of quiz questions")
	cmd.Flags().BoolVar(&readNoQuiz, "no-quiz", false, "skip the comprehension quiz")
	cmd.Flags().DurationVar(&readLimit, "limit", session.MainReadingLimit, "auto-stop after this long (0 disables)")
	return cmd
}

func newAssessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assess [file]",
		Short: "Measure your reading speed",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReading(cmd, args, model.ModeAssessment)
		},
	}
	addReadingFlags(cmd)
	return cmd
}

func newTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train [file]",
		Short: "Speed training with word, phrase, line or ramp trainers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReading(cmd, args, model.ModeTraining)
		},
	}
	addReadingFlags(cmd)
	cmd.Flags().StringVar(&readTrainer, "trainer", defaultTrainer, "word, phrase, line or ramp")
	return cmd
}

// readingConfig merges the [reading] section into unchanged flags.
func readingConfig(cmd *cobra.Command, fileCfg config.FileConfig, mode model.Mode) model.Config {
	applyIntConfig(cmd, "wpm", &readWPM, fileCfg.Reading.WPM)
	applyStringConfig(cmd, "technique", &readTechnique, fileCfg.Reading.Technique)
	applyIntConfig(cmd, "chunk-size", &readChunkSize, fileCfg.Reading.ChunkSize)
	applyIntConfig(cmd, "line-length", &readLineLength, fileCfg.Reading.LineLength)
	applyBoolConfig(cmd, "adaptive", &readAdaptive, fileCfg.Reading.Adaptive)
	return model.Config{
		Mode:       mode,
		WPM:        readWPM,
		Technique:  model.Technique(readTechnique),
		ChunkSize:  readChunkSize,
		LineLength: readLineLength,
	}
}

func validateConfig(cfg model.Config) error {
	if cfg.WPM < pacing.MinWPM || cfg.WPM > pacing.MaxWPM {
		return fmt.Errorf("--wpm must be between %d and %d", pacing.MinWPM, pacing.MaxWPM)
	}
	switch cfg.Technique {
	case model.TechniqueNormal, model.TechniquePacer, model.TechniqueFlash, model.TechniqueChunking:
	default:
		return fmt.Errorf("--technique must be one of normal, pacer, flash, chunking")
	}
	if cfg.ChunkSize < 1 || cfg.ChunkSize > maxChunkSize {
		return fmt.Errorf("--chunk-size must be between 1 and %d", maxChunkSize)
	}
	if cfg.LineLength < minLineLength {
		return fmt.Errorf("--line-length must be >= %d", minLineLength)
	}
	return nil
}

func validateTrainer(name string) error {
	switch pacing.Trainer(name) {
	case pacing.TrainerWord, pacing.TrainerPhrase, pacing.TrainerLine, pacing.TrainerRamp:
		return nil
	}
	return fmt.Errorf("--trainer must be one of word, phrase, line, ramp")
}

func validateSource(args []string) error {
	if readSample < 0 {
		return fmt.Errorf("--sample must be >= 1")
	}
	sources := len(args)
	if readSample > 0 {
		sources++
	}
	if readTextID != "" {
		sources++
	}
	if sources > 1 {
		return fmt.Errorf("use only one of [file], --sample and --text-id")
	}
	return nil
}

func runReading(cmd *cobra.Command, args []string, mode model.Mode) error {
	var cfg model.Config
	e, err := setup(cmd, func(fileCfg config.FileConfig) error {
		cfg = readingConfig(cmd, fileCfg, mode)
		if err := validateConfig(cfg); err != nil {
			return err
		}
		if mode == model.ModeTraining {
			if err := validateTrainer(readTrainer); err != nil {
				return err
			}
		}
		if mode == model.ModeMain {
			if readQuestions < 1 {
				return fmt.Errorf("--questions must be > 0")
			}
			if readLimit < 0 {
				return fmt.Errorf("--limit must be >= 0")
			}
		}
		return validateSource(args)
	})
	if err != nil {
		return err
	}
	defer e.close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	title, content, err := loadText(ctx, e, args, os.Stdin)
	if err != nil {
		return err
	}
	if readTitle != "" {
		title = readTitle
	}

	engine := adaptive.Default()
	if readAdaptive && !cmd.Flags().Changed("wpm") {
		report := stats.Load(ctx, e.repo, model.StatsConfig{}, e.log)
		cfg.WPM = adaptiveStartWPM(engine, report, content)
		e.log.Info("adaptive speed", zap.Int("wpm", cfg.WPM), zap.Int("sessions", report.Stats.TotalSessions))
	}

	opts := session.Options{
		Title:      title,
		WPMTarget:  cfg.WPM,
		ChunkSize:  cfg.ChunkSize,
		Technique:  cfg.Technique,
		LineLength: cfg.LineLength,
	}
	switch mode {
	case model.ModeMain:
		opts.MaxDuration = readLimit
		if readLimit == 0 {
			opts.MaxDuration = -1
		}
	case model.ModeTraining:
		opts.Trainer = pacing.Trainer(readTrainer)
	}

	events := tui.NewEvents()
	sess := session.New(e.repo, session.WithLogger(e.log), session.WithListener(events.Publish))
	if _, err := sess.Init(ctx, content, mode, opts); err != nil {
		return err
	}

	reader := tui.NewModel(sess, events, e.repo, tui.Options{
		Quiz:      mode == model.ModeMain && !readNoQuiz,
		Questions: readQuestions,
		Engine:    engine,
		Generator: quiz.New(e.log),
		Rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
		Log:       e.log,
	})
	program := tea.NewProgram(reader, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if res := reader.Result(); res != nil {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %d words in %.1f min, %d WPM\n",
			res.Mode, res.WordCount, res.DurationMin, res.WPM); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

// adaptiveStartWPM is the recommended speed from history, shifted for how
// hard content is relative to the reader's level.
func adaptiveStartWPM(engine *adaptive.Engine, report stats.Report, content string) int {
	base := engine.AdaptiveWPM(report.Stats, report.Progress)
	level := adaptive.ReadingLevel(report.Stats)
	return pacing.ClampWPM(base + adaptive.DifficultyAdjustment(level, textproc.Difficulty(content)))
}

// loadText resolves the reading text from, in order: a stored text id, a
// file argument (- for stdin), a sample number, piped stdin, or a random
// sample.
func loadText(ctx context.Context, e *env, args []string, stdin *os.File) (string, string, error) {
	if readTextID != "" {
		text, err := e.repo.GetText(ctx, readTextID)
		if err != nil {
			return "", "", fmt.Errorf("failed to load text %s: %w", readTextID, err)
		}
		return text.Title, text.Content, nil
	}
	if len(args) == 1 {
		if args[0] == "-" {
			return readStdin(stdin)
		}
		doc, err := importer.ReadFile(args[0])
		if err != nil {
			return "", "", err
		}
		return doc.Title, doc.Content, nil
	}
	if readSample == 0 && !term.IsTerminal(int(stdin.Fd())) {
		return readStdin(stdin)
	}
	list, err := samples.NewLibrary(config.DefaultSamplesPath()).List()
	if err != nil {
		return "", "", err
	}
	if len(list) == 0 {
		return "", "", fmt.Errorf("no sample texts available; pass a file")
	}
	idx := readSample - 1
	if readSample == 0 {
		idx = rand.New(rand.NewSource(time.Now().UnixNano())).Intn(len(list))
	}
	if idx >= len(list) {
		return "", "", fmt.Errorf("--sample must be between 1 and %d", len(list))
	}
	e.log.Debug("using sample text", zap.Int("index", idx+1), zap.String("title", list[idx].Title))
	return list[idx].Title, list[idx].Content, nil
}

func readStdin(r io.Reader) (string, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", "", fmt.Errorf("failed to read stdin: %w", err)
	}
	doc := importer.Import("-", data)
	if strings.TrimSpace(doc.Content) == "" {
		return "", "", fmt.Errorf("stdin is empty")
	}
	return doc.Title, doc.Content, nil
}

func newQuizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz [file]",
		Short: "Generate comprehension questions for a text",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runQuizCmd,
	}
	addTextSourceFlags(cmd)
	cmd.Flags().IntVar(&quizQuestions, "questions", quiz.DefaultQuestions, "number of questions")
	cmd.Flags().BoolVar(&quizPlain, "plain", false, "print the questions and answer key instead of taking the quiz")
	return cmd
}

func runQuizCmd(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, func(config.FileConfig) error {
		if quizQuestions < 1 {
			return fmt.Errorf("--questions must be > 0")
		}
		return validateSource(args)
	})
	if err != nil {
		return err
	}
	defer e.close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	_, content, err := loadText(ctx, e, args, os.Stdin)
	if err != nil {
		return err
	}
	questions := quiz.New(e.log).Generate(content, quizQuestions)
	if len(questions) == 0 {
		return fmt.Errorf("no questions could be generated from this text")
	}
	if quizPlain {
		return printQuiz(cmd.OutOrStdout(), questions)
	}

	m := tui.NewQuizModel(questions, tui.Options{
		Rand: rand.New(rand.NewSource(time.Now().UnixNano())),
		Log:  e.log,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run quiz TUI: %w", err)
	}
	return nil
}

func printQuiz(w io.Writer, questions []model.Question) error {
	var b strings.Builder
	for i, q := range questions {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, q.Type, q.Question)
		for j, opt := range q.Options {
			fmt.Fprintf(&b, "   %c) %s\n", 'a'+j, opt)
		}
		b.WriteString("\n")
	}
	b.WriteString("Answers:")
	for i, q := range questions {
		fmt.Fprintf(&b, " %d%c", i+1, 'a'+q.CorrectIndex)
	}
	b.WriteString("\n")
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
