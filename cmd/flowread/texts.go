package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/flowread/internal/config"
	"github.com/verte-zerg/flowread/internal/importer"
	"github.com/verte-zerg/flowread/internal/model"
	"github.com/verte-zerg/flowread/internal/samples"
	"github.com/verte-zerg/flowread/internal/validate"
)

const defaultTextsLimit = 20

var (
	textsLimit       int
	textsImportTitle string
	samplesAdd       string
	samplesAddTitle  string
	samplesDelete    int
)

func newTextsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "texts",
		Short: "Manage stored and sample texts",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored texts",
		Args:  cobra.NoArgs,
		RunE:  runTextsListCmd,
	}
	listCmd.Flags().IntVar(&textsLimit, "limit", defaultTextsLimit, "number of texts to show (0 for all)")

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a plain-text or Markdown file",
		Args:  cobra.ExactArgs(1),
		RunE:  runTextsImportCmd,
	}
	importCmd.Flags().StringVar(&textsImportTitle, "title", "", "title for the text (default: first heading or file name)")

	samplesCmd := &cobra.Command{
		Use:   "samples",
		Short: "List, add or delete sample texts",
		Args:  cobra.NoArgs,
		RunE:  runTextsSamplesCmd,
	}
	samplesCmd.Flags().StringVar(&samplesAdd, "add", "", "add the passage in this file to the samples")
	samplesCmd.Flags().StringVar(&samplesAddTitle, "title", "", "title for --add")
	samplesCmd.Flags().IntVar(&samplesDelete, "delete", 0, "delete sample N")

	cmd.AddCommand(listCmd, importCmd, samplesCmd)
	return cmd
}

func runTextsListCmd(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd, func(config.FileConfig) error {
		if textsLimit < 0 {
			return fmt.Errorf("--limit must be >= 0")
		}
		return nil
	})
	if err != nil {
		return err
	}
	defer e.close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	texts, err := e.repo.ListTexts(ctx, textsLimit)
	if err != nil {
		return fmt.Errorf("failed to list texts: %w", err)
	}
	if len(texts) == 0 {
		logErrln("No texts stored yet. Import one with: flowread texts import <file>")
		return nil
	}
	return writeTexts(cmd.OutOrStdout(), texts)
}

func writeTexts(w io.Writer, texts []model.Text) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tWORDS\tDIFFICULTY\tCREATED")
	for _, t := range texts {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\t%s\n", t.ID, t.Title, t.WordCount, t.Difficulty, t.CreatedAt.Local().Format("2006-01-02"))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func runTextsImportCmd(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, nil)
	if err != nil {
		return err
	}
	defer e.close()

	doc, err := importer.ReadFile(args[0])
	if err != nil {
		return err
	}
	if textsImportTitle != "" {
		doc.Title = textsImportTitle
	}
	if err := validate.New().Text(model.ModeMain, doc.Content); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	text, err := e.repo.SaveText(ctx, doc.Title, doc.Content)
	if err != nil {
		return fmt.Errorf("failed to save text: %w", err)
	}
	e.log.Info("text imported", zap.String("id", text.ID), zap.String("path", args[0]), zap.Int("words", text.WordCount))
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s (%d words)\n", text.ID, text.Title, text.WordCount); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func runTextsSamplesCmd(cmd *cobra.Command, _ []string) error {
	if _, err := loadFileConfig(cmd); err != nil {
		return err
	}
	if samplesAdd != "" && samplesDelete != 0 {
		return fmt.Errorf("--add and --delete are mutually exclusive")
	}
	if samplesDelete < 0 {
		return fmt.Errorf("--delete must be >= 1")
	}

	lib := samples.NewLibrary(config.DefaultSamplesPath())
	out := cmd.OutOrStdout()
	switch {
	case samplesAdd != "":
		doc, err := importer.ReadFile(samplesAdd)
		if err != nil {
			return err
		}
		if samplesAddTitle != "" {
			doc.Title = samplesAddTitle
		}
		s, err := lib.Add(doc.Title, doc.Content)
		if err != nil {
			return err
		}
		logErrf("Added %q (%d words) to %s\n", s.Title, s.WordCount, lib.Path())
		return nil
	case samplesDelete > 0:
		ok, err := lib.Delete(samplesDelete - 1)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no sample text %d", samplesDelete)
		}
		logErrf("Deleted sample %d\n", samplesDelete)
		return nil
	}

	list, err := lib.List()
	if err != nil {
		return err
	}
	return writeSamples(out, list)
}

func writeSamples(w io.Writer, list []model.SampleText) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTITLE\tWORDS\tDIFFICULTY\tOPENING")
	for i, s := range list {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.2f\t%s\n", i+1, s.Title, s.WordCount, s.Difficulty, opening(s.Content, 40))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func opening(content string, limit int) string {
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit-3]) + "..."
}
