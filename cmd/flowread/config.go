package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/flowread/internal/config"
	"github.com/verte-zerg/flowread/internal/session"
	"github.com/verte-zerg/flowread/internal/textproc"
)

var configForce bool

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create, locate or edit the config file",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigInitCmd,
	}
	initCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print config, data and log paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writePaths(cmd.OutOrStdout())
		},
	}

	editCmd := &cobra.Command{
		Use:   "edit",
		Short: "Open the config file in $EDITOR",
		Args:  cobra.NoArgs,
		RunE:  runConfigEditCmd,
	}

	cmd.AddCommand(initCmd, pathCmd, editCmd)
	return cmd
}

func defaultConfigTemplate() string {
	return config.DefaultTemplate(session.DefaultWPM, defaultTechnique, session.DefaultChunkSize, textproc.DefaultLineLength)
}

// writeConfig creates the config file. An existing file is kept unless force is set.
func writeConfig(path string, force bool) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		} else if !os.IsNotExist(err) {
			return false, fmt.Errorf("failed to stat config: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config: %w", err)
	}
	return true, nil
}

func runConfigInitCmd(_ *cobra.Command, _ []string) error {
	written, err := writeConfig(globalConfigPath, configForce)
	if err != nil {
		return err
	}
	if !written {
		return fmt.Errorf("config already exists: %s (use --force to overwrite)", globalConfigPath)
	}
	logErrf("Wrote %s\n", globalConfigPath)
	return nil
}

func writePaths(w io.Writer) error {
	lines := []string{
		"config:  " + globalConfigPath,
		"db:      " + config.DefaultDBPath(),
		"samples: " + config.DefaultSamplesPath(),
		"log:     " + config.DefaultLogPath(),
	}
	if _, err := fmt.Fprintln(w, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func runConfigEditCmd(_ *cobra.Command, _ []string) error {
	if _, err := writeConfig(globalConfigPath, false); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], globalConfigPath)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}
