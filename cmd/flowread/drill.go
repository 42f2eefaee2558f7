package main

import (
	"fmt"
	"math/rand"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/flowread/internal/config"
	"github.com/verte-zerg/flowread/internal/drills"
	"github.com/verte-zerg/flowread/internal/tui"
)

var drillSize int

func newDrillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drill",
		Short: "Warm-up drills",
	}

	schulteCmd := &cobra.Command{
		Use:   "schulte",
		Short: "Find the numbers of a shuffled grid in order",
		Args:  cobra.NoArgs,
		RunE:  runSchulteCmd,
	}
	schulteCmd.Flags().IntVar(&drillSize, "size", drills.DefaultSchulteSize, "grid size")

	memoryCmd := &cobra.Command{
		Use:   "memory",
		Short: "Memorize a short passage and answer recall questions",
		Args:  cobra.NoArgs,
		RunE:  runMemoryCmd,
	}

	cmd.AddCommand(schulteCmd, memoryCmd)
	return cmd
}

func runSchulteCmd(cmd *cobra.Command, _ []string) error {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	var game *drills.Schulte
	e, err := setup(cmd, func(config.FileConfig) error {
		var err error
		game, err = drills.NewSchulte(drillSize, rnd)
		return err
	})
	if err != nil {
		return err
	}
	defer e.close()

	program := tea.NewProgram(tui.NewSchulteModel(game, e.repo, e.log), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run drill TUI: %w", err)
	}
	return nil
}

func runMemoryCmd(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd, nil)
	if err != nil {
		return err
	}
	defer e.close()

	passage := drills.PickPassage(rand.New(rand.NewSource(time.Now().UnixNano())))
	program := tea.NewProgram(tui.NewMemoryModel(passage, e.repo, e.log, time.Now()), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run drill TUI: %w", err)
	}
	return nil
}
