package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ruminaider/toolkit/cmd/toolkit/tui"
	"github.com/ruminaider/toolkit/internal/profiles"
	"github.com/ruminaider/toolkit/internal/session"
)

var (
	selectLocal    bool
	selectSelected string
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Pick a client profile interactively",
	Long: "Opens the profile selector. By default the pick becomes the shared active profile. " +
		"With --local the shared profile is left alone and the picked id is printed on exit.",
	Args: cobra.NoArgs,
	RunE: runSelect,
}

func runSelect(cmd *cobra.Command, args []string) error {
	// TTY guard: fall back to show when stdin is not a terminal
	// (piping, CI, scripts, etc.)
	if !term.IsTerminal(os.Stdin.Fd()) {
		return profileShowCmd.RunE(cmd, args)
	}

	for _, dir := range []string{cfg.Dir, filepath.Dir(cfg.Registry)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	reg, err := profiles.LoadRegistry(cfg.Registry)
	if err != nil {
		return err
	}

	local := selectLocal || !cfg.Global()
	var (
		model  *tui.Model
		store  *session.Store
		active *session.ActiveFile
	)
	if local {
		// The shared active profile is neither loaded nor watched.
		model = tui.NewLocalModel(reg, selectSelected, logger)
	} else {
		active = session.NewActiveFile(cfg.Dir)
		store, err = session.Open(active)
		if err != nil {
			return err
		}
		model = tui.NewGlobalModel(reg, store, logger)
		stop := session.Persist(store, active, logger)
		defer stop()
	}
	defer model.Close()

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(model, opts...)

	w, err := session.NewWatcher(reg, store, active, logger.Named("watcher"))
	if err != nil {
		return err
	}
	defer func() {
		if err := w.Close(); err != nil {
			logger.Warn("closing watcher", zap.Error(err))
		}
	}()
	w.OnChange(func() { p.Send(tui.ExternalChangeMsg{}) })

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		return err
	}

	logger.Info("selector started", zap.Bool("local", local))
	if _, err := p.Run(); err != nil {
		return err
	}

	reportSelection(cmd.OutOrStdout(), model)
	return nil
}

// reportSelection prints the outcome after the selector exits. A local
// run prints the picked id, None for a None pick, and nothing when no
// pick was made; a global run prints the shared active profile.
func reportSelection(out io.Writer, m *tui.Model) {
	if m.Selector().Global() {
		fmt.Fprintf(out, "Active profile: %s\n", m.Selector().Label())
		return
	}
	picked, ok := m.LocalChoice()
	switch {
	case !ok:
	case picked == nil:
		fmt.Fprintln(out, profiles.NoneLabel)
	default:
		fmt.Fprintln(out, picked.ID)
	}
}

func init() {
	selectCmd.Flags().BoolVar(&selectLocal, "local", false, "Pick for this run only; the shared active profile is not changed")
	selectCmd.Flags().StringVar(&selectSelected, "selected", "", "Initial profile id for --local")
}
