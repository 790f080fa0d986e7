package main

import (
	"errors"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/tourguide/pkg/ui"
)

func newPlayCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Open the terminal playground",
		Long: `Open the terminal playground: demo pages with the builtin tours (or the
configured tour files) running on them. Without a terminal, tg lists tours
instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, opts)
		},
	}
}

func runPlay(cmd *cobra.Command, opts *rootOptions) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return runTours(cmd, opts)
	}

	ctx := cmd.Context()
	a, err := openApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	site := ui.NewSite(a.cfg.UI.StartPath)
	ctrl := a.controller(site.Router, site.DOM)
	defer ctrl.Close()

	stop, err := a.watchTours(ctx, ctrl)
	if err != nil {
		return err
	}
	defer stop()

	m := ui.NewModel(ctrl, site, ui.DefaultTheme(lipgloss.DefaultRenderer()))
	defer m.Close()
	return runTUIProgram(m)
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated runs: set TG_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("TG_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
