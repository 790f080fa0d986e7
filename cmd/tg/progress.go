package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/tourguide/pkg/tour"
)

func newToursCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tours",
		Short: "List tours and which ones you have finished",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTours(cmd, opts)
		},
	}
}

func runTours(cmd *cobra.Command, opts *rootOptions) error {
	a, err := openApp(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer a.Close()

	ctrl := a.offline()
	defer ctrl.Close()
	writeTours(cmd.OutOrStdout(), ctrl.Tours())
	return nil
}

func writeTours(w io.Writer, tours []tour.Listing) {
	if len(tours) == 0 {
		fmt.Fprintln(w, "No tours configured.")
		return
	}
	width := 0
	for _, t := range tours {
		if len(t.ID) > width {
			width = len(t.ID)
		}
	}
	for _, t := range tours {
		mark := " "
		if t.Completed {
			mark = "✓"
		}
		fmt.Fprintf(w, "%s %-*s  %s (%d steps)\n", mark, width, t.ID, t.Title, len(t.Steps))
	}
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show your display name and finished tours",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctrl := a.offline()
			defer ctrl.Close()
			writeStatus(cmd.OutOrStdout(), ctrl.UserName(), ctrl.CompletedTours(), a.reg.Len())
			return nil
		},
	}
}

func writeStatus(w io.Writer, name string, completed []string, total int) {
	if name == "" {
		name = "(not set)"
	}
	fmt.Fprintf(w, "Name:      %s\n", name)
	fmt.Fprintf(w, "Completed: %d/%d", len(completed), total)
	if len(completed) > 0 {
		fmt.Fprintf(w, " (%s)", strings.Join(completed, ", "))
	}
	fmt.Fprintln(w)
}

var errNameRequired = errors.New("a name is required when stdin is not a terminal")

func newNameCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "name [NAME]",
		Short: "Set the name tours greet you with",
		Long: `Set the name substituted for {userName} in tour text. Without an argument
tg asks for it interactively.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			} else {
				var err error
				if name, err = promptName(); err != nil {
					return err
				}
			}
			name = strings.TrimSpace(name)

			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctrl := a.offline()
			defer ctrl.Close()
			ctrl.SetUserName(name)
			if name == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Name cleared.")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Hi %s!\n", name)
			}
			return nil
		},
	}
}

func promptName() (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errNameRequired
	}
	var name string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("What should tours call you?").
				Placeholder("Ada").
				Value(&name),
		),
	).WithTheme(huh.ThemeDracula())
	if err := form.Run(); err != nil {
		return "", err
	}
	return name, nil
}

func newResetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget which tours you have finished",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctrl := a.offline()
			defer ctrl.Close()
			ctrl.ResetProgress()
			fmt.Fprintln(cmd.OutOrStdout(), "Progress cleared.")
			return nil
		},
	}
}
