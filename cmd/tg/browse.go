package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vanderheijden86/tourguide/pkg/browser"
	"github.com/vanderheijden86/tourguide/pkg/metrics"
	"github.com/vanderheijden86/tourguide/pkg/tour"
)

type browseOptions struct {
	url         string
	tourID      string
	metricsAddr string
	headed      bool
}

func newBrowseCmd(root *rootOptions) *cobra.Command {
	opts := &browseOptions{}
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Run a tour on a real page in Chrome",
		Long: `Open the app in Chrome and run a tour on it. Highlights are CSS classes on
the live DOM and step routes are resolved against --url.

Drive the tour from stdin:
  n  next      p  back      g N  go to step N
  s  skip      e  finish    r    restart      q  quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.url, "url", "", "base URL of the app (default from config)")
	cmd.Flags().StringVar(&opts.tourID, "tour", "", "tour to start")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address, e.g. :9090")
	cmd.Flags().BoolVar(&opts.headed, "headed", false, "show the browser window")
	_ = cmd.MarkFlagRequired("tour")
	return cmd
}

func runBrowse(cmd *cobra.Command, root *rootOptions, opts *browseOptions) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := openApp(ctx, root)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, ok := a.reg.Get(opts.tourID); !ok {
		return fmt.Errorf("unknown tour %q", opts.tourID)
	}

	base := opts.url
	if base == "" {
		base = a.cfg.Browser.BaseURL
	}
	headless := a.cfg.Browser.Headless && !opts.headed

	var rec *metrics.Recorder
	if opts.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		rec = metrics.New(reg)
		stop := serveMetrics(opts.metricsAddr, reg, a.log)
		defer stop()
	}

	page, err := browser.Launch(ctx, base, headless, a.log.Named("browser"))
	if err != nil {
		return err
	}
	defer page.Close()

	ctrl := a.controller(page, page, tour.WithMetrics(rec))
	defer ctrl.Close()

	stopWatch, err := a.watchTours(ctx, ctrl)
	if err != nil {
		return err
	}
	defer stopWatch()

	out := cmd.OutOrStdout()
	unsubscribe := ctrl.Subscribe(func(s tour.State) { writeState(out, s) })
	defer unsubscribe()

	ctrl.StartTour(opts.tourID)
	return driveFromInput(cmd.InOrStdin(), out, ctrl)
}

func serveMetrics(addr string, reg *prometheus.Registry, log *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("metrics server", zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("addr", addr))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// driver is the part of the controller stdin commands reach.
type driver interface {
	NextStep()
	PrevStep()
	GoToStep(index int)
	SkipTour()
	EndTour()
	RestartTour()
}

// driveFromInput runs one controller call per input line until q or EOF.
// Step numbers given to g are 1-based.
func driveFromInput(in io.Reader, out io.Writer, d driver) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "n", "next":
			d.NextStep()
		case "p", "prev", "back":
			d.PrevStep()
		case "g", "goto":
			if len(fields) < 2 {
				fmt.Fprintln(out, "usage: g N")
				continue
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Fprintf(out, "not a step number: %q\n", fields[1])
				continue
			}
			d.GoToStep(n - 1)
		case "s", "skip":
			d.SkipTour()
		case "e", "end", "finish":
			d.EndTour()
		case "r", "restart":
			d.RestartTour()
		case "q", "quit", "exit":
			return nil
		default:
			fmt.Fprintf(out, "unknown command %q\n", fields[0])
		}
	}
	return sc.Err()
}

func writeState(w io.Writer, s tour.State) {
	switch {
	case s.Active && s.Step != nil:
		fmt.Fprintf(w, "[%s %d/%d] %s\n", s.TourID, s.StepIndex+1, s.TotalSteps, s.Step.Title)
		if c := strings.TrimSpace(s.Step.Content); c != "" {
			fmt.Fprintf(w, "  %s\n", c)
		}
	case s.Pending != "":
		fmt.Fprintf(w, "opening %s…\n", s.Pending)
	default:
		fmt.Fprintln(w, "no tour running")
	}
}
