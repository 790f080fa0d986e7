package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vanderheijden86/tourguide/pkg/config"
	"github.com/vanderheijden86/tourguide/pkg/debug"
	"github.com/vanderheijden86/tourguide/pkg/highlight"
	"github.com/vanderheijden86/tourguide/pkg/navigation"
	"github.com/vanderheijden86/tourguide/pkg/registry"
	"github.com/vanderheijden86/tourguide/pkg/store"
	"github.com/vanderheijden86/tourguide/pkg/tour"
	"github.com/vanderheijden86/tourguide/pkg/watcher"
)

// app is what every command needs: config, progress store and catalog.
type app struct {
	cfg   config.Config
	store store.Store
	reg   *registry.Registry
	log   *zap.Logger
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

func openApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	log := debug.Named("tg")

	reg, err := loadRegistry(ctx, cfg.Tours.Paths, log)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Store.Backend, cfg.StorePath())
	if err != nil {
		return nil, fmt.Errorf("opening progress store: %w", err)
	}
	log.Debug("app ready",
		zap.String("store", cfg.Store.Backend),
		zap.String("store_path", cfg.StorePath()),
		zap.Int("tours", reg.Len()),
	)
	return &app{cfg: cfg, store: st, reg: reg, log: log}, nil
}

// loadRegistry loads tour files from paths, or the builtin demo catalog when
// none are configured.
func loadRegistry(ctx context.Context, paths []string, log *zap.Logger) (*registry.Registry, error) {
	if len(paths) == 0 {
		return registry.Builtin(), nil
	}
	reg, results, err := registry.Load(ctx, paths...)
	for _, res := range results {
		if res.Error != nil {
			log.Warn("tour file rejected", zap.String("path", res.Path), zap.Error(res.Error))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("loading tours: %w", err)
	}
	return reg, nil
}

func (a *app) controller(router navigation.Router, port highlight.Port, opts ...tour.Option) *tour.Controller {
	base := []tour.Option{tour.WithLogger(a.log)}
	if a.cfg.Timing.SettleWindow > 0 {
		base = append(base, tour.WithSettleWindow(a.cfg.Timing.SettleWindow))
	}
	if a.cfg.Timing.ScrollDelay > 0 {
		base = append(base, tour.WithScrollDelay(a.cfg.Timing.ScrollDelay))
	}
	return tour.NewController(a.reg, a.store, router, port, append(base, opts...)...)
}

// offline returns a controller over an in-memory page, for commands that only
// read or change progress.
func (a *app) offline() *tour.Controller {
	return a.controller(navigation.NewMemoryRouter(a.cfg.UI.StartPath), highlight.NewMemoryDOM())
}

// watchTours hot-reloads the catalog into ctrl when tour files change. The
// returned stop func is safe to call when watching is off.
func (a *app) watchTours(ctx context.Context, ctrl *tour.Controller) (func(), error) {
	if !a.cfg.Tours.Watch || len(a.cfg.Tours.Paths) == 0 {
		return func() {}, nil
	}
	paths := a.cfg.Tours.Paths
	w, err := watcher.NewWatcher(paths,
		watcher.WithFilter(registry.IsTourFile),
		watcher.WithOnChange(func() {
			reg, err := loadRegistry(ctx, paths, a.log)
			if err != nil {
				a.log.Warn("tour reload failed, keeping previous catalog", zap.Error(err))
				return
			}
			ctrl.SetRegistry(reg)
			a.log.Info("tours reloaded", zap.Int("tours", reg.Len()))
		}),
		watcher.WithOnError(func(err error) {
			a.log.Warn("tour watcher", zap.Error(err))
		}),
	)
	if err != nil {
		return nil, err
	}
	if err := w.Start(); err != nil {
		return nil, fmt.Errorf("watching tours: %w", err)
	}
	a.log.Debug("watching tours", zap.Strings("paths", paths), zap.Bool("polling", w.IsPolling()))
	return w.Stop, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
