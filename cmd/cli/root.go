package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/limaJavier/labtimetabling/internal/config"
	"github.com/limaJavier/labtimetabling/internal/logger"
	"github.com/limaJavier/labtimetabling/internal/metrics"
	"github.com/limaJavier/labtimetabling/pkg/engine"
	"github.com/limaJavier/labtimetabling/pkg/schedule"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "labsched",
	Short:        "Laboratory session timetabling",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json), defaults plus LAB_ environment when empty")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// Everything a command needs: configuration, a logger and an engine whose metrics are dumped on close
type session struct {
	cfg      *config.Config
	log      logger.Logger
	engine   *engine.Engine
	registry *prometheus.Registry
}

func newSession(component string) (*session, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	log := logger.New(component)

	registry := prometheus.NewRegistry()
	sink, err := metrics.NewPromSink(registry)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	store := schedule.NewStore(cfg.Store.History, log)
	return &session{
		cfg:      cfg,
		log:      log,
		engine:   engine.New(nil, nil, store, sink, log),
		registry: registry,
	}, nil
}

func (s *session) close() {
	if s.cfg.Metrics.Textfile == "" {
		return
	}
	if err := metrics.WriteTextfile(s.cfg.Metrics.Textfile, s.registry); err != nil {
		s.log.Errorf("metrics dump: %v", err)
	}
}

// Interruptions cancel the run in flight, which then settles with its best partial schedule
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
