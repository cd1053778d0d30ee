package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	errgo "gopkg.in/errgo.v1"

	"github.com/rogpeppe/ehz/ehzconfig"
	"github.com/rogpeppe/ehz/ehzserver"
	"github.com/rogpeppe/ehz/ingest"
	"github.com/rogpeppe/ehz/locale"
	"github.com/rogpeppe/ehz/monitor"
	"github.com/rogpeppe/ehz/ntpclock"
	"github.com/rogpeppe/ehz/prefs"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the live status page",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return errgo.Mask(err)
		}
		if listenAddr != "" {
			cfg.ListenAddr = listenAddr
		}
		return serve(cfg)
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address (overrides configuration)")
	rootCmd.AddCommand(serveCmd)
}

func serve(cfg *ehzconfig.Config) error {
	dialer, err := cfg.Stream.Dialer()
	if err != nil {
		return errgo.Mask(err)
	}
	cat := locale.Default()
	if cfg.LocalesFile != "" {
		if err := cat.LoadFile(cfg.LocalesFile); err != nil {
			return errgo.Mask(err)
		}
	}
	var store prefs.Store = new(prefs.MemStore)
	if cfg.PrefsPath != "" {
		bstore, err := prefs.OpenBolt(cfg.PrefsPath)
		if err != nil {
			return errgo.Mask(err)
		}
		defer bstore.Close()
		store = bstore
	} else {
		logger.Warningf("no preferences path configured; locale choice will not persist")
	}
	now := time.Now
	if cfg.NTPHost != "" {
		clock, err := ntpclock.New(ntpclock.Params{
			Host: cfg.NTPHost,
		})
		if err != nil {
			return errgo.Mask(err)
		}
		defer clock.Close()
		now = clock.Now
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := ingest.NewMetrics()
	registry.MustRegister(metrics)

	m, err := monitor.New(monitor.Params{
		Dialer:        dialer,
		Catalog:       cat,
		Prefs:         store,
		DefaultLocale: locale.Tag(cfg.DefaultLocale),
		Images:        cfg.Images,
		RefreshPeriod: cfg.RefreshPeriod,
		Now:           now,
		BufferSize:    cfg.BufferSize,
		Metrics:       metrics,
	})
	if err != nil {
		return errgo.Mask(err)
	}
	defer m.Close()
	h, err := ehzserver.New(ehzserver.Params{
		Monitor:  m,
		ImageDir: cfg.ImageDir,
		Gatherer: registry,
	})
	if err != nil {
		return errgo.Mask(err)
	}
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: h,
	}
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigc
		logger.Infof("shutting down")
		srv.Close()
	}()
	logger.Infof("listening on %s", cfg.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errgo.Mask(err)
	}
	return nil
}
