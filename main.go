package main

import (
	"context"
	"embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	nethttp "net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/firefart/go-version-text/internal/config"
	"github.com/firefart/go-version-text/internal/http"
	"github.com/firefart/go-version-text/internal/metrics"
	"github.com/firefart/go-version-text/internal/resource"
	"github.com/firefart/go-version-text/internal/server"
	"github.com/firefart/go-version-text/internal/version"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/netutil"
	"gopkg.in/natefinch/lumberjack.v2"

	_ "net/http/pprof" // nolint: gosec
)

// bundled version artifacts, served for classpath: identifiers
//
//go:embed versions
var bundledVersions embed.FS

type cliConfig struct {
	debugMode      bool
	jsonOutput     bool
	configFilename string
}

func main() {
	var cli cliConfig
	var showVersion bool
	var configCheckMode bool

	flag.BoolVar(&cli.debugMode, "debug", false, "Enable DEBUG mode")
	flag.StringVar(&cli.configFilename, "config", "", "config file to use. Environment variables prefixed with "+config.EnvPrefix+" override values")
	flag.BoolVar(&cli.jsonOutput, "json", false, "output in json instead")
	flag.BoolVar(&configCheckMode, "configcheck", false, "just check the config")
	flag.BoolVar(&showVersion, "version", false, "show version")
	flag.Parse()

	if showVersion {
		buildInfo, ok := debug.ReadBuildInfo()
		if !ok {
			fmt.Println("Unable to determine version information") // nolint: forbidigo
			os.Exit(1)
		}
		fmt.Printf("%s", buildInfo) // nolint: forbidigo
		os.Exit(0)
	}

	logger := newLogger(cli.debugMode, cli.jsonOutput, nil)
	ctx := context.Background()
	var err error
	if configCheckMode {
		err = configCheck(cli.configFilename)
	} else {
		err = run(ctx, logger, cli)
	}

	if err != nil {
		// check if we have a multierror
		var merr *multierror.Error
		if errors.As(err, &merr) {
			for _, e := range merr.Errors {
				logger.Error(e.Error())
			}
			os.Exit(1)
		}
		// a normal error
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func configCheck(configFilename string) error {
	_, err := config.GetConfig(configFilename)
	return err
}

func run(ctx context.Context, logger *slog.Logger, cliConfig cliConfig) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	configuration, err := config.GetConfig(cliConfig.configFilename)
	if err != nil {
		return err
	}

	if configuration.Logging.File != "" {
		logFile := &lumberjack.Logger{
			Filename:   configuration.Logging.File,
			MaxSize:    configuration.Logging.MaxSize,
			MaxBackups: configuration.Logging.MaxBackups,
			MaxAge:     configuration.Logging.MaxAge,
			Compress:   configuration.Logging.Compress,
		}
		defer func(f io.Closer) {
			if err := f.Close(); err != nil {
				logger.Error("error on log file close", slog.String("err", err.Error()))
			}
		}(logFile)
		logger = newLogger(cliConfig.debugMode, cliConfig.jsonOutput, logFile)
	}

	notify, err := setupNotifications(configuration, logger)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	m, err := metrics.NewMetrics(reg, metrics.WithAccessLog())
	if err != nil {
		return err
	}

	httpClient, err := http.NewHTTPClient(configuration, logger, cliConfig.debugMode)
	if err != nil {
		return err
	}

	resolver := resource.NewSchemeResolver(
		resource.WithBundle(bundledVersions),
		resource.WithBaseDir(configuration.Version.BaseDir),
		resource.WithHTTPClient(httpClient),
		resource.WithMetrics(m),
	)
	aggregator := version.NewAggregator(resolver, configuration.Version.Resources...)

	s, err := server.NewServer(
		server.WithLogger(logger),
		server.WithConfig(configuration),
		server.WithNotify(notify),
		server.WithDebug(cliConfig.debugMode),
		server.WithMetrics(m),
		server.WithAccessLog(),
		server.WithVersionSource(aggregator),
	)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", configuration.Server.Listen)
	if err != nil {
		return fmt.Errorf("could not listen on %s: %w", configuration.Server.Listen, err)
	}
	if configuration.Server.MaxConnections > 0 {
		listener = netutil.LimitListener(listener, configuration.Server.MaxConnections)
	}

	srv := &nethttp.Server{
		Handler:           s,
		ReadHeaderTimeout: configuration.Timeout,
		ReadTimeout:       configuration.Timeout,
		WriteTimeout:      configuration.Timeout,
	}

	tlsEnabled := configuration.Server.TLS.Enabled()
	if tlsEnabled {
		tlsConfig, err := setupTLSConfig(logger, configuration.Server.TLS)
		if err != nil {
			return err
		}
		srv.TLSConfig = tlsConfig
	}

	logger.Info("Starting server",
		slog.String("host", configuration.Server.Listen),
		slog.Bool("tls", tlsEnabled),
		slog.Int("max_connections", configuration.Server.MaxConnections),
		slog.Any("resources", aggregator.Identifiers()),
		slog.Duration("gracefultimeout", configuration.Server.GracefulTimeout),
		slog.Duration("timeout", configuration.Timeout),
		slog.Bool("debug", cliConfig.debugMode),
	)

	go func() {
		var err error
		if tlsEnabled {
			err = srv.ServeTLS(listener, configuration.Server.TLS.PublicKey, configuration.Server.TLS.PrivateKey)
		} else {
			err = srv.Serve(listener)
		}
		if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			logger.Error("error on serve", slog.String("err", err.Error()))
			// emit signal to kill server
			cancel()
		}
	}()

	var pprofSrv *nethttp.Server
	if configuration.Server.PprofListen != "" {
		logger.Info("Starting pprof server",
			slog.String("host", configuration.Server.PprofListen),
		)

		pprofMux := nethttp.NewServeMux()
		// pprof registers itself on the DefaultServeMux which is not used
		// anywhere else, so only forward the debug endpoints to it
		pprofMux.Handle("/debug/pprof/", nethttp.DefaultServeMux)
		pprofSrv = &nethttp.Server{
			Addr:              configuration.Server.PprofListen,
			Handler:           pprofMux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := pprofSrv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
				logger.Error("error on pprof", slog.String("err", err.Error()))
				cancel()
			}
		}()
	}

	var metricsSrv *nethttp.Server
	if configuration.Server.MetricsListen != "" {
		logger.Info("Starting metrics server",
			slog.String("host", configuration.Server.MetricsListen),
		)

		metricsMux := nethttp.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		metricsSrv = &nethttp.Server{
			Addr:              configuration.Server.MetricsListen,
			Handler:           metricsMux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
				logger.Error("error on metric", slog.String("err", err.Error()))
				cancel()
			}
		}()
	}

	// wait for a signal
	<-ctx.Done()
	logger.Info("received shutdown signal")
	// create a new context for shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), configuration.Server.GracefulTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("error on srv shutdown", slog.String("err", err.Error()))
	}
	if pprofSrv != nil {
		if err := pprofSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("error on pprofsrv shutdown", slog.String("err", err.Error()))
		}
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("error on metricsSrv shutdown", slog.String("err", err.Error()))
		}
	}
	return nil
}
