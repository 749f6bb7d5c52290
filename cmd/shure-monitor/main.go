// Command shure-monitor continuously ingests telemetry from Shure wireless
// receivers and forwards it to Redis, SQLite history, Prometheus, or the
// structured log.
//
// It is built to run under systemd: readiness and status go through
// sd_notify, and log records go straight to the journal when
// JOURNAL_STREAM is set. Outside systemd both fall back to plain logging.
//
// Usage:
//
//	shure-monitor [flags]
//
// Flags:
//
//	-host string          Receiver hostname or IP
//	-port int             Control port (default 2202)
//	-device string        Device family: ad4d, p10t (default "ad4d")
//	-interval duration    Poll interval for ad4d (default 5s)
//	-redis-addr string    Redis address for latest-value storage
//	-history string       SQLite path for append-only telemetry history
//	-metrics-addr string  Listen address for Prometheus /metrics
//	-config string        YAML file describing multiple receivers
//	-log-level string     Log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	# One receiver, metrics into Redis
//	shure-monitor -host 192.168.1.50 -device ad4d -redis-addr localhost:6379
//
//	# A whole rack from a config file, with Prometheus scraping
//	shure-monitor -config /etc/shure/receivers.yaml -metrics-addr :9216
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shuretools/shurelink/internal/logging"
	"github.com/shuretools/shurelink/internal/metrics"
	"github.com/shuretools/shurelink/internal/notify"
	"github.com/shuretools/shurelink/pkg/device"
	"github.com/shuretools/shurelink/pkg/monitor"
	"github.com/shuretools/shurelink/pkg/store"
)

func main() {
	var (
		host        string
		port        int
		family      string
		interval    time.Duration
		redisAddr   string
		historyPath string
		metricsAddr string
		configPath  string
		logLevel    string
	)

	flag.StringVar(&host, "host", "", "Receiver hostname or IP")
	flag.IntVar(&port, "port", 2202, "Control port")
	flag.StringVar(&family, "device", "ad4d", "Device family: ad4d, p10t")
	flag.DurationVar(&interval, "interval", 5*time.Second, "Poll interval (ad4d)")
	flag.StringVar(&redisAddr, "redis-addr", "", "Redis address for latest-value storage")
	flag.StringVar(&historyPath, "history", "", "SQLite path for telemetry history")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "Listen address for Prometheus /metrics")
	flag.StringVar(&configPath, "config", "", "YAML file describing multiple receivers")
	flag.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	logger := logging.Setup(logging.ParseLevel(logLevel))

	var (
		cfg *Config
		err error
	)
	if configPath != "" {
		cfg, err = LoadConfig(configPath)
		if err != nil {
			logger.Error("failed to load config", "path", configPath, "error", err)
			os.Exit(1)
		}
		// Flags fill in whatever the file leaves empty.
		if cfg.RedisAddr == "" {
			cfg.RedisAddr = redisAddr
		}
		if cfg.History == "" {
			cfg.History = historyPath
		}
		if cfg.MetricsAddr == "" {
			cfg.MetricsAddr = metricsAddr
		}
	} else {
		if host == "" {
			fmt.Fprintln(os.Stderr, "missing -host (or -config)")
			os.Exit(1)
		}
		cfg = &Config{
			RedisAddr:   redisAddr,
			History:     historyPath,
			MetricsAddr: metricsAddr,
			Receivers: []ReceiverConfig{{
				Host:     host,
				Port:     port,
				Device:   family,
				Interval: interval,
			}},
		}
	}

	if err := run(cfg); err != nil {
		logger.Error("monitor failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reporter := notify.New(nil)

	sinks, promSink, closeSinks, err := assembleSinks(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSinks()

	var promServer *metrics.Server
	if promSink != nil {
		promServer = metrics.NewServer(cfg.MetricsAddr, promSink)
	}

	group, ctx := errgroup.WithContext(ctx)

	if promServer != nil {
		group.Go(promServer.Start)
		group.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return promServer.Stop(shutdownCtx)
		})
	}

	for _, rcv := range cfg.Receivers {
		f, err := device.ParseFamily(rcv.Device)
		if err != nil {
			return err
		}

		mcfg := monitor.DefaultConfig()
		mcfg.Host = rcv.Host
		mcfg.Family = f
		if rcv.Port != 0 {
			mcfg.Port = rcv.Port
		}
		if rcv.Interval != 0 {
			mcfg.PollInterval = rcv.Interval
		}

		var rep monitor.StatusReporter = reporter
		if promSink != nil {
			rep = promSink.NewReporter(rcv.Host, reporter)
		}

		m := monitor.New(mcfg, sinks, rep)
		group.Go(func() error {
			return m.Run(ctx)
		})
	}

	reporter.Ready()
	err = group.Wait()
	reporter.Stopping()
	return err
}

// assembleSinks builds the sink stack from the enabled backends. With
// nothing configured every observation still lands in the log. An
// unreachable Redis at startup is not fatal: the client redials on every
// write, so writes recover when the server comes back.
func assembleSinks(ctx context.Context, cfg *Config) (sinks monitor.MultiSink, promSink *metrics.Sink, closer func(), err error) {
	var closers []func()
	closer = func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.RedisAddr != "" {
		redisSink := store.NewRedisSink(cfg.RedisAddr)
		closers = append(closers, func() { redisSink.Close() })
		if pingErr := redisSink.Ping(ctx); pingErr != nil {
			slog.Warn("redis unreachable, writes will retry",
				"addr", cfg.RedisAddr, "error", pingErr)
		}
		sinks = append(sinks, redisSink)
	}

	if cfg.History != "" {
		history, histErr := store.NewHistory(cfg.History)
		if histErr != nil {
			closer()
			return nil, nil, nil, histErr
		}
		closers = append(closers, func() { history.Close() })
		sinks = append(sinks, history)
	}

	if cfg.MetricsAddr != "" {
		promSink = metrics.NewSink()
		sinks = append(sinks, promSink)
	}

	if len(sinks) == 0 {
		sinks = append(sinks, store.NewLogSink(nil))
	}
	return sinks, promSink, closer, nil
}
