package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/benbjohnson/clock"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rust-practice/conn-mon/internal/config"
	"github.com/rust-practice/conn-mon/internal/domain"
	"github.com/rust-practice/conn-mon/internal/httpapi"
	"github.com/rust-practice/conn-mon/internal/logging"
	"github.com/rust-practice/conn-mon/internal/metrics"
	"github.com/rust-practice/conn-mon/internal/monitor"
	"github.com/rust-practice/conn-mon/internal/notify"
	"github.com/rust-practice/conn-mon/internal/ping"
)

// channelBuffer stands in for the unbounded queues of the design: the
// router drains far faster than pollers produce, so this never fills in
// practice, and blocking the producer is the safe degradation if it does.
const channelBuffer = 1024

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath, logLevel string
	cmd := &cobra.Command{
		Use:          "conn-mon",
		Short:        "conn-mon monitors the quality of a connection to a set of hosts",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, logLevel)
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&configPath, "config", "c", "config.yaml", "config file to use")
	fs.StringVarP(&logLevel, "log-level", "l", "warn", "console log level (debug, info, warn, error)")
	return cmd
}

func run(configPath, logLevel string) error {
	// Transport secrets (webhook URL, SMTP credentials) may live in a .env
	// next to the binary; absence is fine.
	_ = godotenv.Load()

	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewLogger(cfg.LogDir, level)
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	defer logger.Sync()

	cwd, _ := os.Getwd()
	logger.Warn("starting_up", zap.String("dir", cwd))

	clk := clock.New()
	m := metrics.New(prometheus.DefaultRegisterer)

	results := make(chan domain.ResponseMessage, channelBuffer)
	events := make(chan domain.EventMessage, channelBuffer)

	status := httpapi.NewStatusStore()
	timing := monitor.Timing{
		FirstAlertDelay:  cfg.MinTimeToFirstAlert.Duration(),
		ReminderInterval: cfg.ReminderInterval.Duration(),
		MinFlushInterval: cfg.MinTimeBetweenWrites.Duration(),
	}
	router := monitor.NewRouter(results, events, cfg.EventsDir, timing, clk, logger, m, status)

	pinger := ping.NewExecPinger(logger)
	for _, target := range cfg.Enabled() {
		id, err := router.Register(target)
		if err != nil {
			return fmt.Errorf("register target %s: %w", target.Name(), err)
		}
		go monitor.NewPoller(id, target, cfg.DefaultTimeout, cfg.PingInterval.Duration(), pinger, results, clk, logger).Run()
	}

	if abs, err := filepath.Abs(cfg.EventsDir); err == nil {
		logger.Info("events_dir", zap.String("path", abs))
		fmt.Printf("Event logs are being stored at: %s\n", abs)
	}

	dispatcher := notify.NewDispatcher(events, notify.FromEnv(logger), clk, logger, m)
	go dispatcher.Run()

	// Startup doubles as a self-test of every transport.
	events <- domain.EventMessage{
		Name:      domain.SystemName,
		Timestamp: domain.NewTimestamp(clk.Now()),
		Event:     domain.Event{Kind: domain.EventStartup},
	}

	if cfg.HeartbeatTime != "" {
		at, _ := domain.ParseTimeOfDay(cfg.HeartbeatTime) // validated at load
		go monitor.NewHeartbeat(events, at, clk, logger).Run()
		logger.Warn("heartbeat_enabled", zap.String("at", cfg.HeartbeatTime))
	} else {
		logger.Warn("heartbeat_disabled")
	}

	if cfg.HTTPAddr != "" {
		api := httpapi.NewServer(logger, status)
		go func() {
			logger.Info("api_listen", zap.String("addr", cfg.HTTPAddr))
			if err := http.ListenAndServe(cfg.HTTPAddr, api.Router()); err != nil {
				logger.Error("api_serve_failed", zap.Error(err))
			}
		}()
	}

	router.Run()
	return errors.New("router loop returned; this should never happen")
}
