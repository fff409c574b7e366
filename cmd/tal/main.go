package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/metric"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/tal-engine/tal/internal/config"
	"github.com/tal-engine/tal/internal/dispatcher"
	"github.com/tal-engine/tal/internal/engine"
	"github.com/tal-engine/tal/internal/handlers"
	"github.com/tal-engine/tal/internal/logging"
	"github.com/tal-engine/tal/internal/mission"
	intOtel "github.com/tal-engine/tal/internal/otel"
	"github.com/tal-engine/tal/internal/parser"
	"github.com/tal-engine/tal/internal/scenario"
	"github.com/tal-engine/tal/internal/storage"
	"github.com/tal-engine/tal/internal/storage/memory"
	"github.com/tal-engine/tal/internal/worker"
)

// BuildDate can be set at build time via ldflags
var (
	Version   string = "0.0.1"
	BuildDate string = "unknown"

	AppName string = "tal"
)

const shutdownTimeout = 10 * time.Second

// app holds everything one session owns.
type app struct {
	start time.Time

	logs     *logging.SlogManager
	logger   *slog.Logger
	logFile  *os.File
	provider *intOtel.Provider

	mission    *mission.Context
	dispatcher *dispatcher.Dispatcher
	backend    storage.Backend
	report     *memory.Backend
	workers    *worker.Manager
	engine     *engine.Engine
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	fs.String("config", ".", "directory containing "+config.FileName)
	fs.String("log-level", "info", "DEBUG, INFO, WARN or ERROR")
	fs.String("logs-dir", "./tallogs", "directory for session log files")
	fs.String("storage", "memory", "recording backend: memory, sqlite, postgres, websocket or none")
	fs.String("board", "canonical", "board layout: canonical or graphical")
	fs.String("name", "Close Air Support", "mission name")
	fs.Int("loiter", 6, "rounds the flight can stay on station")
	fs.Uint64("seed", 0, "dice seed, 0 picks one at random")
	fs.Bool("clipboard", false, "copy the after-action report to the clipboard on exit")
	fs.Bool("version", false, "print the version and exit")
	return fs
}

// bindFlags maps flags onto config keys. A flag only wins over the file when set.
func bindFlags(fs *pflag.FlagSet) error {
	keys := map[string]string{
		"log-level": "logLevel",
		"logs-dir":  "logsDir",
		"storage":   "storage.type",
		"board":     "mission.board",
		"name":      "mission.name",
		"loiter":    "mission.loiter",
		"seed":      "mission.seed",
	}
	for flag, key := range keys {
		if err := viper.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	return nil
}

func run(args []string, in io.Reader, out io.Writer) error {
	if len(args) > 0 && args[0] == "debrief" {
		return runDebrief(args[1:], out)
	}

	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if v, _ := fs.GetBool("version"); v {
		fmt.Fprintf(out, "%s %s (%s)\n", AppName, Version, BuildDate)
		return nil
	}
	if err := bindFlags(fs); err != nil {
		return err
	}
	configDir, _ := fs.GetString("config")
	configErr := config.Load(configDir)

	a := &app{start: time.Now(), mission: mission.NewContext()}
	a.setupLogging()
	defer a.closeLogging()
	if configErr != nil {
		a.logger.Warn("Failed to load config, using defaults!", "error", configErr)
	} else {
		a.logger.Info("Loaded config", "file", viper.ConfigFileUsed())
	}

	if err := a.setup(); err != nil {
		a.logger.Error("Startup failed", "error", err)
		a.shutdown()
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	console := NewConsole(in, out, parser.NewParser(a.logger), a.dispatcher)
	fmt.Fprintln(out, scenario.Describe(a.engine))
	fmt.Fprintln(out, "Type help for commands.")

	done := make(chan error, 1)
	go func() { done <- console.Run() }()

	var runErr error
	select {
	case runErr = <-done:
	case <-ctx.Done():
		a.logger.Info("Interrupted, shutting down")
	}

	a.shutdown()

	if !a.engine.Complete() {
		fmt.Fprintln(out, "Mission abandoned.")
	}
	if clip, _ := fs.GetBool("clipboard"); clip {
		a.copyReport(out)
	}
	if e, ok := a.backend.(storage.Exporter); ok {
		if p := e.GetExportedFilePath(); p != "" {
			fmt.Fprintln(out, "Recording written to", p)
		}
	}
	return runErr
}

// setupLogging follows the session order: console first, then the file and
// the optional Graylog and OTel sinks once config is known.
func (a *app) setupLogging() {
	a.logs = logging.NewSlogManager()
	a.logs.UseContext(a.mission.LogAttrs)
	a.logs.Setup(nil, viper.GetString("logLevel"), nil)
	a.logger = a.logs.Logger()

	f, err := logging.OpenLogFile(viper.GetString("logsDir"), AppName, a.start)
	if err != nil {
		a.logger.Error("Failed to create/open log file!", "error", err)
	} else {
		a.logFile = f
	}

	if viper.GetBool("graylog.enabled") {
		addr := viper.GetString("graylog.address")
		if err := a.logs.UseGraylog(addr); err != nil {
			a.logger.Error("Failed to set up Graylog", "error", err)
		}
	}

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		p, err := intOtel.New(intOtel.FromConfig(otelCfg, a.fileWriter()))
		if err != nil {
			a.logger.Error("Failed to initialize OTel provider", "error", err)
		} else {
			a.provider = p
			a.logger.Info("OTel provider initialized", "endpoint", otelCfg.Endpoint)
		}
	}

	var otelLogProvider *sdklog.LoggerProvider
	if a.provider != nil {
		otelLogProvider = a.provider.LoggerProvider()
	}
	a.logs.Setup(a.fileWriter(), viper.GetString("logLevel"), otelLogProvider)
	a.logger = a.logs.Logger()
	if a.logFile != nil {
		a.logger.Info("Logging to file", "path", a.logFile.Name())
	}
}

// fileWriter keeps a nil *os.File from becoming a non-nil io.Writer.
func (a *app) fileWriter() io.Writer {
	if a.logFile == nil {
		return nil
	}
	return a.logFile
}

func (a *app) zerologWriter() io.Writer {
	if a.logFile == nil {
		return os.Stderr
	}
	return a.logFile
}

func (a *app) setup() error {
	mc, err := config.GetMissionConfig()
	if err != nil {
		return err
	}

	a.dispatcher, err = dispatcher.New(logging.NewDispatcherLogger(a.logger))
	if err != nil {
		return fmt.Errorf("create dispatcher: %w", err)
	}

	storageCfg := config.GetStorageConfig()
	zlog := logging.NewZerolog(a.zerologWriter(), viper.GetString("logLevel"), "storage")
	backend, err := createStorageBackend(storageCfg, storageDeps{
		logs:   a.logs,
		logger: a.logger,
		zlog:   zlog,
		start:  a.start,
	})
	if err != nil {
		return fmt.Errorf("create storage backend: %w", err)
	}
	if mem, ok := backend.(*memory.Backend); ok {
		a.report = mem
	}
	a.backend = withInflux(backend, config.GetInfluxConfig(), zlog)
	if a.backend != nil {
		if err := a.backend.Init(); err != nil {
			return fmt.Errorf("init storage backend: %w", err)
		}
		a.logger.Info("Storage backend initialized", "type", storageCfg.Type)
	}

	a.workers = worker.NewManager(worker.Dependencies{
		LogManager:     a.logs,
		MissionContext: a.mission,
	}, a.backend)
	a.workers.RegisterHandlers(a.dispatcher)
	if a.provider != nil {
		if err := registerRecordMetrics(a.provider.Meter("github.com/tal-engine/tal/cmd/tal"), a.workers); err != nil {
			a.logger.Warn("Failed to register record metrics", "error", err)
		}
	}

	m := a.mission.Start(mc.Name, mc.Board, mc.DieSides, mc.Loiter)
	a.workers.StartMission(*m)

	a.engine, err = scenario.Build(mc, scenario.Options{
		MissionID: m.ID,
		Logger:    a.logger,
		Recorder:  a.workers,
	})
	if err != nil {
		return fmt.Errorf("build scenario: %w", err)
	}
	a.mission.SetProgress(a.engine.Round(), a.engine.State().String())

	handlers.NewService(handlers.Dependencies{
		Engine:         a.engine,
		MissionContext: a.mission,
		LogManager:     a.logs,
	}).RegisterHandlers(a.dispatcher)

	a.logger.Info("Mission started", "id", m.ID, "name", m.Name, "board", m.Board)
	return nil
}

func registerRecordMetrics(meter metric.Meter, w *worker.Manager) error {
	written, err := meter.Int64ObservableCounter("tal.records.written",
		metric.WithDescription("Records stored by the recording backend"))
	if err != nil {
		return err
	}
	failed, err := meter.Int64ObservableCounter("tal.records.failed",
		metric.WithDescription("Records the recording backend rejected"))
	if err != nil {
		return err
	}
	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := w.Stats()
		o.ObserveInt64(written, int64(s.Written))
		o.ObserveInt64(failed, int64(s.Failed))
		return nil
	}, written, failed)
	return err
}

// shutdown drains the record queue before closing the backend.
func (a *app) shutdown() {
	if a.dispatcher != nil {
		a.dispatcher.Close()
	}
	if a.workers != nil {
		s := a.workers.Stats()
		a.logger.Info("Recording finished", "written", s.Written, "failed", s.Failed)
	}
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			a.logger.Error("Failed to close storage backend", "error", err)
		}
	}
}

func (a *app) closeLogging() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.logs.Flush(ctx); err != nil {
		a.logger.Warn("Failed to flush logs", "error", err)
	}
	if a.provider != nil {
		if err := a.provider.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			fmt.Fprintln(os.Stderr, "otel shutdown:", err)
		}
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}

func (a *app) copyReport(out io.Writer) {
	if a.report == nil {
		fmt.Fprintln(out, "Clipboard copy needs the memory storage backend.")
		return
	}
	if err := clipboard.WriteAll(a.report.Report().Text()); err != nil {
		a.logger.Warn("Failed to copy report to clipboard", "error", err)
		fmt.Fprintln(out, "Clipboard unavailable:", err)
		return
	}
	fmt.Fprintln(out, "After-action report copied to clipboard.")
}
