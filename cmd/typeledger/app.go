package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/typeledger/internal/ape"
	"github.com/verte-zerg/typeledger/internal/config"
	"github.com/verte-zerg/typeledger/internal/event"
	"github.com/verte-zerg/typeledger/internal/localdb"
	"github.com/verte-zerg/typeledger/internal/logging"
	"github.com/verte-zerg/typeledger/internal/metrics"
	"github.com/verte-zerg/typeledger/internal/snapshot"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	headingStyle = lipgloss.NewStyle().Bold(true)
)

// app holds the collaborators every command works with.
type app struct {
	logger  *zap.Logger
	kv      *localdb.SQLiteKV
	db      *localdb.DB
	metrics *metrics.Manager
	gate    *ape.StaticGate
	store   *snapshot.Store

	unsubscribe func()
}

type appOptions struct {
	// logPath sends logs to a file instead of stderr.
	logPath string
	// interactive keeps notifications off the terminal while the TUI owns it.
	interactive bool
}

func openApp(ctx context.Context, cmd *cobra.Command, fileCfg config.FileConfig, opts appOptions) (*app, error) {
	level := logLevel
	if fileCfg.Log.Level != nil && !flagChanged(cmd, "log-level") {
		level = *fileCfg.Log.Level
	}
	logger, err := logging.NewLogger(level, opts.logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	path := dbPath
	if path == "" && fileCfg.Storage.Path != nil {
		path = *fileCfg.Storage.Path
	}
	if path == "" {
		path = config.DefaultDBPath()
	}
	kv, err := localdb.OpenSQLite(path)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	m := metrics.NewManager()
	db := localdb.New(kv, localdb.WithLogger(logger), localdb.WithMetrics(m))
	gate := ape.NewStaticGate(ape.Offline())

	var notifier snapshot.Notifier
	if opts.interactive {
		notifier = logNotifier(logger)
	} else {
		notifier = newNotifier(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), logger)
	}

	store := snapshot.New(snapshot.Config{
		Persister: db,
		Gate:      gate,
		Notifier:  notifier,
		Logger:    logger,
		Metrics:   m,
		Name:      os.Getenv("USER"),
	})
	a := &app{
		logger:  logger,
		kv:      kv,
		db:      db,
		metrics: m,
		gate:    gate,
		store:   store,
	}
	a.unsubscribe = store.Bus().Subscribe(func(ev event.Event) {
		logger.Debug("snapshot updated", zap.String("type", string(ev.Type)), zap.Bool("initial", ev.IsInitial))
	})

	if _, err := store.Init(ctx); err != nil {
		var initErr *snapshot.InitError
		if !errors.As(err, &initErr) {
			a.Close()
			return nil, fmt.Errorf("failed to load snapshot: %w", err)
		}
		logger.Warn("using empty snapshot", zap.Error(err), zap.Int("code", initErr.ResponseCode))
		notifier.Add("Could not load your results, starting from an empty ledger", snapshot.LevelError)
	}
	return a, nil
}

// openCLIApp opens the app for a non-interactive command.
func openCLIApp(cmd *cobra.Command) (*app, config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	var logPath string
	if fileCfg.Log.File != nil {
		logPath = *fileCfg.Log.File
	}
	a, err := openApp(cmd.Context(), cmd, fileCfg, appOptions{logPath: logPath})
	if err != nil {
		return nil, config.FileConfig{}, err
	}
	return a, fileCfg, nil
}

// Close releases the database and flushes logs.
func (a *app) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	a.logMetrics()
	if err := a.kv.Close(); err != nil {
		logErrf("failed to close db: %v\n", err)
	}
	_ = a.logger.Sync()
}

func (a *app) logMetrics() {
	g, ok := a.metrics.Gatherer()
	if !ok {
		return
	}
	families, err := g.Gather()
	if err != nil {
		a.logger.Debug("failed to gather metrics", zap.Error(err))
		return
	}
	for _, f := range families {
		var total float64
		for _, m := range f.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		a.logger.Debug("metric", zap.String("name", f.GetName()), zap.Float64("value", total))
	}
}

func newNotifier(w io.Writer, color bool, logger *zap.Logger) snapshot.Notifier {
	return snapshot.NotifierFunc(func(message string, level int) {
		logger.Debug("notification", zap.String("message", message), zap.Int("level", level))
		label, style := "notice:", noticeStyle
		switch level {
		case snapshot.LevelError:
			label, style = "error:", errorStyle
		case snapshot.LevelSuccess:
			label, style = "ok:", successStyle
		}
		if color {
			label = style.Render(label)
		}
		_, _ = fmt.Fprintf(w, "%s %s\n", label, message)
	})
}

func logNotifier(logger *zap.Logger) snapshot.Notifier {
	return snapshot.NotifierFunc(func(message string, level int) {
		switch level {
		case snapshot.LevelError:
			logger.Error(message)
		default:
			logger.Info(message, zap.Int("level", level))
		}
	})
}

func heading(w io.Writer, text string) error {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		text = headingStyle.Render(text)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}
