package app

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/labctl/labctl/internal/config"
	"github.com/labctl/labctl/internal/labapi"
	"github.com/labctl/labctl/internal/logging"
	"github.com/labctl/labctl/internal/notify"
	"github.com/labctl/labctl/internal/prefs"
	"github.com/labctl/labctl/internal/state"
	"github.com/labctl/labctl/internal/ui"
)

// Options configure a labctl run. Empty fields fall back to config.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/labctl/prefs.toml
	APIBaseURL string // --api
	LogLevel   string // --log-level
	// LogFallback receives log lines when no log file is configured.
	LogFallback io.Writer
}

// Runtime is the wired core shared by the TUI and the CLI commands.
type Runtime struct {
	Config  config.Config
	Log     *logrus.Logger
	Client  *labapi.Client
	Engine  *state.Engine
	Notices *notify.Queue

	closer io.Closer
}

// Close releases the log file.
func (r *Runtime) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Bootstrap loads configuration and builds the client and sync engine.
func Bootstrap(opts Options) (*Runtime, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Override(opts.APIBaseURL, opts.LogLevel)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, closer, err := logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel, Fallback: opts.LogFallback})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	client, err := labapi.NewClient(cfg.APIBaseURL,
		labapi.WithTimeout(cfg.RequestTimeout),
		labapi.WithLogger(logging.Component(log, "labapi")),
	)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("init lab client: %w", err)
	}

	notices := &notify.Queue{}
	engine := state.NewEngine(client,
		state.WithLogger(log),
		state.WithNotifier(notify.Multi(notify.Log{Logger: log}, notices)),
	)

	log.WithFields(logrus.Fields{"api": client.BaseURL(), "timeout": cfg.RequestTimeout}).Info("labctl started")
	return &Runtime{Config: cfg, Log: log, Client: client, Engine: engine, Notices: notices, closer: closer}, nil
}

// Run boots the TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	rt, err := Bootstrap(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	userPrefs := prefs.Load(opts.PrefsPath)
	rt.Engine.SetFilter(userPrefs.Filter())

	program := ui.NewProgram(ui.Options{
		Context:    ctx,
		Engine:     rt.Engine,
		Notices:    rt.Notices,
		Log:        logging.Component(rt.Log, "ui"),
		ThemeName:  userPrefs.Theme,
		Filter:     userPrefs.Filter(),
		PrefsPath:  opts.PrefsPath,
		APIBaseURL: rt.Client.BaseURL(),
	})

	StartRefresher(ctx, rt.Engine, rt.Config.RefreshInterval, rt.Log, func(key labapi.FilterKey, entry state.Entry, err error) {
		program.Send(ui.RefreshedMsg{Key: key, Entry: entry, Err: err})
	})

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
