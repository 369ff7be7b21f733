package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/lixenwraith/fillmem/audio"
	"github.com/lixenwraith/fillmem/config"
	"github.com/lixenwraith/fillmem/console"
	"github.com/lixenwraith/fillmem/editor"
	"github.com/lixenwraith/fillmem/kstat"
	"github.com/lixenwraith/fillmem/logging"
	"github.com/lixenwraith/fillmem/metrics"
	"github.com/lixenwraith/fillmem/sampler"
	"github.com/lixenwraith/fillmem/service"
	"github.com/lixenwraith/fillmem/sigflag"
	"github.com/lixenwraith/fillmem/status"
	"github.com/lixenwraith/fillmem/terminal"
)

func main() {
	// Panic recovery: the terminal must be usable again even if we crash
	defer func() {
		if r := recover(); r != nil {
			crash("FILLMEM CRASHED", r)
		}
	}()

	cfg, err := loadConfig(os.Args[1:], os.Stderr)
	if err != nil {
		fatal(err)
	}

	logger, err := logging.Setup(logging.Options{
		Debug: cfg.Log.Debug,
		Level: cfg.Log.Level,
		Dir:   cfg.Log.Dir,
	})
	if err != nil {
		fatal(err)
	}
	defer logger.Close()

	if err := run(cfg, logger); err != nil {
		logger.Error("exiting", zap.Error(err))
		logger.Close()
		fatal(err)
	}
}

// loadConfig layers flags over the file and environment settings
func loadConfig(args []string, stderr io.Writer) (config.Config, error) {
	fs := flag.NewFlagSet("fillmem", flag.ContinueOnError)
	fs.SetOutput(stderr)
	path := fs.String("config", "", "TOML config file (default "+config.DefaultFile+" if present)")
	debugLog := fs.Bool("debug", false, "write diagnostics to the log directory")
	bell := fs.String("bell", "", "bell mode: terminal, tone or none")
	listen := fs.String("metrics", "", "serve Prometheus metrics on this address")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(*path)
	if err != nil {
		return cfg, err
	}

	// Only flags given explicitly override
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "debug":
			cfg.Log.Debug = *debugLog
			if cfg.Log.Debug {
				cfg.Log.Level = "debug"
			}
		case "bell":
			cfg.Bell = *bell
		case "metrics":
			cfg.Metrics.Listen = *listen
		}
	})

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func run(cfg config.Config, logger *logging.Logger) error {
	log := logger.Logger

	term := sigflag.Notify()
	defer term.Stop()

	st := status.NewRegistry()
	st.Strings.Get(status.SessionID).Store(logger.SessionID)
	m := metrics.New(st)

	tty := terminal.NewService(terminal.NewBackend())
	driver := tty.Driver()

	bell := audio.NewService(cfg.Bell, audio.RingerFunc(func() {
		driver.EmitString(terminal.Bell)
	}), log)

	session := editor.New(driver, editor.Config{
		Prompt:       cfg.Prompt,
		MaxLine:      cfg.MaxLine,
		PollInterval: cfg.PollInterval.Duration,
		Fallback:     os.Stdout,
		Bell:         bell,
		Signal:       term,
		Recorder:     m,
		Logger:       log,
	})
	tty.Attach(session)

	hub := service.NewHub(log)
	services := []service.Service{
		tty,
		bell,
		sampler.NewService(
			kstat.Options{ProcRoot: cfg.Kstat.ProcRoot, SysRoot: cfg.Kstat.SysRoot},
			session,
			sampler.Config{
				Interval:       cfg.Sampler.Interval.Duration,
				SluggishFactor: cfg.Sampler.SluggishFactor,
				Status:         st,
				Logger:         log,
				OnPanic:        func(r any) { crash("SAMPLER CRASHED", r) },
			},
			cfg.Sampler.Enabled,
		),
	}
	if cfg.Metrics.Listen != "" {
		services = append(services, metrics.NewService(cfg.Metrics.Listen, m, log))
	}
	for _, svc := range services {
		if err := hub.Register(svc); err != nil {
			return err
		}
	}

	if err := hub.InitAll(); err != nil {
		return err
	}
	if err := hub.StartAll(); err != nil {
		return err
	}
	defer hub.StopAll()

	log.Info("session started",
		zap.String("prompt", cfg.Prompt),
		zap.Bool("sampler", cfg.Sampler.Enabled),
		zap.String("metrics", cfg.Metrics.Listen))

	con := console.New(session, console.Config{
		Status:    st,
		Recorder:  m,
		Logger:    log,
		SessionID: logger.SessionID,
		OnPanic:   func(r any) { crash("EDITOR CRASHED", r) },
	})
	return con.Run()
}

// fatal reports a setup or runtime failure on the restored terminal
func fatal(err error) {
	fmt.Fprintf(os.Stderr, "fillmem: %v\n", err)
	os.Exit(1)
}

// crash restores the terminal and reports a panic with its stack
func crash(what string, r any) {
	terminal.EmergencyReset(os.Stdout)
	// \r\n in case the tty is still raw
	fmt.Fprintf(os.Stderr, "\r\n\x1b[31m%s: %v\x1b[0m\r\n", what, r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
	os.Exit(1)
}
