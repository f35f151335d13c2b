package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/lox/lastcard/internal/config"
	"github.com/lox/lastcard/internal/display"
	"github.com/lox/lastcard/internal/server"
	"golang.org/x/sync/errgroup"
)

// version is set by ldflags during build
var version = "dev"

// CLI flags override the config file and the environment
type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Config   string           `short:"c" default:"lastcard.hcl" help:"Path to HCL configuration file"`
	EnvFile  string           `default:".env" help:"Optional dotenv file with LASTCARD_ overrides"`
	Addr     string           `short:"a" help:"Address to bind to (overrides config)"`
	Port     int              `short:"p" help:"Port to listen on (overrides config)"`
	LogLevel string           `short:"l" help:"Log level: debug, info, warn or error (overrides config)"`
	Monitor  bool             `short:"m" help:"Print match summaries to stdout"`
	TUI      bool             `help:"Run the operator dashboard; server logs go to its event pane"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("lastcard-server"),
		kong.Description("Server-authoritative last card game over WebSockets"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	ctx.FatalIfErrorf(cli.Run())
}

// Run loads the configuration and serves until interrupted
func (c *CLI) Run() error {
	cfg, err := config.Load(c.Config, c.EnvFile)
	if err != nil {
		return err
	}
	c.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	var dash *display.Dashboard
	logOutput := io.Writer(os.Stderr)
	if c.TUI {
		dash = display.NewDashboard()
		logOutput = dash
	}
	logger := log.NewWithOptions(logOutput, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           cfg.Level(),
	})

	var opts []server.Option
	switch {
	case dash != nil:
		opts = append(opts, server.WithMonitor(dash))
	case cfg.Server.Monitor:
		opts = append(opts, server.WithMonitor(display.NewMonitor(os.Stdout)))
	}
	srv := server.NewServer(cfg, logger, opts...)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down")
		if dash != nil {
			dash.Quit()
		}
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		return srv.Stop(shutdownCtx)
	})
	if dash != nil {
		g.Go(func() error {
			// Quitting the dashboard stops the server
			defer cancel()
			return dash.Run()
		})
	}

	return g.Wait()
}

func (c *CLI) apply(cfg *config.Config) {
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.Monitor {
		cfg.Server.Monitor = true
	}
}
