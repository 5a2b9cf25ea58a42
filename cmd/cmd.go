package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/webitel/liveapi-bridge/config"
	"github.com/webitel/liveapi-bridge/internal/domain/model"
	"github.com/webitel/liveapi-bridge/internal/monitor"
)

const (
	ServiceName      = "liveapi-bridge"
	ServiceNamespace = "webitel"

	stopTimeout = 30 * time.Second
)

var (
	version        = "0.0.0"
	commit         = "hash"
	commitDate     = time.Now().String()
	branch         = "branch"
	buildTimestamp = ""
)

func Run() error {
	model.ServerVersion = version

	app := &cli.App{
		Name:    ServiceName,
		Usage:   "Bridge between game LiveAPI sockets and the platform",
		Version: version + " (" + commit + ", " + branch + ")",
		Commands: []*cli.Command{
			serverCmd(),
			monitorCmd(),
		},
	}

	return app.Run(os.Args)
}

func serverCmd() *cli.Command {
	return &cli.Command{
		Name:    "server",
		Aliases: []string{"s"},
		Usage:   "Run the bridge",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config_file",
				Usage:   "Path to the configuration file",
				EnvVars: []string{config.EnvPrefix + "_CONFIG_FILE"},
			},
		},
		Action: func(c *cli.Context) error {
			cfg, v, err := config.LoadConfig(c.String("config_file"))
			if err != nil {
				return err
			}

			level := new(slog.LevelVar)
			lvl, _ := config.ParseLevel(cfg.Log.Level) // validated by LoadConfig
			level.Set(lvl)

			app := NewApp(cfg, v, level)

			if err := app.Start(c.Context); err != nil {
				return err
			}

			slog.Info("SERVICE_STARTED",
				slog.String("commit", commit),
				slog.String("commit_date", commitDate),
				slog.String("build", buildTimestamp),
			)

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop

			slog.Info("SERVICE_STOPPING")
			ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
			defer cancel()
			return app.Stop(ctx)
		},
	}
}

func monitorCmd() *cli.Command {
	return &cli.Command{
		Name:    "monitor",
		Aliases: []string{"m"},
		Usage:   "Watch a running bridge in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "api",
				Value: "http://localhost:8080",
				Usage: "Base URL of the bridge HTTP API",
			},
			&cli.StringFlag{
				Name:  "grpc",
				Value: "localhost:9090",
				Usage: "Address of the bridge gRPC health service",
			},
			&cli.DurationFlag{
				Name:  "interval",
				Value: 2 * time.Second,
				Usage: "Refresh interval",
			},
		},
		Action: func(c *cli.Context) error {
			poller, err := monitor.NewPoller(c.String("api"), c.String("grpc"))
			if err != nil {
				return err
			}
			defer poller.Close()

			return monitor.Run(c.Context, poller, c.Duration("interval"))
		},
	}
}
