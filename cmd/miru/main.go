package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"miru/internal/config"
	"miru/internal/gateway"
	"miru/internal/mirror"
	"miru/internal/remote"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

func main() {
	a := &app{out: os.Stdout, now: time.Now}
	if err := newCLI(a).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds what every command needs. Tests fill the stores directly.
type app struct {
	gw         *gateway.Gateway
	remote     *remote.Client
	local      mirror.Store
	mirrorDesc string
	logger     zerolog.Logger
	out        io.Writer
	now        func() time.Time

	closers []func() error
}

func newCLI(a *app) *cli.App {
	return &cli.App{
		Name:  "miru",
		Usage: "manage Miru Mushrooms tube bookings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML config",
				EnvVars: []string{config.EnvPath},
			},
		},
		Before: func(c *cli.Context) error {
			if a.gw != nil {
				return nil
			}
			return a.setup(c.String("config"))
		},
		After: func(*cli.Context) error {
			for _, closeFn := range a.closers {
				_ = closeFn()
			}
			return nil
		},
		Writer:   a.out,
		Commands: a.commands(),
	}
}

func (a *app) setup(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	a.logger = zerolog.New(output).With().Timestamp().Logger().Level(cfg.LogLevel())

	policy, err := gateway.ParseRejectPolicy(cfg.Client.RejectPolicy)
	if err != nil {
		return err
	}

	if cfg.UseRedisMirror() {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		a.closers = append(a.closers, rdb.Close)
		a.local = mirror.NewRedisStore(rdb, cfg.Mirror.Key, &a.logger)
		a.mirrorDesc = fmt.Sprintf("redis %s key %s", cfg.Redis.Address, cfg.Mirror.Key)
	} else {
		fs := mirror.NewFileStore(cfg.Mirror.Path, &a.logger)
		a.local = fs
		a.mirrorDesc = "file " + fs.Path()
	}

	a.remote = remote.NewClient(cfg.Client.BaseURL, cfg.ClientTimeout())
	a.gw = gateway.New(a.remote, a.local, &a.logger, gateway.WithRejectPolicy(policy))
	return nil
}
