// shoretool creates, sculpts and inspects shoreline height fields.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/Faultbox/shoreline/internal/chunk"
	"github.com/Faultbox/shoreline/internal/config"
	"github.com/Faultbox/shoreline/internal/logger"
	"github.com/Faultbox/shoreline/pkg/heightfield"
)

func main() {
	app := &cli.App{
		Name:  "shoretool",
		Usage: "create, sculpt and export island height fields",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to config file"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
			&cli.StringFlag{Name: "log-file", Usage: "also log to this file"},
			&cli.StringFlag{Name: "backend", Usage: "sea mesher backend: cpu or kernel"},
			&cli.IntFlag{Name: "workers", Usage: "chunk rebuild workers (0 = one per CPU)"},
			&cli.IntFlag{Name: "density", Usage: "cells per world unit for new fields"},
			&cli.IntFlag{Name: "chunks", Usage: "chunks per side for new fields"},
		},
		Commands: []*cli.Command{
			newCommand(),
			infoCommand(),
			sculptCommand(),
			exportCommand(),
			pickCommand(),
		},
		After: func(*cli.Context) error {
			logger.Sync()
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error("command failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves the config with priority defaults < file < flags and
// initialises logging from it.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	cfg.ApplyOverrides(config.Overrides{
		Debug:      c.Bool("debug"),
		LogFile:    c.String("log-file"),
		Backend:    c.String("backend"),
		Workers:    c.Int("workers"),
		Density:    c.Int("density"),
		ChunkCount: c.Int("chunks"),
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	logger.Sugar.Debugf("config: %+v", cfg)
	return cfg, nil
}

// openGrid meshes f with the configured backend.
func openGrid(cfg *config.Config, f *heightfield.Field) (*chunk.Grid, error) {
	opts := []chunk.Option{
		chunk.WithWorkers(cfg.Mesher.Workers),
		chunk.WithLogger(logger.Named("chunk")),
	}
	if cfg.Mesher.Backend == config.BackendKernel {
		opts = append(opts, chunk.WithSeaKernel(chunk.CellKernel{}))
	}
	return chunk.NewGrid(f, opts...)
}

// fieldArg loads the field named by the first positional argument.
func fieldArg(c *cli.Context) (string, *heightfield.Field, error) {
	if c.NArg() < 1 {
		return "", nil, cli.Exit(fmt.Sprintf("usage: shoretool %s <field.shf>", c.Command.Name), 2)
	}
	path := c.Args().First()
	f, err := heightfield.LoadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return path, f, nil
}
