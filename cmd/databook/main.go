package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli"

	"github.com/andreyvit/databook"
	"github.com/andreyvit/databook/internal/config"
	"github.com/andreyvit/databook/internal/logging"
)

var (
	configFlag = cli.StringFlag{
		Name:   "config, c",
		Usage:  "TOML config `FILE`",
		EnvVar: config.EnvConfig,
	}
	pathFlag = cli.StringFlag{
		Name:  "path, p",
		Usage: "shelf database `FILE`, overrides the config",
	}
	logLevelFlag = cli.StringFlag{
		Name:  "log-level",
		Usage: "trace, debug, info, warn, error or off",
	}
	longFlag = cli.BoolFlag{
		Name:  "long, l",
		Usage: "print field counts and encoded sizes",
	}
	allFlag = cli.BoolFlag{
		Name:  "all, a",
		Usage: "dump every tree along with shelf statistics",
	}
)

func main() {
	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "databook"
	app.Usage = "inspect and move archived object trees"
	app.Version = "v0.1.0"
	app.Writer = stdout
	app.ErrWriter = stderr
	app.Flags = []cli.Flag{configFlag, pathFlag, logLevelFlag}
	withShelf := func(f func(c *cli.Context, e *env) error) func(c *cli.Context) error {
		return withShelfIn(stdin, f)
	}
	app.Commands = []cli.Command{
		{
			Name:   "ls",
			Usage:  "list shelved trees",
			Flags:  []cli.Flag{longFlag},
			Action: withShelf(listTrees),
		},
		{
			Name:      "dump",
			Usage:     "print a shelved tree",
			ArgsUsage: "NAME",
			Flags:     []cli.Flag{allFlag},
			Action:    withShelf(dumpTree),
		},
		{
			Name:   "stats",
			Usage:  "print shelf statistics",
			Action: withShelf(showStats),
		},
		{
			Name:      "export",
			Usage:     "write a shelved tree as msgpack to FILE, or stdout for -",
			ArgsUsage: "NAME FILE",
			Action:    withShelf(exportTree),
		},
		{
			Name:      "import",
			Usage:     "shelve a msgpack tree read from FILE, or stdin for -",
			ArgsUsage: "NAME FILE",
			Action:    withShelf(importTree),
		},
		{
			Name:      "rm",
			Usage:     "delete a shelved tree",
			ArgsUsage: "NAME",
			Action:    withShelf(removeTree),
		},
	}
	return app
}

type env struct {
	cfg    config.Config
	logger zerolog.Logger
	shelf  *databook.Shelf
	in     io.Reader
	out    io.Writer
}

func withShelfIn(in io.Reader, f func(c *cli.Context, e *env) error) func(c *cli.Context) error {
	return func(c *cli.Context) error {
		e, err := openEnv(c, in)
		if err != nil {
			return err
		}
		defer func() {
			if err := e.shelf.Close(); err != nil {
				e.logger.Error().Err(err).Msg("closing shelf")
			}
		}()
		return f(c, e)
	}
}

func openEnv(c *cli.Context, in io.Reader) (*env, error) {
	cfg, err := config.Load(c.GlobalString("config"))
	if err != nil {
		return nil, err
	}
	if v := c.GlobalString("path"); v != "" {
		cfg.Path = v
	}
	if v := c.GlobalString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	logger := logging.New(c.App.ErrWriter, level, false)

	sh, err := databook.Open(cfg.Path, databook.Options{
		Logger:   logging.Slog(logger),
		NoSync:   cfg.NoSync,
		MmapSize: cfg.MmapSize,
		Bucket:   cfg.Bucket,
		Compress: cfg.Compress,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("path", cfg.Path).Str("bucket", cfg.Bucket).Msg("shelf ready")
	return &env{cfg: cfg, logger: logger, shelf: sh, in: in, out: c.App.Writer}, nil
}
