package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rgonek/manpage-builder/builder"
	"github.com/rgonek/manpage-builder/config"
	"github.com/rgonek/manpage-builder/project"
	"github.com/rgonek/manpage-builder/state"
)

// projectConfigName is picked up from the source directory when no
// configuration file is given on the command line.
const projectConfigName = "manb.yaml"

func runBuild(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("build")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	if len(cmd.String("config")) == 0 {
		fname := filepath.Join(src, projectConfigName)
		if _, err := os.Stat(fname); err == nil {
			cfg, err := config.LoadConfiguration(fname)
			if err != nil {
				return fmt.Errorf("unable to prepare configuration: %w", err)
			}
			// project file may carry its own logging section
			if err := env.Configure(cfg, cmd.Bool("debug")); err != nil {
				return err
			}
			log = env.Log.Named("build")
			log.Info("Using project configuration", zap.String("file", fname))
		}
	}

	cfg := env.Cfg
	if cmd.Bool("section-dirs") {
		cfg.Man.MakeSectionDirectory = true
	}
	if cmd.Bool("show-urls") {
		cfg.Man.ShowURLs = true
	}
	if cmd.Bool("nitpicky") {
		cfg.Diagnostics.Nitpicky = true
	}

	log.Info("Reading sources", zap.String("source", src))
	store, warnings, err := project.Load(ctx, src, project.LoadOptions{
		Suffixes: cfg.Source.Suffixes,
		Exclude:  cfg.Source.Exclude,
	})
	if err != nil {
		return err
	}
	graph, graphWarnings := project.NewLinkGraph(store)
	for _, w := range append(warnings, graphWarnings...) {
		log.Warn(w.Message, zap.String("type", string(w.Type)), zap.String("docname", w.Docname))
	}
	log.Debug("Sources read", zap.Int("documents", store.Len()))

	b := builder.New(cfg, store, graph, log, builder.Options{OutputDir: dst})
	report, err := b.Build(ctx)

	log.Info("Build finished",
		zap.String("destination", dst),
		zap.Int("pages", len(report.Written)),
		zap.Int("warnings", len(report.Warnings)),
		zap.Duration("elapsed", env.Uptime()))
	return err
}
