package commands

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/syssam/xrmgen/compiler/gen"
	"github.com/syssam/xrmgen/compiler/load"
	"github.com/syssam/xrmgen/internal/cli/config"
)

// app bundles what every command needs: the resolved configuration, a
// logger writing to stderr and the mapper over the metadata dump.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	source *load.FileSource
	mapper *gen.Mapper
}

func newApp(cmd *cobra.Command) (*app, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	src := load.NewFileSource(cfg.Source)
	m, err := gen.NewMapper(src, append(cfg.Options(), gen.WithLogger(logger))...)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, source: src, mapper: m}, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
