package commands

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Output         string        `short:"o" help:"Output directory" default:"www" type:"path"`
	Port           int           `short:"p" help:"Port the generated server listens on" default:"8080"`
	StyleCompiler  string        `name:"style-compiler" help:"Preprocessor binary for src/styles"`
	UpdateInterval time.Duration `name:"update-interval" help:"Check the template mirror for updates at this interval (0 disables)" default:"0s"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	syncer, err := root.Syncer()
	if err != nil {
		return err
	}
	if err := syncer.Ensure(ctx); err != nil {
		return err
	}

	svc := build.NewService(build.WithLogger(g.Logger))
	req := root.Request(w.Output, w.Port, w.StyleCompiler, syncer.Location())
	return watch.New(svc, req,
		watch.WithLogger(g.Logger),
		watch.WithUpdates(syncer, w.UpdateInterval),
	).Run(ctx)
}
