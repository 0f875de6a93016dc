package commands

import (
	"context"
	"fmt"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output        string `short:"o" help:"Output directory" default:"www" type:"path"`
	Port          int    `short:"p" help:"Port the generated server listens on" default:"8080"`
	StyleCompiler string `name:"style-compiler" help:"Preprocessor binary for src/styles, run as <bin> src:dst (e.g. sass). Plain .css files are copied when empty."`
	MetricsFile   string `name:"metrics-file" help:"Write build metrics in Prometheus textfile format" type:"path"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	syncer, err := root.Syncer()
	if err != nil {
		return err
	}

	opts := []build.Option{build.WithLogger(g.Logger), build.WithMirror(syncer)}
	var reg *prom.Registry
	if b.MetricsFile != "" {
		reg = prom.NewRegistry()
		rec := metrics.NewPrometheusRecorder(reg)
		syncer.WithRecorder(rec)
		opts = append(opts, build.WithRecorder(rec))
	}

	res, err := build.NewService(opts...).Run(context.Background(), root.Request(b.Output, b.Port, b.StyleCompiler, syncer.Location()))
	if reg != nil {
		if werr := metrics.WriteTextfile(reg, b.MetricsFile); werr != nil && err == nil {
			err = werr
		}
	}
	if err != nil {
		return err
	}

	fmt.Printf("Built %d pages into %s (%d written, %d unchanged)\n",
		res.Pages, b.Output, res.Writes.Written, res.Writes.Unchanged)
	return nil
}

// Request assembles a build request from the global flags.
func (c *CLI) Request(output string, port int, styleCompiler string, loc config.MirrorLocation) build.Request {
	return build.Request{
		SiteFile:      c.Config,
		SummaryFile:   c.Summary,
		SourceDir:     c.Source,
		OutputDir:     output,
		Port:          port,
		Mirror:        loc,
		StyleCompiler: styleCompiler,
	}
}
