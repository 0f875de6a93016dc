package build

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/sitebuilder/internal/compositor"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/docs"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/incremental"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/manifest"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/pages"
	"git.home.luguber.info/inful/sitebuilder/internal/params"
	"git.home.luguber.info/inful/sitebuilder/internal/routegen"
	"git.home.luguber.info/inful/sitebuilder/internal/styles"
)

// run carries the per-build state.
type run struct {
	req      Request
	log      *slog.Logger
	writer   *incremental.Writer
	site     *config.Site
	summary  *config.Summary
	comp     *compositor.Compositor
	docs     []docs.Document
	registry *pages.Registry
}

// Run executes the complete build pipeline.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	buildID := uuid.NewString()
	log := s.logger.With(logfields.BuildID(buildID))

	r := &run{
		req:      req,
		log:      log,
		registry: pages.NewRegistry(),
	}
	r.writer = incremental.NewWriter(incremental.WithObserver(func(p string, res incremental.Result) {
		s.recorder.IncWrite(string(res))
		log.Debug("Output", logfields.Path(p), slog.String("result", string(res)))
	}))

	log.Info("Build started", logfields.Path(req.SourceDir), slog.String("output", req.OutputDir))

	stages := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"mirror", s.ensureMirror},
		{"load", r.load},
		{"walk", r.walk},
		{"render", r.render},
		{"routes", r.routes},
		{"styles", r.styles},
		{"assets", r.assets},
		{"manifest", r.manifest},
	}

	result := &Result{BuildID: buildID, StartTime: start}
	var err error
	for _, st := range stages {
		if err = ctx.Err(); err != nil {
			break
		}
		stageStart := time.Now()
		err = st.fn(ctx)
		s.recorder.ObserveStageDuration(st.name, time.Since(stageStart))
		if err != nil {
			s.recorder.IncStageResult(st.name, metrics.ResultFailed)
			log.Error("Stage failed", logfields.Stage(st.name), logfields.Error(err))
			break
		}
		s.recorder.IncStageResult(st.name, metrics.ResultSuccess)
		log.Debug("Stage complete", logfields.Stage(st.name),
			logfields.DurationMS(float64(time.Since(stageStart).Microseconds())/1000))
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(start)
	result.Pages = r.registry.Len()
	result.Writes = r.writer.Stats()
	s.recorder.ObserveBuildDuration(result.Duration)

	switch {
	case err == nil:
		result.Status = StatusSuccess
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeSuccess)
		s.recorder.AddPagesRendered(result.Pages)
		log.Info("Build complete",
			logfields.Count(result.Pages),
			slog.Int("written", result.Writes.Written),
			slog.Int("unchanged", result.Writes.Unchanged),
			slog.Int("copied", result.Writes.Copied),
			logfields.DurationMS(float64(result.Duration.Milliseconds())))
		return result, nil
	case ctx.Err() != nil:
		result.Status = StatusCancelled
	default:
		result.Status = StatusFailed
	}
	s.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
	return result, err
}

func (s *Service) ensureMirror(ctx context.Context) error {
	if s.mirror == nil {
		return nil
	}
	return s.mirror.Ensure(ctx)
}

func (r *run) staticDir() string {
	return filepath.Join(r.req.OutputDir, StaticDir)
}

func (r *run) load(context.Context) error {
	var err error
	if r.site, err = config.LoadSite(r.req.SiteFile); err != nil {
		return err
	}
	if r.summary, err = config.LoadSummary(r.req.SummaryFile); err != nil {
		return err
	}
	r.comp, err = compositor.New(r.req.Mirror)
	return err
}

func (r *run) walk(context.Context) error {
	var err error
	r.docs, err = docs.Walk(r.req.SourceDir)
	if err != nil {
		return err
	}
	r.log.Info("Discovered documents", logfields.Count(len(r.docs)))
	return nil
}

func (r *run) render(ctx context.Context) error {
	transformer := markdown.NewTransformer(r.comp)
	outer := r.site.TemplateData()
	misc := r.site.Misc.TemplateData()
	sidebar := r.summary.TemplateData()
	outputs := make(map[string]string, len(r.docs))

	for _, doc := range r.docs {
		if err := ctx.Err(); err != nil {
			return err
		}

		html, err := transformer.Transform(doc.Body)
		if err != nil {
			return withDocument(err, doc.Path)
		}
		if err := params.Validate(doc.Path, doc.Page.ParamNames()); err != nil {
			return withDocument(err, doc.Path)
		}

		pageData := doc.Page.TemplateData()
		content, err := r.comp.RenderInline(doc.Path, html, map[string]any{
			"page":  pageData,
			"outer": outer,
		})
		if err != nil {
			return withDocument(err, doc.Path)
		}
		final, err := r.comp.Render(compositor.Page, map[string]any{
			"content": string(content),
			"sidebar": sidebar,
			"page":    pageData,
			"misc":    misc,
		})
		if err != nil {
			return withDocument(err, doc.Path)
		}

		out := compositor.Sanitize(doc.Stem()) + ".html"
		if prev, dup := outputs[out]; dup {
			return errors.ValidationError("two documents map to the same output").
				WithPath(doc.Path).WithContext("other", prev).WithContext("output", out).Build()
		}
		outputs[out] = doc.Path

		if _, err := r.writer.WriteIfChanged(filepath.Join(r.staticDir(), filepath.FromSlash(out)), final); err != nil {
			return err
		}
		r.registry.Append(pages.Record{
			Source:      doc.Path,
			Output:      out,
			Page:        doc.Page,
			Fingerprint: fingerprint(doc),
		})
		r.log.Debug("Rendered page", logfields.File(doc.Path), logfields.Page(doc.Page.Title),
			logfields.Method(doc.Page.Method.String()))
	}
	return nil
}

func (r *run) routes(context.Context) error {
	if err := os.MkdirAll(r.staticDir(), 0o750); err != nil {
		return errors.IOError("create static directory").WithCause(err).WithPath(r.staticDir()).Build()
	}
	staticDir, err := filepath.Abs(r.staticDir())
	if err == nil {
		staticDir, err = filepath.EvalSymlinks(staticDir)
	}
	if err != nil {
		return errors.IOError("resolve static directory").WithCause(err).WithPath(r.staticDir()).Build()
	}
	project, err := routegen.New(r.comp).Generate(r.req.Port, staticDir, r.req.Mirror.Root, r.registry.Sorted())
	if err != nil {
		return err
	}
	serverDir := filepath.Join(r.req.OutputDir, ServerDir)
	if _, err := r.writer.WriteIfChanged(filepath.Join(serverDir, routegen.ManifestFile), project.Manifest); err != nil {
		return err
	}
	_, err = r.writer.WriteIfChanged(filepath.Join(serverDir, routegen.SourceFile), project.Source)
	return err
}

func (r *run) styles(ctx context.Context) error {
	src := filepath.Join(r.req.SourceDir, config.StylesDir)
	info, err := os.Stat(src)
	if err != nil || !info.IsDir() {
		r.log.Debug("No styles directory", logfields.Path(src))
		return nil
	}
	var compiler styles.Compiler = &styles.CopyCompiler{Writer: r.writer}
	if r.req.StyleCompiler != "" {
		compiler = &styles.BinaryCompiler{Bin: r.req.StyleCompiler, Writer: r.writer}
	}
	return compiler.Compile(ctx, src, filepath.Join(r.staticDir(), config.StylesDir))
}

func (r *run) assets(context.Context) error {
	return styles.CopyBuiltins(r.writer, r.req.Mirror, r.staticDir())
}

func (r *run) manifest(context.Context) error {
	records := r.registry.Sorted()
	sources := make([]string, len(records))
	fps := make([]string, len(records))
	for i, rec := range records {
		sources[i] = rec.Source
		fps[i] = rec.Fingerprint
	}
	m, err := manifest.New(docs.ComputeSetHash(r.docs), sources, routegen.Routes(records), fps)
	if err != nil {
		return errors.InternalError("assemble build manifest").WithCause(err).Build()
	}
	data, err := m.ToJSON()
	if err != nil {
		return errors.InternalError("encode build manifest").WithCause(err).Build()
	}
	_, err = r.writer.WriteIfChanged(filepath.Join(r.req.OutputDir, manifest.FileName), data)
	return err
}

// fingerprint hashes the raw front matter and body of a document.
func fingerprint(doc docs.Document) string {
	front := strings.TrimSuffix(strings.ReplaceAll(string(doc.FrontMatter), "\r\n", "\n"), "\n")
	return mdfp.CalculateFingerprintFromParts(front, string(doc.Body))
}

// withDocument tags err with the document it came from.
func withDocument(err error, doc string) error {
	if ce, ok := errors.AsClassified(err); ok {
		return ce.WithContext("document", doc)
	}
	return errors.InternalError("process document").WithCause(err).WithContext("document", doc).Build()
}
