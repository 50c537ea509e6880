package tasks

import (
	"context"
	"log/slog"
	"os"
	"path"
	"strings"

	"git.home.luguber.info/inful/assetflow/internal/fileset"
	ferrors "git.home.luguber.info/inful/assetflow/internal/foundation/errors"
	"git.home.luguber.info/inful/assetflow/internal/logfields"
	"git.home.luguber.info/inful/assetflow/internal/mode"
	"git.home.luguber.info/inful/assetflow/internal/paths"
	"git.home.luguber.info/inful/assetflow/internal/transform"
)

// StyleNotifier receives the URL paths of stylesheets written in dev mode,
// e.g. "/styles/main.css".
type StyleNotifier interface {
	NotifyCSS(urls []string)
}

// Style compiles the Sass sources. In dev mode it writes expanded CSS with a
// source map into the dev styles folder and notifies live reload; in build
// mode it writes minified CSS into the dist styles folder.
//
// A stylesheet that fails to compile is logged and skipped. The task itself
// still succeeds so the watch loop keeps going.
type Style struct {
	reg      *paths.Registry
	compiler transform.SassCompiler
	post     *transform.CSSProcessor
	notifier StyleNotifier
	logger   *slog.Logger
}

// NewStyle creates the style task.
func NewStyle(reg *paths.Registry, compiler transform.SassCompiler, post *transform.CSSProcessor, logger *slog.Logger) *Style {
	if logger == nil {
		logger = slog.Default()
	}
	return &Style{reg: reg, compiler: compiler, post: post, logger: logger}
}

// WithNotifier sets the receiver of dev-mode CSS updates. Call before the task runs.
func (s *Style) WithNotifier(n StyleNotifier) *Style {
	s.notifier = n
	return s
}

func (s *Style) Name() string { return NameStyle }

func (s *Style) Run(ctx context.Context, m mode.Mode) error {
	files, err := fileset.Resolve(s.reg.Root, s.reg.Files.Sass)
	if err != nil {
		return ferrors.FileSystemError("resolve style sources").WithCause(err).Build()
	}

	var urls []string
	compiled := 0
	for _, rel := range files {
		if strings.HasPrefix(path.Base(rel), "_") {
			continue
		}
		out, err := s.compile(ctx, rel, m)
		if err != nil {
			if ferrors.HasCategory(err, ferrors.CategoryFileSystem) {
				return err
			}
			s.logger.ErrorContext(ctx, "Stylesheet skipped",
				logfields.Task(NameStyle), logfields.Path(rel), logfields.Error(err))
			continue
		}
		compiled++
		if m.IsDev() {
			urls = append(urls, "/"+strings.TrimPrefix(out, s.reg.Folders.Root.Dev+"/"))
		}
	}

	s.logger.DebugContext(ctx, "Styles compiled",
		logfields.Task(NameStyle), logfields.Mode(m.String()), logfields.Count(compiled))

	if s.notifier != nil && len(urls) > 0 {
		s.notifier.NotifyCSS(urls)
	}
	return nil
}

// compile builds one entry stylesheet and returns the relative path of the CSS it wrote.
func (s *Style) compile(ctx context.Context, rel string, m mode.Mode) (string, error) {
	abs := s.reg.Abs(rel)
	src, err := os.ReadFile(abs)
	if err != nil {
		return "", ferrors.FileSystemError("read stylesheet").WithCause(err).
			WithContext("path", rel).Build()
	}

	outRel, err := rebase(strings.TrimSuffix(rel, ".scss")+".css", s.reg.Folders.Sass.Dev, s.outDir(m))
	if err != nil {
		return "", ferrors.InternalError("map stylesheet output").WithCause(err).Build()
	}

	res, err := s.compiler.Compile(ctx, transform.SassRequest{
		Path:         abs,
		Source:       string(src),
		IncludePaths: []string{s.reg.Abs(path.Dir(rel)), s.reg.Abs(s.reg.Folders.Sass.Dev)},
		SourceMap:    m.IsDev(),
	})
	if err != nil {
		return "", ferrors.TransformError("compile sass").WithCause(err).
			Warning().WithContext("path", rel).Build()
	}

	name := path.Base(outRel)
	css, err := s.post.Process(res.CSS, transform.CSSOptions{
		File:      name,
		InputMap:  res.SourceMap,
		SourceMap: m.IsDev(),
		Minify:    m.IsBuild(),
	})
	if err != nil {
		return "", ferrors.TransformError("post-process css").WithCause(err).
			Warning().WithContext("path", rel).Build()
	}

	code := css.CSS
	if css.Map != nil {
		code = append(code, []byte("/*# sourceMappingURL="+name+".map */\n")...)
		if err := writeFile(s.reg.Abs(outRel+".map"), css.Map); err != nil {
			return "", ferrors.FileSystemError("write source map").WithCause(err).
				WithContext("path", outRel+".map").Build()
		}
	}
	if err := writeFile(s.reg.Abs(outRel), code); err != nil {
		return "", ferrors.FileSystemError("write stylesheet").WithCause(err).
			WithContext("path", outRel).Build()
	}
	return outRel, nil
}

func (s *Style) outDir(m mode.Mode) string {
	if m.IsBuild() {
		return s.reg.Folders.Styles.Dist
	}
	return s.reg.Folders.Styles.Dev
}
