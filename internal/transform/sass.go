package transform

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"sync"

	"github.com/bep/godartsass/v2"
)

// SassRequest describes one stylesheet to compile.
type SassRequest struct {
	// Path is the OS path of the entry stylesheet. It becomes the source URL in maps.
	Path         string
	Source       string
	IncludePaths []string
	SourceMap    bool
	Compressed   bool
}

// SassResult is the compiled stylesheet and, when requested, its source map.
type SassResult struct {
	CSS       string
	SourceMap string
}

// SassCompiler compiles a single SCSS entry point.
type SassCompiler interface {
	Compile(ctx context.Context, req SassRequest) (SassResult, error)
}

// DartSass compiles through the Dart Sass embedded protocol. The compiler
// process starts on first use, so pipelines without stylesheets never need
// the binary. A DartSass is safe for concurrent use.
type DartSass struct {
	binary string

	mu         sync.Mutex
	transpiler *godartsass.Transpiler
	closed     bool
}

// NewDartSass returns a compiler that runs binary. Empty means "sass" on PATH.
func NewDartSass(binary string) *DartSass {
	return &DartSass{binary: binary}
}

func (d *DartSass) start() (*godartsass.Transpiler, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, fmt.Errorf("sass compiler closed")
	}
	if d.transpiler != nil {
		return d.transpiler, nil
	}
	t, err := godartsass.Start(godartsass.Options{DartSassEmbeddedFilename: d.binary})
	if err != nil {
		return nil, fmt.Errorf("start dart sass %q: %w", d.binaryName(), err)
	}
	d.transpiler = t
	return t, nil
}

func (d *DartSass) binaryName() string {
	if d.binary == "" {
		return "sass"
	}
	return d.binary
}

// Compile implements SassCompiler.
func (d *DartSass) Compile(ctx context.Context, req SassRequest) (SassResult, error) {
	if err := ctx.Err(); err != nil {
		return SassResult{}, err
	}
	t, err := d.start()
	if err != nil {
		return SassResult{}, err
	}

	style := godartsass.OutputStyleExpanded
	if req.Compressed {
		style = godartsass.OutputStyleCompressed
	}
	res, err := t.Execute(godartsass.Args{
		Source:                  req.Source,
		URL:                     fileURL(req.Path),
		SourceSyntax:            godartsass.SourceSyntaxSCSS,
		IncludePaths:            req.IncludePaths,
		OutputStyle:             style,
		EnableSourceMap:         req.SourceMap,
		SourceMapIncludeSources: req.SourceMap,
	})
	if err != nil {
		return SassResult{}, err
	}
	return SassResult{CSS: res.CSS, SourceMap: res.SourceMap}, nil
}

// Close stops the compiler process if it was started.
func (d *DartSass) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	if d.transpiler == nil {
		return nil
	}
	err := d.transpiler.Close()
	d.transpiler = nil
	return err
}

func fileURL(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		abs = p
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}
