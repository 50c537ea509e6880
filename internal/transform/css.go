package transform

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

var targetPattern = regexp.MustCompile(`^(chrome|edge|firefox|ie|ios|opera|safari)(\d+(?:\.\d+)*)$`)

var engineNames = map[string]api.EngineName{
	"chrome":  api.EngineChrome,
	"edge":    api.EngineEdge,
	"firefox": api.EngineFirefox,
	"ie":      api.EngineIE,
	"ios":     api.EngineIOS,
	"opera":   api.EngineOpera,
	"safari":  api.EngineSafari,
}

// ParseTargets converts browser targets such as "chrome58" into esbuild engines.
func ParseTargets(targets []string) ([]api.Engine, error) {
	engines := make([]api.Engine, 0, len(targets))
	for _, t := range targets {
		m := targetPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(t)))
		if m == nil {
			return nil, fmt.Errorf("unknown browser target %q", t)
		}
		engines = append(engines, api.Engine{Name: engineNames[m[1]], Version: m[2]})
	}
	return engines, nil
}

// CSSOptions selects what Process does to a stylesheet.
type CSSOptions struct {
	// File is the output file name recorded in the source map.
	File string
	// InputMap is the source map of the incoming CSS, if any. It is chained
	// into the output map.
	InputMap  string
	SourceMap bool
	Minify    bool
}

// CSSOutput is a processed stylesheet. Map is nil unless a map was requested.
type CSSOutput struct {
	CSS []byte
	Map []byte
}

// CSSProcessor adds vendor prefixes for the configured browser targets and
// optionally minifies.
type CSSProcessor struct {
	engines []api.Engine
}

// NewCSSProcessor builds a processor for the given browser targets.
func NewCSSProcessor(targets []string) (*CSSProcessor, error) {
	engines, err := ParseTargets(targets)
	if err != nil {
		return nil, err
	}
	return &CSSProcessor{engines: engines}, nil
}

// Process runs the stylesheet through esbuild's CSS pipeline.
func (p *CSSProcessor) Process(css string, opts CSSOptions) (CSSOutput, error) {
	if opts.InputMap != "" {
		css = strings.TrimRight(css, "\n") + "\n/*# sourceMappingURL=data:application/json;base64," +
			base64.StdEncoding.EncodeToString([]byte(opts.InputMap)) + " */\n"
	}

	to := api.TransformOptions{
		Loader:           api.LoaderCSS,
		Engines:          p.engines,
		Sourcefile:       opts.File,
		MinifyWhitespace: opts.Minify,
		MinifySyntax:     opts.Minify,
		LegalComments:    api.LegalCommentsNone,
	}
	if opts.SourceMap {
		to.Sourcemap = api.SourceMapExternal
		to.SourcesContent = api.SourcesContentInclude
	}

	res := api.Transform(css, to)
	if len(res.Errors) > 0 {
		return CSSOutput{}, messagesError(res.Errors)
	}
	out := CSSOutput{CSS: res.Code}
	if opts.SourceMap {
		out.Map = res.Map
	}
	return out, nil
}

func messagesError(msgs []api.Message) error {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m.Location != nil {
			parts = append(parts, fmt.Sprintf("%s:%d:%d: %s", m.Location.File, m.Location.Line, m.Location.Column, m.Text))
			continue
		}
		parts = append(parts, m.Text)
	}
	return fmt.Errorf("%s", strings.Join(parts, "; "))
}
