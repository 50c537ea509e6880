package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/assetflow/internal/config"
	"git.home.luguber.info/inful/assetflow/internal/imagecache"
	"git.home.luguber.info/inful/assetflow/internal/mode"
	"git.home.luguber.info/inful/assetflow/internal/paths"
	"git.home.luguber.info/inful/assetflow/internal/tasks"
	"git.home.luguber.info/inful/assetflow/internal/transform"
)

// passthroughSass returns the source unchanged so the project needs no Dart Sass.
type passthroughSass struct{}

func (passthroughSass) Compile(_ context.Context, req transform.SassRequest) (transform.SassResult, error) {
	return transform.SassResult{CSS: req.Source}, nil
}

func project(t *testing.T, files map[string]string) *paths.Registry {
	t.Helper()
	reg := paths.FromConfig(t.TempDir(), config.Default())
	for rel, content := range files {
		p := reg.Abs(rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return reg
}

func realTasks(t *testing.T, reg *paths.Registry, useJQuery bool, now func() time.Time) TaskSet {
	t.Helper()
	post, err := transform.NewCSSProcessor(config.Default().Styles.Targets)
	require.NoError(t, err)
	return TaskSet{
		Style:          tasks.NewStyle(reg, passthroughSass{}, post, nil),
		Script:         tasks.NewScript(reg, nil),
		ThirdPartyCopy: tasks.NewThirdPartyCopy(reg, useJQuery, nil),
		Markup:         tasks.NewMarkup(reg, transform.NewHTMLMinifier(), nil),
		Images:         tasks.NewImages(reg, transform.NewImageOptimizer(85), imagecache.Nop{}, "q85", nil),
		Fonts:          tasks.NewFonts(reg, nil),
		CacheBust:      tasks.NewCacheBust(reg, now, nil),
		Clean:          tasks.NewClean(reg, nil),
		Watch:          fakeTask{name: "watch", fn: func(context.Context, mode.Mode) error { return nil }},
	}
}

var sampleProject = map[string]string{
	"dev/index.html":                              "<html>\n  <body>\n    <script src=\"a.js?cb=1001\"></script>\n  </body>\n</html>\n",
	"dev/scss/main.scss":                          ".a { color: red; }\n",
	"dev/scripts/app.js":                          "var app = 1;\n",
	"dev/scripts/libs/helper.js":                  "var helper = 1;\n",
	"dev/fonts/body.woff2":                        "font",
	"dev/scripts/libs/jquery/jquery-3.4.1.min.js": "/*! jQuery */",
	"dist/stale.txt":                              "from an earlier build",
}

func fileExists(reg *paths.Registry, rel string) bool {
	_, err := os.Stat(reg.Abs(rel))
	return err == nil
}

func TestBuildPipeline_EndToEnd(t *testing.T) {
	reg := project(t, sampleProject)
	now := func() time.Time { return time.UnixMilli(2000000) }

	require.NoError(t, NewRunner(nil, nil).Run(t.Context(), Build(realTasks(t, reg, true, now))))

	index, err := os.ReadFile(reg.Abs("dist/index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "a.js?cb=2000000")

	for _, rel := range []string{
		"dev/styles/main.css",
		"dev/styles/main.css.map",
		"dev/scripts/script.min.js",
		"dist/styles/main.css",
		"dist/scripts/script.min.js",
		"dist/scripts/libs/jquery/jquery-3.4.1.min.js",
		"dist/fonts/body.woff2",
	} {
		assert.True(t, fileExists(reg, rel), rel)
	}
	assert.False(t, fileExists(reg, "dist/stale.txt"), "clean wipes dist before the build group")
	assert.False(t, fileExists(reg, "dist/styles/main.css.map"))
}

func TestBuildPipeline_WithoutJQuery(t *testing.T) {
	reg := project(t, sampleProject)

	require.NoError(t, NewRunner(nil, nil).Run(t.Context(), Build(realTasks(t, reg, false, nil))))

	assert.False(t, fileExists(reg, "dist/scripts/libs/jquery/jquery-3.4.1.min.js"))
	assert.False(t, fileExists(reg, "dist/scripts/libs/jquery"))
	assert.True(t, fileExists(reg, "dist/index.html"))
}

func TestDevPipeline_CacheBustInDevRoot(t *testing.T) {
	reg := project(t, sampleProject)
	now := func() time.Time { return time.UnixMilli(2000000) }

	require.NoError(t, NewRunner(nil, nil).Run(t.Context(), Dev(realTasks(t, reg, true, now))))

	index, err := os.ReadFile(reg.Abs("dev/index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), `<script src="a.js?cb=2000000"></script>`)
	assert.True(t, fileExists(reg, "dev/styles/main.css"))
	assert.False(t, fileExists(reg, "dist/index.html"))
}

func TestBuildPipeline_MissingJQueryFailsBuild(t *testing.T) {
	files := map[string]string{"dev/index.html": "<p>x</p>"}
	reg := project(t, files)

	err := NewRunner(nil, nil).Run(t.Context(), Build(realTasks(t, reg, true, nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "copy third-party script")
	assert.False(t, fileExists(reg, "dist/index.html"), "finalize never runs after a failed group")
}
