package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/assetflow/internal/config"
)

func defaultRegistry(root string) *Registry {
	return FromConfig(root, config.Default())
}

func TestNew_FolderTable(t *testing.T) {
	r := defaultRegistry("/project")
	f := r.Folders

	assert.Equal(t, Folder{Dev: "dev", Dist: "dist"}, f.Root)
	assert.Equal(t, Folder{Dev: "dev/scripts", Dist: "dist/scripts"}, f.Scripts)
	assert.Equal(t, Folder{Dev: "dev/scripts/libs", Dist: "dist/scripts/libs"}, f.Libs)
	assert.Equal(t, Folder{Dev: "dev/scripts/libs/jquery", Dist: "dist/scripts/libs/jquery"}, f.JQuery)
	assert.Equal(t, Folder{Dev: "dev/styles", Dist: "dist/styles"}, f.Styles)
	assert.Equal(t, Folder{Dev: "dev/images", Dist: "dist/images"}, f.Images)
	assert.Equal(t, Folder{Dev: "dev/fonts", Dist: "dist/fonts"}, f.Fonts)
	assert.Equal(t, "dev/scss", f.Sass.Dev)
	assert.Empty(t, f.Sass.Dist)
}

// Every dist folder mirrors its dev folder; none may degrade to an undefined parent.
func TestNew_DistMirrorsDev(t *testing.T) {
	r := defaultRegistry("/project")
	for name, f := range map[string]Folder{
		"scripts": r.Folders.Scripts, "libs": r.Folders.Libs, "jquery": r.Folders.JQuery,
		"styles": r.Folders.Styles, "images": r.Folders.Images, "fonts": r.Folders.Fonts,
	} {
		rel, err := filepath.Rel("dev", f.Dev)
		require.NoError(t, err, name)
		assert.Equal(t, filepath.ToSlash(filepath.Join("dist", rel)), f.Dist, name)
		assert.NotContains(t, f.Dist, "undefined", name)
	}
}

func TestNew_FilePatterns(t *testing.T) {
	r := defaultRegistry("/project")
	files := r.Files

	assert.True(t, files.HTML.Match("dev/index.html"))
	assert.True(t, files.HTML.Match("dev/about/team.html"))
	assert.False(t, files.HTML.Match("dist/index.html"))

	assert.True(t, files.Sass.Match("dev/scss/main.scss"))
	assert.True(t, files.Libs.Match("dev/scripts/libs/slider.js"))
	assert.True(t, files.JS.Match("dev/scripts/app.js"))
	assert.False(t, files.JS.Match("dev/scripts/script.min.js"))
	assert.True(t, files.JQuery.Match("dev/scripts/libs/jquery/jquery-3.4.1.min.js"))
	assert.False(t, files.JQuery.Match("dev/scripts/libs/jquery/jquery-3x4x1xminxjs"))
	assert.True(t, files.Images.Match("dev/images/logo.svg"))
	assert.False(t, files.Images.Match("dev/images/logo.bmp"))
	assert.True(t, files.Fonts.Match("dev/fonts/open-sans/regular.woff2"))

	assert.Equal(t, "script.min.js", r.Filenames.Bundle)
	assert.Equal(t, "dev/scripts/libs/jquery/jquery-3.4.1.min.js", r.JQueryFile())
}

func TestNew_CustomLayout(t *testing.T) {
	cfg := config.Default()
	cfg.Layout.Dev = "./src/"
	cfg.Layout.Dist = "public"
	cfg.Layout.Scripts = "js"
	r := FromConfig("/p", cfg)

	assert.Equal(t, Folder{Dev: "src/js", Dist: "public/js"}, r.Folders.Scripts)
	assert.True(t, r.Files.HTML.Match("src/index.html"))
}

func TestAbsRel(t *testing.T) {
	root := t.TempDir()
	r := defaultRegistry(root)

	abs := r.Abs("dev/styles/main.css")
	assert.Equal(t, filepath.Join(root, "dev", "styles", "main.css"), abs)

	rel, err := r.Rel(abs)
	require.NoError(t, err)
	assert.Equal(t, "dev/styles/main.css", rel)
}
