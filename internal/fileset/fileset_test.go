package fileset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(rel), 0o644))
	}
}

func TestResolve_SortedFilesOnly(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "dev/scss/z.scss", "dev/scss/a.scss", "dev/scss/sub/m.scss")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dev/scss/dir.scss"), 0o755))

	got, err := Resolve(root, Glob("dev/scss/**/*.scss"))
	require.NoError(t, err)
	assert.Equal(t, []string{"dev/scss/a.scss", "dev/scss/sub/m.scss", "dev/scss/z.scss"}, got)
}

func TestResolve_Alternatives(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "dev/images/a.png", "dev/images/b.jpg", "dev/images/c.webp", "dev/images/i/d.svg")

	got, err := Resolve(root, Glob("dev/images/**/*.{png,jpg,gif,svg}"))
	require.NoError(t, err)
	assert.Equal(t, []string{"dev/images/a.png", "dev/images/b.jpg", "dev/images/i/d.svg"}, got)
}

func TestResolve_MissingRootIsEmpty(t *testing.T) {
	got, err := Resolve(filepath.Join(t.TempDir(), "missing"), Glob("dev/fonts/**/*"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResolve_InvalidPattern(t *testing.T) {
	_, err := Resolve(t.TempDir(), Glob("dev/[unclosed"))
	require.Error(t, err)
}

func TestOrdered_GroupOrderAndDedup(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"dev/scripts/app.js",
		"dev/scripts/main.js",
		"dev/scripts/script.min.js",
		"dev/scripts/libs/zlib.js",
		"dev/scripts/libs/alib.js",
		"dev/scripts/libs/jquery/jquery.js",
	)

	libs := Glob("dev/scripts/libs/**/*.js")
	app := Glob("dev/scripts/**/*.js", "dev/scripts/**/script.min*.js")

	got, err := Ordered(root, []Pattern{libs, app}, "dev/scripts/libs/jquery/jquery.js")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"dev/scripts/libs/alib.js",
		"dev/scripts/libs/zlib.js",
		"dev/scripts/app.js",
		"dev/scripts/main.js",
	}, got)
}

func TestPatternMatch(t *testing.T) {
	p := Glob("dev/scripts/**/*.js", "dev/scripts/**/script.min*.js")

	assert.True(t, p.Match("dev/scripts/app.js"))
	assert.True(t, p.Match("dev/scripts/libs/x.js"))
	assert.False(t, p.Match("dev/scripts/script.min.js"))
	assert.False(t, p.Match("dev/scripts/app.ts"))

	q := p.Without("dev/scripts/libs/**")
	assert.False(t, q.Match("dev/scripts/libs/x.js"))
	assert.True(t, p.Match("dev/scripts/libs/x.js"), "Without must not mutate the receiver")
}
