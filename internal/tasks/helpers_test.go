package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/assetflow/internal/config"
	"git.home.luguber.info/inful/assetflow/internal/paths"
	"git.home.luguber.info/inful/assetflow/internal/transform"
)

func newRegistry(t *testing.T) *paths.Registry {
	t.Helper()
	return paths.FromConfig(t.TempDir(), config.Default())
}

func write(t *testing.T, reg *paths.Registry, rel, content string) {
	t.Helper()
	p := reg.Abs(rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func read(t *testing.T, reg *paths.Registry, rel string) string {
	t.Helper()
	data, err := os.ReadFile(reg.Abs(rel))
	require.NoError(t, err)
	return string(data)
}

func exists(reg *paths.Registry, rel string) bool {
	_, err := os.Stat(reg.Abs(rel))
	return err == nil
}

// fakeSass passes the source through as CSS so tests need no Dart Sass binary.
type fakeSass struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls []transform.SassRequest
}

func (f *fakeSass) Compile(_ context.Context, req transform.SassRequest) (transform.SassResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.fail[filepath.Base(req.Path)] {
		return transform.SassResult{}, errors.New("Undefined variable: $brand")
	}
	return transform.SassResult{CSS: req.Source}, nil
}

type recordingNotifier struct {
	urls [][]string
}

func (r *recordingNotifier) NotifyCSS(urls []string) { r.urls = append(r.urls, urls) }

func cssProcessor(t *testing.T) *transform.CSSProcessor {
	t.Helper()
	p, err := transform.NewCSSProcessor(config.Default().Styles.Targets)
	require.NoError(t, err)
	return p
}
