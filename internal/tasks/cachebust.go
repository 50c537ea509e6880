package tasks

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"time"

	"git.home.luguber.info/inful/assetflow/internal/fileset"
	ferrors "git.home.luguber.info/inful/assetflow/internal/foundation/errors"
	"git.home.luguber.info/inful/assetflow/internal/logfields"
	"git.home.luguber.info/inful/assetflow/internal/mode"
	"git.home.luguber.info/inful/assetflow/internal/paths"
)

var cacheBustToken = regexp.MustCompile(`cb=\d+`)

// CacheBust rewrites every cb=<digits> token in the dev HTML files, in place,
// to the current time in epoch milliseconds. One invocation uses one token.
type CacheBust struct {
	reg    *paths.Registry
	now    func() time.Time
	logger *slog.Logger
}

// NewCacheBust creates the cache-bust task. A nil clock means time.Now.
func NewCacheBust(reg *paths.Registry, now func() time.Time, logger *slog.Logger) *CacheBust {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheBust{reg: reg, now: now, logger: logger}
}

func (c *CacheBust) Name() string { return NameCacheBust }

func (c *CacheBust) Run(ctx context.Context, _ mode.Mode) error {
	files, err := fileset.Resolve(c.reg.Root, c.reg.Files.HTML)
	if err != nil {
		return ferrors.FileSystemError("resolve markup").WithCause(err).Build()
	}

	repl := []byte("cb=" + strconv.FormatInt(c.now().UnixMilli(), 10))
	rewritten := 0
	for _, rel := range files {
		abs := c.reg.Abs(rel)
		data, err := os.ReadFile(abs)
		if err != nil {
			return ferrors.FileSystemError("read markup").WithCause(err).
				WithContext("path", rel).Build()
		}
		if !cacheBustToken.Match(data) {
			continue
		}
		out := cacheBustToken.ReplaceAllLiteral(data, repl)
		if bytes.Equal(out, data) {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil {
			return ferrors.FileSystemError("stat markup").WithCause(err).
				WithContext("path", rel).Build()
		}
		if err := os.WriteFile(abs, out, info.Mode().Perm()); err != nil {
			return ferrors.FileSystemError("rewrite markup").WithCause(err).
				WithContext("path", rel).Build()
		}
		rewritten++
	}
	c.logger.DebugContext(ctx, "Cache-busting tokens rewritten",
		logfields.Task(NameCacheBust), logfields.Count(rewritten), slog.String("token", string(repl[3:])))
	return nil
}
