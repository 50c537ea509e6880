package tasks

import (
	"context"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/assetflow/internal/fileset"
	ferrors "git.home.luguber.info/inful/assetflow/internal/foundation/errors"
	"git.home.luguber.info/inful/assetflow/internal/logfields"
	"git.home.luguber.info/inful/assetflow/internal/mode"
	"git.home.luguber.info/inful/assetflow/internal/paths"
	"git.home.luguber.info/inful/assetflow/internal/transform"
)

// Markup minifies every HTML file of the dev root into the dist root.
type Markup struct {
	reg      *paths.Registry
	minifier *transform.HTMLMinifier
	logger   *slog.Logger
}

// NewMarkup creates the markup task.
func NewMarkup(reg *paths.Registry, minifier *transform.HTMLMinifier, logger *slog.Logger) *Markup {
	if logger == nil {
		logger = slog.Default()
	}
	return &Markup{reg: reg, minifier: minifier, logger: logger}
}

func (k *Markup) Name() string { return NameMarkup }

func (k *Markup) Run(ctx context.Context, _ mode.Mode) error {
	files, err := fileset.Resolve(k.reg.Root, k.reg.Files.HTML)
	if err != nil {
		return ferrors.FileSystemError("resolve markup").WithCause(err).Build()
	}
	root := k.reg.Folders.Root
	for _, rel := range files {
		data, err := os.ReadFile(k.reg.Abs(rel))
		if err != nil {
			return ferrors.FileSystemError("read markup").WithCause(err).
				WithContext("path", rel).Build()
		}
		min, err := k.minifier.Minify(data)
		if err != nil {
			return ferrors.TransformError("minify markup").WithCause(err).
				WithContext("path", rel).Build()
		}
		dst, err := rebase(rel, root.Dev, root.Dist)
		if err != nil {
			return ferrors.InternalError("map markup output").WithCause(err).Build()
		}
		if err := writeFile(k.reg.Abs(dst), min); err != nil {
			return ferrors.FileSystemError("write markup").WithCause(err).
				WithContext("path", dst).Build()
		}
	}
	k.logger.DebugContext(ctx, "Markup minified", logfields.Task(NameMarkup), logfields.Count(len(files)))
	return nil
}
