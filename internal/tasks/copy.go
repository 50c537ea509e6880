package tasks

import (
	"context"
	"log/slog"
	"path"

	"git.home.luguber.info/inful/assetflow/internal/fileset"
	ferrors "git.home.luguber.info/inful/assetflow/internal/foundation/errors"
	"git.home.luguber.info/inful/assetflow/internal/logfields"
	"git.home.luguber.info/inful/assetflow/internal/mode"
	"git.home.luguber.info/inful/assetflow/internal/paths"
)

// ThirdPartyCopy copies the jquery file verbatim into dist when enabled.
type ThirdPartyCopy struct {
	reg     *paths.Registry
	enabled bool
	logger  *slog.Logger
}

// NewThirdPartyCopy creates the third-party copy task.
func NewThirdPartyCopy(reg *paths.Registry, enabled bool, logger *slog.Logger) *ThirdPartyCopy {
	if logger == nil {
		logger = slog.Default()
	}
	return &ThirdPartyCopy{reg: reg, enabled: enabled, logger: logger}
}

func (t *ThirdPartyCopy) Name() string { return NameThirdPartyCopy }

func (t *ThirdPartyCopy) Run(ctx context.Context, _ mode.Mode) error {
	if !t.enabled {
		t.logger.DebugContext(ctx, "Third-party script disabled", logfields.Task(NameThirdPartyCopy))
		return nil
	}

	src := t.reg.JQueryFile()
	dst := path.Join(t.reg.Folders.JQuery.Dist, t.reg.Filenames.JQuery)
	if err := copyFile(t.reg.Abs(src), t.reg.Abs(dst)); err != nil {
		return ferrors.FileSystemError("copy third-party script").WithCause(err).
			WithContext("path", src).Build()
	}
	t.logger.DebugContext(ctx, "Third-party script copied",
		logfields.Task(NameThirdPartyCopy), logfields.Path(src), logfields.Output(dst))
	return nil
}

// Fonts copies every file of the fonts folder verbatim into dist.
type Fonts struct {
	reg    *paths.Registry
	logger *slog.Logger
}

// NewFonts creates the font copy task.
func NewFonts(reg *paths.Registry, logger *slog.Logger) *Fonts {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fonts{reg: reg, logger: logger}
}

func (f *Fonts) Name() string { return NameFonts }

func (f *Fonts) Run(ctx context.Context, _ mode.Mode) error {
	files, err := fileset.Resolve(f.reg.Root, f.reg.Files.Fonts)
	if err != nil {
		return ferrors.FileSystemError("resolve fonts").WithCause(err).Build()
	}
	for _, rel := range files {
		dst, err := rebase(rel, f.reg.Folders.Fonts.Dev, f.reg.Folders.Fonts.Dist)
		if err != nil {
			return ferrors.InternalError("map font output").WithCause(err).Build()
		}
		if err := copyFile(f.reg.Abs(rel), f.reg.Abs(dst)); err != nil {
			return ferrors.FileSystemError("copy font").WithCause(err).
				WithContext("path", rel).Build()
		}
	}
	f.logger.DebugContext(ctx, "Fonts copied", logfields.Task(NameFonts), logfields.Count(len(files)))
	return nil
}
