package tasks

import (
	"context"
	"log/slog"
	"os"
	"path"

	"git.home.luguber.info/inful/assetflow/internal/fileset"
	ferrors "git.home.luguber.info/inful/assetflow/internal/foundation/errors"
	"git.home.luguber.info/inful/assetflow/internal/logfields"
	"git.home.luguber.info/inful/assetflow/internal/mode"
	"git.home.luguber.info/inful/assetflow/internal/paths"
	"git.home.luguber.info/inful/assetflow/internal/transform"
)

// Script concatenates library scripts followed by application scripts into
// the bundle. The third-party jquery file is never part of it.
type Script struct {
	reg    *paths.Registry
	logger *slog.Logger
}

// NewScript creates the script task.
func NewScript(reg *paths.Registry, logger *slog.Logger) *Script {
	if logger == nil {
		logger = slog.Default()
	}
	return &Script{reg: reg, logger: logger}
}

func (s *Script) Name() string { return NameScript }

// Inputs returns the ordered bundle inputs: libraries first, then application
// scripts, each group sorted.
func (s *Script) Inputs() ([]string, error) {
	return fileset.Ordered(s.reg.Root,
		[]fileset.Pattern{s.reg.Files.Libs, s.reg.Files.JS},
		s.reg.Files.JQuery.Include...)
}

func (s *Script) Run(ctx context.Context, m mode.Mode) error {
	files, err := s.Inputs()
	if err != nil {
		return ferrors.FileSystemError("resolve script sources").WithCause(err).Build()
	}
	if len(files) == 0 {
		s.logger.DebugContext(ctx, "No scripts to bundle", logfields.Task(NameScript))
		return nil
	}

	scripts := make([]transform.Script, 0, len(files))
	for _, rel := range files {
		code, err := os.ReadFile(s.reg.Abs(rel))
		if err != nil {
			return ferrors.FileSystemError("read script").WithCause(err).
				WithContext("path", rel).Build()
		}
		scripts = append(scripts, transform.Script{Path: rel, Code: code})
	}

	bundle := s.reg.Filenames.Bundle
	if m.IsDev() {
		out := path.Join(s.reg.Folders.Scripts.Dev, bundle)
		b, err := transform.ConcatWithMap(bundle, scripts)
		if err != nil {
			return ferrors.TransformError("concatenate scripts").WithCause(err).Build()
		}
		if err := writeFile(s.reg.Abs(out+".map"), b.Map); err != nil {
			return ferrors.FileSystemError("write source map").WithCause(err).
				WithContext("path", out+".map").Build()
		}
		if err := writeFile(s.reg.Abs(out), b.Code); err != nil {
			return ferrors.FileSystemError("write bundle").WithCause(err).
				WithContext("path", out).Build()
		}
	} else {
		out := path.Join(s.reg.Folders.Scripts.Dist, bundle)
		code, err := transform.Minify(bundle, scripts)
		if err != nil {
			return ferrors.TransformError("minify scripts").WithCause(err).Build()
		}
		if err := writeFile(s.reg.Abs(out), code); err != nil {
			return ferrors.FileSystemError("write bundle").WithCause(err).
				WithContext("path", out).Build()
		}
	}

	s.logger.DebugContext(ctx, "Scripts bundled",
		logfields.Task(NameScript), logfields.Mode(m.String()), logfields.Count(len(files)))
	return nil
}
