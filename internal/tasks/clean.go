package tasks

import (
	"context"
	"log/slog"
	"os"

	ferrors "git.home.luguber.info/inful/assetflow/internal/foundation/errors"
	"git.home.luguber.info/inful/assetflow/internal/logfields"
	"git.home.luguber.info/inful/assetflow/internal/mode"
	"git.home.luguber.info/inful/assetflow/internal/paths"
)

// Clean removes the whole dist tree. A missing tree is not an error.
type Clean struct {
	reg    *paths.Registry
	logger *slog.Logger
}

// NewClean creates the clean task.
func NewClean(reg *paths.Registry, logger *slog.Logger) *Clean {
	if logger == nil {
		logger = slog.Default()
	}
	return &Clean{reg: reg, logger: logger}
}

func (c *Clean) Name() string { return NameClean }

func (c *Clean) Run(ctx context.Context, _ mode.Mode) error {
	dist := c.reg.Folders.Root.Dist
	if dist == "" || dist == "." {
		return ferrors.ValidationError("refusing to clean the project root").Build()
	}
	if err := os.RemoveAll(c.reg.Abs(dist)); err != nil {
		return ferrors.FileSystemError("remove dist tree").WithCause(err).
			WithContext("path", dist).Build()
	}
	c.logger.DebugContext(ctx, "Dist tree removed", logfields.Task(NameClean), logfields.Path(dist))
	return nil
}
