package commands

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/assetflow/internal/pipeline"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct{}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	logger := slog.Default()
	p, err := openProject(root, true, logger)
	if err != nil {
		return err
	}
	defer p.close()

	if err := p.runner().Run(contextOf(g), pipeline.Build(p.tasks)); err != nil {
		return err
	}
	fmt.Printf("Build complete: %s\n", p.reg.Abs(p.reg.Folders.Root.Dist))
	return nil
}
