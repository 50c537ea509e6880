package commands

import (
	"log/slog"

	"git.home.luguber.info/inful/assetflow/internal/pipeline"
)

// DevCmd implements the default 'dev' command.
type DevCmd struct{}

func (d *DevCmd) Run(g *Global, root *CLI) error {
	logger := slog.Default()
	p, err := openProject(root, false, logger)
	if err != nil {
		return err
	}
	defer p.close()

	p.withDevServer()
	return p.runner().Run(contextOf(g), pipeline.Dev(p.tasks))
}
