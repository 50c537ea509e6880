package commands

import (
	"fmt"
	"log/slog"
	"path/filepath"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/assetflow/internal/config"
	"git.home.luguber.info/inful/assetflow/internal/devserver"
	ferrors "git.home.luguber.info/inful/assetflow/internal/foundation/errors"
	"git.home.luguber.info/inful/assetflow/internal/imagecache"
	"git.home.luguber.info/inful/assetflow/internal/logfields"
	"git.home.luguber.info/inful/assetflow/internal/metrics"
	"git.home.luguber.info/inful/assetflow/internal/paths"
	"git.home.luguber.info/inful/assetflow/internal/pipeline"
	"git.home.luguber.info/inful/assetflow/internal/tasks"
	"git.home.luguber.info/inful/assetflow/internal/transform"
)

// project is a loaded configuration with every engine and task built from it.
type project struct {
	cfg      *config.Config
	reg      *paths.Registry
	tasks    pipeline.TaskSet
	style    *tasks.Style
	promReg  *prom.Registry
	recorder *metrics.PrometheusRecorder
	logger   *slog.Logger
	closers  []func() error
}

// openProject wires the tasks for cfg. withCache opens the image cache,
// which only the build pipeline reads.
func openProject(root *CLI, withCache bool, logger *slog.Logger) (*project, error) {
	cfg, err := root.LoadConfig()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(root.root())
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "resolve project root").Build()
	}
	reg := paths.FromConfig(abs, cfg)

	post, err := transform.NewCSSProcessor(cfg.Styles.Targets)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryValidation, "styles.targets").Fatal().Build()
	}

	p := &project{cfg: cfg, reg: reg, promReg: prom.NewRegistry(), logger: logger}
	p.recorder = metrics.NewPrometheusRecorder(p.promReg)

	sass := transform.NewDartSass(cfg.Styles.DartSass)
	p.closers = append(p.closers, sass.Close)

	var cache imagecache.Cache = imagecache.Nop{}
	if withCache && cfg.Images.Cache != "off" {
		c, err := imagecache.Open(reg.Abs(cfg.Images.Cache))
		if err != nil {
			logger.Warn("Image cache unavailable; optimizing without it",
				logfields.Path(cfg.Images.Cache), logfields.Error(err))
		} else {
			cache = c
			p.closers = append(p.closers, c.Close)
		}
	}

	p.style = tasks.NewStyle(reg, sass, post, logger)
	p.tasks = pipeline.TaskSet{
		Style:          p.style,
		Script:         tasks.NewScript(reg, logger),
		ThirdPartyCopy: tasks.NewThirdPartyCopy(reg, cfg.JQueryEnabled(), logger),
		Markup:         tasks.NewMarkup(reg, transform.NewHTMLMinifier(), logger),
		Images: tasks.NewImages(reg, transform.NewImageOptimizer(cfg.Images.JPEGQuality), cache,
			fmt.Sprintf("jpeg-q%d", cfg.Images.JPEGQuality), logger).WithRecorder(p.recorder),
		Fonts:     tasks.NewFonts(reg, logger),
		CacheBust: tasks.NewCacheBust(reg, nil, logger),
		Clean:     tasks.NewClean(reg, logger),
	}
	return p, nil
}

// withDevServer adds the watch/serve stage and routes CSS updates to its hub.
func (p *project) withDevServer() *devserver.Server {
	hub := devserver.NewHub(p.recorder, p.logger)
	p.style.WithNotifier(hub)
	srv := devserver.New(p.reg, hub,
		devserver.DefaultRules(p.reg, p.tasks.Style, p.tasks.Script),
		devserver.Options{Addr: p.cfg.Server.Addr(), Debounce: p.cfg.Server.DebounceDuration()},
		p.logger,
	).WithMetrics(metrics.HTTPHandler(p.promReg))
	p.tasks.Watch = srv
	return srv
}

func (p *project) runner() *pipeline.Runner {
	return pipeline.NewRunner(p.logger, p.recorder)
}

func (p *project) close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil {
			p.logger.Debug("close failed", logfields.Error(err))
		}
	}
}
