package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/assetflow/internal/fileset"
	ferrors "git.home.luguber.info/inful/assetflow/internal/foundation/errors"
	"git.home.luguber.info/inful/assetflow/internal/imagecache"
	"git.home.luguber.info/inful/assetflow/internal/logfields"
	"git.home.luguber.info/inful/assetflow/internal/metrics"
	"git.home.luguber.info/inful/assetflow/internal/mode"
	"git.home.luguber.info/inful/assetflow/internal/paths"
)

// Optimizer shrinks one image. name carries the extension that selects the codec.
type Optimizer interface {
	Optimize(name string, data []byte) ([]byte, error)
}

// Images optimizes every image of the images folder into dist. Results are
// looked up in and stored to the cache; cache failures only cost a warning.
type Images struct {
	reg       *paths.Registry
	optimizer Optimizer
	cache     imagecache.Cache
	salt      string
	recorder  metrics.Recorder
	logger    *slog.Logger
}

// NewImages creates the image task. salt names the optimizer settings so a
// settings change invalidates cached results. A nil cache disables caching.
func NewImages(reg *paths.Registry, optimizer Optimizer, cache imagecache.Cache, salt string, logger *slog.Logger) *Images {
	if logger == nil {
		logger = slog.Default()
	}
	if cache == nil {
		cache = imagecache.Nop{}
	}
	return &Images{
		reg:       reg,
		optimizer: optimizer,
		cache:     cache,
		salt:      salt,
		recorder:  metrics.NoopRecorder{},
		logger:    logger,
	}
}

// WithRecorder sets the metrics recorder for cache lookups.
func (i *Images) WithRecorder(r metrics.Recorder) *Images {
	if r != nil {
		i.recorder = r
	}
	return i
}

func (i *Images) Name() string { return NameImages }

func (i *Images) Run(ctx context.Context, _ mode.Mode) error {
	files, err := fileset.Resolve(i.reg.Root, i.reg.Files.Images)
	if err != nil {
		return ferrors.FileSystemError("resolve images").WithCause(err).Build()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, rel := range files {
		g.Go(func() error { return i.one(gctx, rel) })
	}
	if err := g.Wait(); err != nil {
		return err
	}
	i.logger.DebugContext(ctx, "Images optimized", logfields.Task(NameImages), logfields.Count(len(files)))
	return nil
}

func (i *Images) one(ctx context.Context, rel string) error {
	src, err := os.ReadFile(i.reg.Abs(rel))
	if err != nil {
		return ferrors.FileSystemError("read image").WithCause(err).
			WithContext("path", rel).Build()
	}
	dst, err := rebase(rel, i.reg.Folders.Images.Dev, i.reg.Folders.Images.Dist)
	if err != nil {
		return ferrors.InternalError("map image output").WithCause(err).Build()
	}

	key := imagecache.Key(rel, src, i.salt)
	out, hit, err := i.cache.Get(ctx, key)
	if err != nil {
		i.logger.WarnContext(ctx, "Image cache lookup failed",
			logfields.Task(NameImages), logfields.Path(rel), logfields.Error(err))
	}
	i.recorder.IncImageCacheLookup(hit)

	if !hit {
		out, err = i.optimizer.Optimize(rel, src)
		if err != nil {
			return ferrors.WrapError(fmt.Errorf("%s: %w", rel, err), ferrors.CategoryTransform, "optimize image").
				WithContext("path", rel).Build()
		}
		if err := i.cache.Put(ctx, key, out); err != nil {
			i.logger.WarnContext(ctx, "Image cache store failed",
				logfields.Task(NameImages), logfields.Path(rel), logfields.Error(err))
		}
	}

	if err := writeFile(i.reg.Abs(dst), out); err != nil {
		return ferrors.FileSystemError("write image").WithCause(err).
			WithContext("path", dst).Build()
	}
	return nil
}
