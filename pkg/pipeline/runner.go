package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/segmentio/encoding/json"

	"github.com/matzehuels/spotfinder/pkg/cache"
	"github.com/matzehuels/spotfinder/pkg/errors"
	"github.com/matzehuels/spotfinder/pkg/observability"
	"github.com/matzehuels/spotfinder/pkg/placement"
	"github.com/matzehuels/spotfinder/pkg/scene"
)

// Key types reported to cache hooks.
const (
	cacheKeyType = "placement"
	sceneKeyType = "scene"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is how long placement results stay cached.
	TTL time.Duration

	// HTTPClient downloads scenes given as http(s) URLs.
	HTTPClient *http.Client
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:      c,
		Keyer:      keyer,
		Logger:     logger,
		TTL:        cache.PlacementTTL,
		HTTPClient: newHTTPClient(),
	}
}

// LoadedScene is a validated scene plus its content hash.
type LoadedScene struct {
	Scene *scene.Scene
	Hash  string
}

// Execute runs the complete load → place pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	// Stage 1: Load
	loadStart := time.Now()
	loaded, err := r.LoadScene(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result := &Result{
		Scene:     loaded.Scene,
		SceneHash: loaded.Hash,
	}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.ObjectCount = len(loaded.Scene.Objects)
	result.Stats.FurnitureCount = len(opts.Thresholds.Furniture(loaded.Scene))

	// Stage 2: Place
	placeStart := time.Now()
	res, hit, err := r.PlaceWithCacheInfo(ctx, loaded, opts)
	if err != nil {
		return nil, fmt.Errorf("place: %w", err)
	}
	result.Placement = res
	result.Stats.PlaceTime = time.Since(placeStart)
	result.CacheInfo.PlaceHit = hit

	return result, nil
}

// LoadScene reads, validates and hashes the scene named by opts.
func (r *Runner) LoadScene(ctx context.Context, opts Options) (*LoadedScene, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}

	source := opts.ScenePath
	switch {
	case opts.SceneHash != "":
		source = "stored"
	case source == "":
		source = "inline"
	}
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)
	start := time.Now()

	loaded, err := r.loadScene(ctx, opts)

	count := 0
	if loaded != nil {
		count = len(loaded.Scene.Objects)
	}
	hooks.OnLoadComplete(ctx, source, count, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	s := loaded.Scene
	r.Logger.Info("loaded scene",
		"source", source,
		"objects", len(s.Objects),
		"min", s.Min,
		"max", s.Max,
		"floor_z", s.FloorZ,
		"duration", time.Since(start).Round(time.Microsecond))
	return loaded, nil
}

func (r *Runner) loadScene(ctx context.Context, opts Options) (*LoadedScene, error) {
	var doc scene.Document
	switch {
	case opts.Scene != nil:
		doc = *opts.Scene
	case opts.SceneHash != "":
		d, err := r.storedScene(ctx, opts.SceneHash)
		if err != nil {
			return nil, err
		}
		doc = d
	case isRemote(opts.ScenePath):
		d, err := r.fetchDocument(ctx, opts.ScenePath)
		if err != nil {
			return nil, err
		}
		doc = d
	default:
		d, err := scene.ReadDocumentFile(opts.ScenePath)
		if err != nil {
			return nil, err
		}
		doc = d
	}

	s, err := scene.Load(doc)
	if err != nil {
		return nil, err
	}
	hash, err := HashDocument(doc)
	if err != nil {
		return nil, err
	}
	return &LoadedScene{Scene: s, Hash: hash}, nil
}

// StoreScene validates doc and keeps it in the cache under its content
// hash, so later runs can name it by Options.SceneHash.
func (r *Runner) StoreScene(ctx context.Context, doc scene.Document) (*LoadedScene, error) {
	s, err := scene.Load(doc)
	if err != nil {
		return nil, err
	}
	hash, err := HashDocument(doc)
	if err != nil {
		return nil, err
	}
	data, err := scene.MarshalDocument(doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode scene")
	}
	if err := r.Cache.Set(ctx, r.Keyer.SceneKey(hash), data, cache.SceneTTL); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "store scene")
	}
	observability.Cache().OnCacheSet(ctx, sceneKeyType, len(data))
	r.Logger.Info("stored scene", "hash", hash, "objects", len(s.Objects))
	return &LoadedScene{Scene: s, Hash: hash}, nil
}

func (r *Runner) storedScene(ctx context.Context, hash string) (scene.Document, error) {
	hooks := observability.Cache()
	data, hit, err := r.Cache.Get(ctx, r.Keyer.SceneKey(hash))
	if err != nil {
		return scene.Document{}, errors.Wrap(errors.ErrCodeInternal, err, "look up scene %s", hash)
	}
	if !hit {
		hooks.OnCacheMiss(ctx, sceneKeyType)
		return scene.Document{}, errors.New(errors.ErrCodeNotFound, "scene %s not found (expired or never stored)", hash)
	}
	hooks.OnCacheHit(ctx, sceneKeyType)
	return scene.ReadDocument(bytes.NewReader(data))
}

// PlaceWithCacheInfo runs one placement search against a loaded scene with
// caching and reports whether the result came from cache. Refresh skips the
// lookup but still stores the fresh result.
func (r *Runner) PlaceWithCacheInfo(ctx context.Context, loaded *LoadedScene, opts Options) (placement.Result, bool, error) {
	if err := opts.ValidateForPlace(); err != nil {
		return placement.Result{}, false, err
	}

	cacheKey := r.Keyer.PlacementKey(loaded.Hash, opts.PlacementKeyOpts())
	cacheHooks := observability.Cache()

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached placement.Result
			if err := json.Unmarshal(data, &cached); err == nil {
				cacheHooks.OnCacheHit(ctx, cacheKeyType)
				r.Logger.Debug("placement cache hit", "name", opts.Name, "key", cacheKey)
				return cached, true, nil
			}
			// Undecodable entry: fall through and overwrite it.
		} else if err != nil {
			r.Logger.Warn("cache lookup failed", "err", err)
		}
		cacheHooks.OnCacheMiss(ctx, cacheKeyType)
	}

	res, err := r.search(ctx, loaded.Scene, opts)
	if err != nil {
		return placement.Result{}, false, err
	}

	if data, err := json.Marshal(res); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, r.TTL); err != nil {
			r.Logger.Warn("cache store failed", "err", err)
		} else {
			cacheHooks.OnCacheSet(ctx, cacheKeyType, len(data))
		}
	}
	return res, false, nil
}

// Place is a convenience wrapper that calls PlaceWithCacheInfo and discards the cache hit info.
func (r *Runner) Place(ctx context.Context, loaded *LoadedScene, opts Options) (placement.Result, error) {
	res, _, err := r.PlaceWithCacheInfo(ctx, loaded, opts)
	return res, err
}

func (r *Runner) search(ctx context.Context, s *scene.Scene, opts Options) (placement.Result, error) {
	searcher := placement.NewSearcher(s, opts.Thresholds)
	region := searcher.SearchRegion(opts.Footprint, opts.Config)

	points := estimateGridPoints(region, opts.Config.GridStep)
	if opts.MaxGridPoints > 0 && points > opts.MaxGridPoints {
		return placement.Result{}, errors.New(errors.ErrCodeInvalidConfig,
			"grid_step %g gives about %d grid points, limit is %d", opts.Config.GridStep, points, opts.MaxGridPoints)
	}

	hooks := observability.Pipeline()
	hooks.OnSearchStart(ctx, points)
	start := time.Now()

	res, err := searcher.Search(ctx, opts.Footprint, opts.Config)
	elapsed := time.Since(start)
	hooks.OnSearchComplete(ctx, res.GridPoints, res.TotalValid, elapsed, err)
	if err != nil {
		return placement.Result{}, err
	}

	if res.Infeasible {
		r.Logger.Warn("footprint does not fit the scene",
			"name", opts.Name,
			"footprint", opts.Footprint,
			"margin", opts.Config.Margin)
		return res, nil
	}
	r.Logger.Info("searched placements",
		"name", opts.Name,
		"obstacles", searcher.ObstacleCount(),
		"grid_points", res.GridPoints,
		"valid", res.TotalValid,
		"selected", len(res.Selected),
		"duration", elapsed.Round(time.Microsecond))
	return res, nil
}

// estimateGridPoints returns the grid size before the search runs,
// saturating at math.MaxInt.
func estimateGridPoints(r placement.Region, step float64) int {
	if r.Empty() || step <= 0 {
		return 0
	}
	nx := math.Floor((r.MaxX-r.MinX)/step) + 1
	ny := math.Floor((r.MaxY-r.MinY)/step) + 1
	if n := nx * ny; n < math.MaxInt {
		return int(n)
	}
	return math.MaxInt
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
