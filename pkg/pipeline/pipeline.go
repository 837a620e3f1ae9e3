// Package pipeline provides the placement pipeline for spotfinder.
//
// This package implements the load → place pipeline shared by the CLI and
// the HTTP server. Centralizing it keeps validation, caching, logging and
// instrumentation identical across entry points.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Load: decode and validate a scene description, compute its content hash
//  2. Place: run the candidate search for one footprint, with result caching
//
// A loaded scene is immutable, so any number of placements may run against
// it concurrently; [Runner.PlaceBatch] does exactly that.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    ScenePath: "scene_objects_world.json",
//	    Footprint: placement.Footprint{L: 1.0, W: 0.5, H: 2.0},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, c := range result.Placement.Selected {
//	    fmt.Println(c)
//	}
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spotfinder/pkg/cache"
	"github.com/matzehuels/spotfinder/pkg/errors"
	"github.com/matzehuels/spotfinder/pkg/placement"
	"github.com/matzehuels/spotfinder/pkg/scene"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options: exactly one of ScenePath, Scene or SceneHash.
	// SceneHash names a document previously stored with StoreScene.
	ScenePath string          `json:"scene_path,omitempty"`
	Scene     *scene.Document `json:"scene,omitempty"`
	SceneHash string          `json:"scene_hash,omitempty"`

	// Place options
	Name       string              `json:"name,omitempty"`
	Footprint  placement.Footprint `json:"footprint"`
	Config     placement.Config    `json:"config"`
	Thresholds scene.Thresholds    `json:"thresholds"`
	Refresh    bool                `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// MaxGridPoints rejects searches whose grid would hold more points.
	// Zero means no limit.
	MaxGridPoints int `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Scene is the validated scene.
	Scene *scene.Scene

	// SceneHash is the content hash of the scene document.
	SceneHash string

	// Placement is the search outcome.
	Placement placement.Result

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ObjectCount    int           `json:"object_count"`
	FurnitureCount int           `json:"furniture_count"`
	LoadTime       time.Duration `json:"load_time"`
	PlaceTime      time.Duration `json:"place_time"`
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	PlaceHit bool `json:"place_hit"` // Whether the placement came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForPlace(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks that a scene source is set.
func (o *Options) ValidateForLoad() error {
	sources := 0
	for _, set := range []bool{o.ScenePath != "", o.Scene != nil, o.SceneHash != ""} {
		if set {
			sources++
		}
	}
	switch sources {
	case 0:
		return errors.New(errors.ErrCodeInvalidInput, "scene path, scene document or scene hash is required")
	case 1:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "scene path, scene document and scene hash are mutually exclusive")
	}
	o.setLoggerDefault()
	return nil
}

// SetPlaceDefaults fills an all-zero Config with DefaultConfig and zero
// threshold fields with their defaults. A partially set Config is kept as
// is, since zero is meaningful for several of its fields.
func (o *Options) SetPlaceDefaults() {
	if o.Config == (placement.Config{}) {
		o.Config = placement.DefaultConfig()
	}
	o.Thresholds = o.Thresholds.WithDefaults()
	o.setLoggerDefault()
}

// ValidateForPlace applies place defaults and validates footprint, config
// and thresholds.
func (o *Options) ValidateForPlace() error {
	o.SetPlaceDefaults()
	if err := o.Footprint.Validate(); err != nil {
		return err
	}
	if err := o.Config.Validate(); err != nil {
		return err
	}
	return o.Thresholds.Validate()
}

// PlacementKeyOpts returns cache key options for a placement.
func (o *Options) PlacementKeyOpts() cache.PlacementKeyOpts {
	return cache.PlacementKeyOpts{
		Footprint:  o.Footprint,
		Config:     o.Config,
		Thresholds: o.Thresholds,
	}
}

func (o *Options) setLoggerDefault() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// HashDocument returns the content hash of doc. The Source field does not
// contribute, so the same scene read from two paths hashes equal.
func HashDocument(doc scene.Document) (string, error) {
	doc.Source = ""
	data, err := scene.MarshalDocument(doc)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "hash scene")
	}
	return cache.Hash(data), nil
}
