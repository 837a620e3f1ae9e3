// Package pkg provides the core libraries for spotfinder placement search.
//
// # Overview
//
// Spotfinder takes the axis-aligned bounding boxes of a scanned indoor scene
// and suggests where a new object of a given size can stand. The pkg
// directory is organized into these areas:
//
//  1. [geom] - Vectors and boxes with inclusive overlap tests
//  2. [scene] - Scene documents, validation, floor/wall/furniture classes
//  3. [placement] - Collision checks, grid search, scoring, diverse picks
//  4. [pipeline] - Orchestration (load → place) with caching and batches
//  5. [cache], [config], [observability], [errors], [buildinfo] - Infrastructure
//
// # Architecture
//
// The typical data flow:
//
//	scene_objects_world.json (file, URL or stored hash)
//	         ↓
//	    [scene] package (validate, bounds, floor height)
//	         ↓
//	    [placement] package (grid search, score, diversity)
//	         ↓
//	    ranked candidate centers (CLI table, JSON, HTTP response)
//
// # Quick Start
//
//	s, err := scene.ReadFile("scene_objects_world.json")
//	if err != nil {
//	    return err
//	}
//	searcher := placement.NewSearcher(s, scene.DefaultThresholds())
//	res, err := searcher.Search(ctx, placement.Footprint{L: 1, W: 0.5, H: 2}, placement.DefaultConfig())
//
// [geom]: github.com/matzehuels/spotfinder/pkg/geom
// [scene]: github.com/matzehuels/spotfinder/pkg/scene
// [placement]: github.com/matzehuels/spotfinder/pkg/placement
// [pipeline]: github.com/matzehuels/spotfinder/pkg/pipeline
// [cache]: github.com/matzehuels/spotfinder/pkg/cache
// [config]: github.com/matzehuels/spotfinder/pkg/config
// [observability]: github.com/matzehuels/spotfinder/pkg/observability
// [errors]: github.com/matzehuels/spotfinder/pkg/errors
// [buildinfo]: github.com/matzehuels/spotfinder/pkg/buildinfo
package pkg
