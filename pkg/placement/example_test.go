package placement_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/spotfinder/pkg/placement"
	"github.com/matzehuels/spotfinder/pkg/scene"
)

func obj(name string, min, max [3]float64) scene.RawObject {
	size := [3]float64{max[0] - min[0], max[1] - min[1], max[2] - min[2]}
	return scene.RawObject{Name: name, BBoxMin: &min, BBoxMax: &max, BBoxSize: &size}
}

func Example() {
	doc := scene.Document{Objects: []scene.RawObject{
		obj("floor", [3]float64{0, 0, 0}, [3]float64{5, 5, 0.1}),
		obj("wall", [3]float64{0, 0, 0}, [3]float64{0.1, 5, 2.5}),
		obj("wall", [3]float64{4.9, 0, 0}, [3]float64{5, 5, 2.5}),
		obj("table", [3]float64{2, 2, 0}, [3]float64{3, 3, 1}),
	}}
	s, err := scene.Load(doc)
	if err != nil {
		panic(err)
	}

	searcher := placement.NewSearcher(s, scene.DefaultThresholds())
	fp := placement.Footprint{L: 1.0, W: 0.5, H: 2.0}
	res, err := searcher.Search(context.Background(), fp, placement.DefaultConfig())
	if err != nil {
		panic(err)
	}

	fmt.Println("grid points:", res.GridPoints)
	fmt.Println("valid:", res.TotalValid)
	for i, c := range res.Selected[:4] {
		fmt.Printf("%d: (%.2f, %.2f, %.2f)\n", i+1, c.X, c.Y, c.Z)
	}
	// Output:
	// grid points: 224
	// valid: 144
	// 1: (0.80, 0.55, 1.02)
	// 2: (4.05, 0.55, 1.02)
	// 3: (0.80, 4.30, 1.02)
	// 4: (4.05, 4.30, 1.02)
}
