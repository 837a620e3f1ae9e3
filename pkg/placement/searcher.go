package placement

import (
	"github.com/matzehuels/spotfinder/pkg/geom"
	"github.com/matzehuels/spotfinder/pkg/scene"
)

// obstacle is a furniture object reduced to what the checks need.
type obstacle struct {
	box    geom.AABB
	center geom.Vec3
}

// Searcher answers collision, proximity and search queries against one
// scene snapshot. Build it with NewSearcher.
type Searcher struct {
	scene     *scene.Scene
	obstacles []obstacle
}

// NewSearcher classifies the scene objects with th and keeps the furniture
// as obstacles. Floors and walls are ignored from here on.
func NewSearcher(s *scene.Scene, th scene.Thresholds) *Searcher {
	furniture := th.Furniture(s)
	obs := make([]obstacle, len(furniture))
	for i, o := range furniture {
		obs[i] = obstacle{box: o.Box, center: o.Center()}
	}
	return &Searcher{scene: s, obstacles: obs}
}

// Scene returns the snapshot the searcher was built on.
func (s *Searcher) Scene() *scene.Scene {
	return s.scene
}

// ObstacleCount returns the number of furniture objects considered.
func (s *Searcher) ObstacleCount() int {
	return len(s.obstacles)
}

// Collides reports whether an object of the given footprint centered at
// center would overlap any furniture box once its X and Y extents are
// inflated by clearanceXY.
func (s *Searcher) Collides(center geom.Vec3, fp Footprint, clearanceXY float64) bool {
	box := geom.Box(center, fp.Size()).InflateXY(clearanceXY)
	for _, o := range s.obstacles {
		if box.Overlaps(o.box) {
			return true
		}
	}
	return false
}

// DistanceToNearestObject returns the planar distance from p to the closest
// furniture center, or NoObstacleDistance when there is no furniture.
func (s *Searcher) DistanceToNearestObject(p geom.Vec3) float64 {
	d := NoObstacleDistance
	for _, o := range s.obstacles {
		d = min(d, geom.PlanarDistance(p, o.center))
	}
	return d
}
