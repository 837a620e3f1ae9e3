package placement

import (
	"context"
	"sort"

	"github.com/matzehuels/spotfinder/pkg/errors"
	"github.com/matzehuels/spotfinder/pkg/geom"
)

// Candidate is a feasible grid point with its score and scoring signals.
type Candidate struct {
	Center    geom.Vec3 `json:"center"`
	Score     float64   `json:"score"`
	NearWall  float64   `json:"near_wall"`
	Clearance float64   `json:"clearance"`
}

// Region is the half-open XY search range [MinX, MaxX) x [MinY, MaxY) at
// the fixed height Z.
type Region struct {
	MinX float64 `json:"min_x"`
	MaxX float64 `json:"max_x"`
	MinY float64 `json:"min_y"`
	MaxY float64 `json:"max_y"`
	Z    float64 `json:"z"`
}

// Empty reports whether the range holds no grid point.
func (r Region) Empty() bool {
	return r.MaxX <= r.MinX || r.MaxY <= r.MinY
}

// Result is the outcome of one placement search.
type Result struct {
	// Selected holds up to TopK diverse centers, best first.
	Selected []geom.Vec3 `json:"selected"`

	// TotalValid counts every non-colliding grid point.
	TotalValid int `json:"total_valid"`

	// Debug previews the best raw candidates before diversity selection.
	Debug []Candidate `json:"debug"`

	// GridPoints counts every grid point evaluated.
	GridPoints int `json:"grid_points"`

	Region     Region `json:"region"`
	Infeasible bool   `json:"infeasible"`
}

// Err returns an INFEASIBLE_REGION error when the footprint did not fit
// the scene, and nil otherwise.
func (r Result) Err() error {
	if r.Infeasible {
		return errors.New(errors.ErrCodeInfeasibleRegion,
			"footprint does not fit the scene with the requested margin")
	}
	return nil
}

// SearchRegion computes the grid range for a footprint. The object center
// stays Margin plus half the footprint away from every scene side, and its
// base rests LiftEpsilon above the floor.
func (s *Searcher) SearchRegion(fp Footprint, cfg Config) Region {
	sc := s.scene
	return Region{
		MinX: sc.Min.X + cfg.Margin + fp.L/2,
		MaxX: sc.Max.X - cfg.Margin - fp.L/2,
		MinY: sc.Min.Y + cfg.Margin + fp.W/2,
		MaxY: sc.Max.Y - cfg.Margin - fp.W/2,
		Z:    sc.FloorZ + fp.H/2 + cfg.LiftEpsilon,
	}
}

// Search runs the grid search for one footprint. It returns an error only
// for invalid input or a cancelled context; an infeasible region is
// reported through Result.Infeasible.
func (s *Searcher) Search(ctx context.Context, fp Footprint, cfg Config) (Result, error) {
	if err := fp.Validate(); err != nil {
		return Result{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	region := s.SearchRegion(fp, cfg)
	result := Result{
		Selected: []geom.Vec3{},
		Debug:    []Candidate{},
		Region:   region,
	}
	if region.Empty() {
		result.Infeasible = true
		return result, nil
	}

	bounds := s.scene.Bounds()
	var valid []Candidate
	for i := 0; ; i++ {
		x := region.MinX + float64(i)*cfg.GridStep
		if x >= region.MaxX {
			break
		}
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		for j := 0; ; j++ {
			y := region.MinY + float64(j)*cfg.GridStep
			if y >= region.MaxY {
				break
			}
			result.GridPoints++

			center := geom.V(x, y, region.Z)
			if s.Collides(center, fp, cfg.ClearanceXY) {
				continue
			}
			nearWall := bounds.DistanceToEdgeXY(center)
			clearance := s.DistanceToNearestObject(center)
			valid = append(valid, Candidate{
				Center:    center,
				Score:     cfg.WallWeight*nearWall - cfg.ClearanceWeight*clearance,
				NearWall:  nearWall,
				Clearance: clearance,
			})
		}
	}

	// Stable: equal scores keep X-major, Y-minor enumeration order.
	sort.SliceStable(valid, func(a, b int) bool {
		return valid[a].Score < valid[b].Score
	})

	result.TotalValid = len(valid)
	result.Debug = append(result.Debug, valid[:min(cfg.DebugLimit, len(valid))]...)
	result.Selected = append(result.Selected, SelectDiverse(valid, cfg.TopK, cfg.MinSeparation)...)
	return result, nil
}
