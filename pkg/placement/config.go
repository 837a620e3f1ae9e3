package placement

import (
	"math"

	"github.com/matzehuels/spotfinder/pkg/errors"
	"github.com/matzehuels/spotfinder/pkg/geom"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultGridStep is the spacing of the search lattice.
	DefaultGridStep = 0.25

	// DefaultClearanceXY is the horizontal buffer added around the footprint
	// during collision checks.
	DefaultClearanceXY = 0.25

	// DefaultMargin is the inset from the scene extents that bounds the
	// searchable region.
	DefaultMargin = 0.3

	// DefaultTopK is the number of diverse candidates returned.
	DefaultTopK = 10

	// DefaultMinSeparation is the minimum planar spacing between returned
	// candidates.
	DefaultMinSeparation = 0.8

	// DefaultWallWeight multiplies the distance to the nearest scene side.
	DefaultWallWeight = 0.6

	// DefaultClearanceWeight multiplies the distance to the nearest
	// furniture center, subtracted from the score.
	DefaultClearanceWeight = 0.4

	// DefaultLiftEpsilon raises the object base this far above the floor.
	DefaultLiftEpsilon = 0.02

	// DefaultDebugLimit is the size of the raw best-candidate preview.
	DefaultDebugLimit = 10
)

// NoObstacleDistance is returned by DistanceToNearestObject when the scene
// has no furniture.
const NoObstacleDistance = 1e9

// =============================================================================
// Footprint
// =============================================================================

// Footprint is the extent of the object to place along X (L), Y (W) and Z (H).
type Footprint struct {
	L float64 `json:"l" toml:"l"`
	W float64 `json:"w" toml:"w"`
	H float64 `json:"h" toml:"h"`
}

// FootprintFromArray converts the [L, W, H] wire form.
func FootprintFromArray(a [3]float64) Footprint {
	return Footprint{L: a[0], W: a[1], H: a[2]}
}

// Size returns the footprint as a Vec3.
func (f Footprint) Size() geom.Vec3 {
	return geom.V(f.L, f.W, f.H)
}

// Validate checks that all extents are positive.
func (f Footprint) Validate() error {
	return errors.ValidateFootprint(f.L, f.W, f.H)
}

// =============================================================================
// Config
// =============================================================================

// Config holds the search and scoring options of one placement request.
// Start from DefaultConfig and override fields; zero is a meaningful value
// for several options (clearance, margin, separation).
type Config struct {
	GridStep      float64 `json:"grid_step" toml:"grid_step"`
	ClearanceXY   float64 `json:"clearance_xy" toml:"clearance_xy"`
	Margin        float64 `json:"margin" toml:"margin"`
	TopK          int     `json:"top_k" toml:"top_k"`
	MinSeparation float64 `json:"min_separation" toml:"min_separation"`

	WallWeight      float64 `json:"wall_weight" toml:"wall_weight"`
	ClearanceWeight float64 `json:"clearance_weight" toml:"clearance_weight"`
	LiftEpsilon     float64 `json:"lift_epsilon" toml:"lift_epsilon"`
	DebugLimit      int     `json:"debug_limit" toml:"debug_limit"`
}

// DefaultConfig returns the default search configuration.
func DefaultConfig() Config {
	return Config{
		GridStep:        DefaultGridStep,
		ClearanceXY:     DefaultClearanceXY,
		Margin:          DefaultMargin,
		TopK:            DefaultTopK,
		MinSeparation:   DefaultMinSeparation,
		WallWeight:      DefaultWallWeight,
		ClearanceWeight: DefaultClearanceWeight,
		LiftEpsilon:     DefaultLiftEpsilon,
		DebugLimit:      DefaultDebugLimit,
	}
}

// Validate checks every option and returns an INVALID_CONFIG error for the
// first bad one.
func (c Config) Validate() error {
	code := errors.ErrCodeInvalidConfig
	if err := errors.ValidatePositive(code, "grid_step", c.GridStep); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative(code, "clearance_xy", c.ClearanceXY); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative(code, "margin", c.Margin); err != nil {
		return err
	}
	if c.TopK <= 0 {
		return errors.New(code, "top_k must be positive, got %d", c.TopK)
	}
	if err := errors.ValidateNonNegative(code, "min_separation", c.MinSeparation); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative(code, "lift_epsilon", c.LiftEpsilon); err != nil {
		return err
	}
	for _, w := range []struct {
		name string
		v    float64
	}{{"wall_weight", c.WallWeight}, {"clearance_weight", c.ClearanceWeight}} {
		if math.IsNaN(w.v) || math.IsInf(w.v, 0) {
			return errors.New(code, "%s must be a finite number, got %v", w.name, w.v)
		}
	}
	if c.DebugLimit < 0 {
		return errors.New(code, "debug_limit cannot be negative, got %d", c.DebugLimit)
	}
	return nil
}
