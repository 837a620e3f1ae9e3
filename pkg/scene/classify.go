package scene

import "github.com/matzehuels/spotfinder/pkg/errors"

// Category labels a scene object by its bounding-box shape.
type Category string

const (
	// CategoryFloor is a large, flat horizontal slab. Floors are walkable.
	CategoryFloor Category = "floor"
	// CategoryWall is a tall, thin, long partition. Walls bound the room
	// rather than obstruct it.
	CategoryWall Category = "wall"
	// CategoryFurniture is any ordinary obstacle.
	CategoryFurniture Category = "furniture"
)

// Thresholds are the shape limits used by Classify, in scene units.
type Thresholds struct {
	// FloorMinXY: both horizontal extents must exceed this for a floor.
	FloorMinXY float64 `toml:"floor_min_xy" json:"floor_min_xy"`
	// FloorMaxZ: vertical extent must stay below this for a floor.
	FloorMaxZ float64 `toml:"floor_max_z" json:"floor_max_z"`
	// WallMinZ: vertical extent must exceed this for a wall.
	WallMinZ float64 `toml:"wall_min_z" json:"wall_min_z"`
	// WallMaxThin: one horizontal extent must be below this for a wall.
	WallMaxThin float64 `toml:"wall_max_thin" json:"wall_max_thin"`
	// WallMinLong: one horizontal extent must exceed this for a wall.
	WallMinLong float64 `toml:"wall_min_long" json:"wall_min_long"`
}

// Default threshold values, tuned for room scans in meters.
const (
	DefaultFloorMinXY  = 3.0
	DefaultFloorMaxZ   = 0.25
	DefaultWallMinZ    = 2.0
	DefaultWallMaxThin = 0.35
	DefaultWallMinLong = 2.0
)

// DefaultThresholds returns the thresholds for typical room-scanned scenes.
func DefaultThresholds() Thresholds {
	return Thresholds{
		FloorMinXY:  DefaultFloorMinXY,
		FloorMaxZ:   DefaultFloorMaxZ,
		WallMinZ:    DefaultWallMinZ,
		WallMaxThin: DefaultWallMaxThin,
		WallMinLong: DefaultWallMinLong,
	}
}

// WithDefaults fills zero fields with the default values.
func (t Thresholds) WithDefaults() Thresholds {
	d := DefaultThresholds()
	if t.FloorMinXY == 0 {
		t.FloorMinXY = d.FloorMinXY
	}
	if t.FloorMaxZ == 0 {
		t.FloorMaxZ = d.FloorMaxZ
	}
	if t.WallMinZ == 0 {
		t.WallMinZ = d.WallMinZ
	}
	if t.WallMaxThin == 0 {
		t.WallMaxThin = d.WallMaxThin
	}
	if t.WallMinLong == 0 {
		t.WallMinLong = d.WallMinLong
	}
	return t
}

// Validate reports thresholds that are not finite and positive. A NaN limit
// fails every comparison in Classify and would label everything furniture.
func (t Thresholds) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"floor_min_xy", t.FloorMinXY},
		{"floor_max_z", t.FloorMaxZ},
		{"wall_min_z", t.WallMinZ},
		{"wall_max_thin", t.WallMaxThin},
		{"wall_min_long", t.WallMinLong},
	} {
		if err := errors.ValidatePositive(errors.ErrCodeInvalidConfig, "classifier "+f.name, f.v); err != nil {
			return err
		}
	}
	return nil
}

// Classify labels an object from its bbox_size.
func (t Thresholds) Classify(o Object) Category {
	sx, sy, sz := o.Size.X, o.Size.Y, o.Size.Z
	switch {
	case sx > t.FloorMinXY && sy > t.FloorMinXY && sz < t.FloorMaxZ:
		return CategoryFloor
	case sz > t.WallMinZ && (sx < t.WallMaxThin || sy < t.WallMaxThin) && (sx > t.WallMinLong || sy > t.WallMinLong):
		return CategoryWall
	}
	return CategoryFurniture
}

// Furniture returns the objects of s that Classify labels as furniture,
// in scene order.
func (t Thresholds) Furniture(s *Scene) []Object {
	var out []Object
	for _, o := range s.Objects {
		if t.Classify(o) == CategoryFurniture {
			out = append(out, o)
		}
	}
	return out
}

// Census counts objects per category.
func (t Thresholds) Census(s *Scene) map[Category]int {
	counts := map[Category]int{
		CategoryFloor:     0,
		CategoryWall:      0,
		CategoryFurniture: 0,
	}
	for _, o := range s.Objects {
		counts[t.Classify(o)]++
	}
	return counts
}
