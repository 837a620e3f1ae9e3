package scene

import (
	"strconv"

	"github.com/matzehuels/spotfinder/pkg/errors"
	"github.com/matzehuels/spotfinder/pkg/geom"
)

// Document is the wire form of a scene description.
type Document struct {
	Source  string      `json:"source,omitempty"`
	Objects []RawObject `json:"objects"`
}

// RawObject is one entry of the object list as written by the extraction
// step. Pointer fields distinguish a missing field from a zero vector.
type RawObject struct {
	Name       string      `json:"name,omitempty"`
	GeomName   string      `json:"geom_name,omitempty"`
	BBoxMin    *[3]float64 `json:"bbox_min"`
	BBoxMax    *[3]float64 `json:"bbox_max"`
	BBoxSize   *[3]float64 `json:"bbox_size"`
	BBoxCenter *[3]float64 `json:"bbox_center,omitempty"`
}

// Object is a validated scene object.
type Object struct {
	Name string
	Box  geom.AABB
	Size geom.Vec3

	center    geom.Vec3
	hasCenter bool
}

// Center returns the provided bbox_center, or the box midpoint when the
// input did not carry one.
func (o Object) Center() geom.Vec3 {
	if o.hasCenter {
		return o.center
	}
	return o.Box.Center()
}

// Scene is an immutable snapshot of all objects plus derived bounds.
// It is safe for concurrent use by any number of placement requests.
type Scene struct {
	Source  string
	Objects []Object

	// Min and Max are the componentwise extrema over all object boxes.
	Min geom.Vec3
	Max geom.Vec3

	// FloorZ is the lowest Z in the scene, used as the walking surface.
	FloorZ float64
}

// Bounds returns the scene bounding volume.
func (s *Scene) Bounds() geom.AABB {
	return geom.AABB{Min: s.Min, Max: s.Max}
}

// Load validates a document and computes the scene bounds and floor height.
// It fails with an INVALID_SCENE error when the object list is empty or any
// object is malformed.
func Load(doc Document) (*Scene, error) {
	if len(doc.Objects) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidScene, "scene has no objects")
	}

	s := &Scene{
		Source:  doc.Source,
		Objects: make([]Object, 0, len(doc.Objects)),
	}
	bounds := geom.Empty()
	for i, raw := range doc.Objects {
		obj, err := raw.validate(i)
		if err != nil {
			return nil, err
		}
		s.Objects = append(s.Objects, obj)
		bounds = bounds.Union(obj.Box)
	}

	s.Min, s.Max = bounds.Min, bounds.Max
	s.FloorZ = bounds.Min.Z
	return s, nil
}

// validate converts a RawObject into an Object or returns INVALID_SCENE.
func (r RawObject) validate(index int) (Object, error) {
	label := r.label(index)

	switch {
	case r.BBoxMin == nil:
		return Object{}, errors.New(errors.ErrCodeInvalidScene, "%s: missing bbox_min", label)
	case r.BBoxMax == nil:
		return Object{}, errors.New(errors.ErrCodeInvalidScene, "%s: missing bbox_max", label)
	case r.BBoxSize == nil:
		return Object{}, errors.New(errors.ErrCodeInvalidScene, "%s: missing bbox_size", label)
	}

	obj := Object{
		Name: r.Name,
		Box:  geom.AABB{Min: geom.FromArray(*r.BBoxMin), Max: geom.FromArray(*r.BBoxMax)},
		Size: geom.FromArray(*r.BBoxSize),
	}
	if obj.Name == "" {
		obj.Name = r.GeomName
	}
	if r.BBoxCenter != nil {
		obj.center = geom.FromArray(*r.BBoxCenter)
		obj.hasCenter = true
	}

	if !obj.Box.Min.IsFinite() || !obj.Box.Max.IsFinite() || !obj.Size.IsFinite() || !obj.center.IsFinite() {
		return Object{}, errors.New(errors.ErrCodeInvalidScene, "%s: bounding box has non-finite values", label)
	}
	if obj.Box.Min.X > obj.Box.Max.X || obj.Box.Min.Y > obj.Box.Max.Y || obj.Box.Min.Z > obj.Box.Max.Z {
		return Object{}, errors.New(errors.ErrCodeInvalidScene, "%s: bbox_min exceeds bbox_max", label)
	}
	if obj.Size.X < 0 || obj.Size.Y < 0 || obj.Size.Z < 0 {
		return Object{}, errors.New(errors.ErrCodeInvalidScene, "%s: bbox_size has negative extent", label)
	}
	// A wall scanned as a zero-thickness plane is still usable, a vertical
	// line or a point is not.
	if obj.Size.X <= 0 && obj.Size.Y <= 0 {
		return Object{}, errors.New(errors.ErrCodeInvalidScene, "%s: bounding box is degenerate in the horizontal plane", label)
	}
	return obj, nil
}

func (r RawObject) label(index int) string {
	switch {
	case r.Name != "":
		return "object " + strconv.Quote(r.Name)
	case r.GeomName != "":
		return "object " + strconv.Quote(r.GeomName)
	}
	return "object #" + strconv.Itoa(index)
}
