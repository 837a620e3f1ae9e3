// Package scene loads the flat object list produced by the scene extraction
// step and turns it into an immutable [Scene] snapshot.
//
// # Input Contract
//
// The extraction step walks a glTF scene, composes node transforms, and
// writes one world-space axis-aligned bounding box per mesh:
//
//	{
//	  "objects": [
//	    {"name": "sofa", "bbox_min": [0,0,0], "bbox_max": [2,1,0.8], "bbox_size": [2,1,0.8]},
//	    ...
//	  ]
//	}
//
// bbox_min, bbox_max and bbox_size are required; bbox_center is optional and
// derived from min/max when absent. Units are meters with Z up.
//
// # Validation
//
// Every object is validated once by [Load]. A malformed or empty object list
// fails with an INVALID_SCENE error (see pkg/errors) so that the placement
// search never has to handle bad geometry.
//
// # Classification
//
// [Thresholds.Classify] labels each object as floor, wall or furniture from
// the shape of its bounding box. Only furniture takes part in collision and
// clearance checks. The thresholds are tuned for room scans in meters and
// are configurable; see [DefaultThresholds].
package scene
