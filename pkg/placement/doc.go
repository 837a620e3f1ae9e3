// Package placement finds collision-free spots for a new axis-aligned
// object inside a loaded scene.
//
// # Overview
//
// A [Searcher] wraps an immutable [scene.Scene] together with the furniture
// objects picked out by the classifier. For each request it:
//
//  1. Lays a regular XY grid over the scene bounds, inset by the margin and
//     half the footprint, with the Z center resting the object on the floor.
//  2. Drops every grid point whose footprint box, inflated in X and Y by the
//     clearance, overlaps a furniture box ([Searcher.Collides]).
//  3. Scores survivors: WallWeight*nearWall - ClearanceWeight*clearance,
//     lower is better. nearWall is the distance to the closest scene side,
//     clearance is the distance to the closest furniture center
//     ([Searcher.DistanceToNearestObject]).
//  4. Sorts by score (stable, so ties keep X-major grid order).
//  5. Greedily keeps the best candidates that are at least MinSeparation
//     apart ([SelectDiverse]).
//
// Floors and walls never block a candidate. Vertical clearance is not
// checked.
//
// # Infeasible Requests
//
// When the footprint plus margins does not fit inside the scene the grid is
// empty. This is not an error: the [Result] has Infeasible set and zero
// candidates. [Result.Err] turns it into an INFEASIBLE_REGION error for
// callers that want one.
//
// # Concurrency
//
// A Searcher holds no mutable state. Any number of goroutines may call
// [Searcher.Search] on the same Searcher at once.
package placement
