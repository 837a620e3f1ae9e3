package placement

import "github.com/matzehuels/spotfinder/pkg/geom"

// SelectDiverse walks candidates in the given order (best first) and keeps
// each one whose planar distance to every kept center is at least
// minSeparation. It stops after topK picks or when candidates run out, so
// the result may be shorter than topK. Worst case O(topK * len(candidates)).
func SelectDiverse(candidates []Candidate, topK int, minSeparation float64) []geom.Vec3 {
	if topK <= 0 {
		return nil
	}
	picked := make([]geom.Vec3, 0, min(topK, len(candidates)))
	for _, c := range candidates {
		if farFromAll(c.Center, picked, minSeparation) {
			picked = append(picked, c.Center)
			if len(picked) >= topK {
				break
			}
		}
	}
	return picked
}

func farFromAll(p geom.Vec3, picked []geom.Vec3, minSeparation float64) bool {
	for _, q := range picked {
		if geom.PlanarDistance(p, q) < minSeparation {
			return false
		}
	}
	return true
}
