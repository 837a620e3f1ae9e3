package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matzehuels/spotfinder/pkg/geom"
)

func at(x, y float64) Candidate {
	return Candidate{Center: geom.V(x, y, 0)}
}

func TestSelectDiverse(t *testing.T) {
	tests := []struct {
		name  string
		cands []Candidate
		topK  int
		sep   float64
		want  []geom.Vec3
	}{
		{
			name:  "keeps best first",
			cands: []Candidate{at(0, 0), at(5, 5)},
			topK:  5,
			sep:   1,
			want:  []geom.Vec3{geom.V(0, 0, 0), geom.V(5, 5, 0)},
		},
		{
			name:  "skips close candidates",
			cands: []Candidate{at(0, 0), at(0.5, 0), at(1, 0), at(1.5, 0)},
			topK:  5,
			sep:   0.8,
			want:  []geom.Vec3{geom.V(0, 0, 0), geom.V(1, 0, 0)},
		},
		{
			name:  "separation is inclusive",
			cands: []Candidate{at(0, 0), at(0, 1)},
			topK:  5,
			sep:   1,
			want:  []geom.Vec3{geom.V(0, 0, 0), geom.V(0, 1, 0)},
		},
		{
			name:  "stops at top k",
			cands: []Candidate{at(0, 0), at(2, 0), at(4, 0), at(6, 0)},
			topK:  2,
			sep:   1,
			want:  []geom.Vec3{geom.V(0, 0, 0), geom.V(2, 0, 0)},
		},
		{
			name:  "zero separation keeps duplicates",
			cands: []Candidate{at(1, 1), at(1, 1)},
			topK:  5,
			sep:   0,
			want:  []geom.Vec3{geom.V(1, 1, 0), geom.V(1, 1, 0)},
		},
		{
			name:  "empty input",
			cands: nil,
			topK:  3,
			sep:   1,
			want:  []geom.Vec3{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectDiverse(tt.cands, tt.topK, tt.sep))
		})
	}
}

func TestSelectDiverse_NonPositiveTopK(t *testing.T) {
	assert.Nil(t, SelectDiverse([]Candidate{at(0, 0)}, 0, 1))
	assert.Nil(t, SelectDiverse([]Candidate{at(0, 0)}, -1, 1))
}

func TestSelectDiverse_IgnoresZ(t *testing.T) {
	cands := []Candidate{
		{Center: geom.V(0, 0, 0)},
		{Center: geom.V(0, 0, 10)},
	}
	assert.Len(t, SelectDiverse(cands, 5, 0.5), 1)
}

func TestSelectDiverse_PairwiseSeparation(t *testing.T) {
	var cands []Candidate
	for x := 0.0; x < 4; x += 0.25 {
		for y := 0.0; y < 4; y += 0.25 {
			cands = append(cands, at(x, y))
		}
	}

	picked := SelectDiverse(cands, 20, 0.8)
	assert.NotEmpty(t, picked)
	assert.LessOrEqual(t, len(picked), 20)
	for i := range picked {
		for j := i + 1; j < len(picked); j++ {
			assert.GreaterOrEqual(t, geom.PlanarDistance(picked[i], picked[j]), 0.8,
				"picks %v and %v too close", picked[i], picked[j])
		}
	}
}
