package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/spotfinder/pkg/errors"
	"github.com/matzehuels/spotfinder/pkg/placement"
)

// searchFlags binds the placement options shared by place and batch.
// Only flags the user actually set override the config file.
type searchFlags struct {
	gridStep      float64
	clearanceXY   float64
	margin        float64
	topK          int
	minSeparation float64
	wallWeight    float64
	clearanceW    float64
	noCache       bool
	refresh       bool
}

func (f *searchFlags) register(cmd *cobra.Command) {
	d := placement.DefaultConfig()
	fs := cmd.Flags()
	fs.Float64Var(&f.gridStep, "grid-step", d.GridStep, "spacing of the search grid")
	fs.Float64Var(&f.clearanceXY, "clearance", d.ClearanceXY, "horizontal buffer kept around the object")
	fs.Float64Var(&f.margin, "margin", d.Margin, "inset from the scene extents")
	fs.IntVarP(&f.topK, "top-k", "k", d.TopK, "number of diverse candidates to return")
	fs.Float64Var(&f.minSeparation, "min-separation", d.MinSeparation, "minimum planar distance between candidates")
	fs.Float64Var(&f.wallWeight, "wall-weight", d.WallWeight, "score weight of the distance to the nearest wall")
	fs.Float64Var(&f.clearanceW, "clearance-weight", d.ClearanceWeight, "score weight of the distance to the nearest object")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable the result cache")
	fs.BoolVar(&f.refresh, "refresh", false, "recompute and overwrite cached results")
}

// apply overrides base with every flag set on cmd.
func (f *searchFlags) apply(cmd *cobra.Command, base placement.Config) placement.Config {
	fs := cmd.Flags()
	if fs.Changed("grid-step") {
		base.GridStep = f.gridStep
	}
	if fs.Changed("clearance") {
		base.ClearanceXY = f.clearanceXY
	}
	if fs.Changed("margin") {
		base.Margin = f.margin
	}
	if fs.Changed("top-k") {
		base.TopK = f.topK
	}
	if fs.Changed("min-separation") {
		base.MinSeparation = f.minSeparation
	}
	if fs.Changed("wall-weight") {
		base.WallWeight = f.wallWeight
	}
	if fs.Changed("clearance-weight") {
		base.ClearanceWeight = f.clearanceW
	}
	return base
}

// parseSize converts the --size flag value to a footprint.
func parseSize(size []float64) (placement.Footprint, error) {
	if len(size) != 3 {
		return placement.Footprint{}, errors.New(errors.ErrCodeInvalidFootprint,
			"--size takes three values L,W,H, got %d", len(size))
	}
	fp := placement.Footprint{L: size[0], W: size[1], H: size[2]}
	return fp, fp.Validate()
}
