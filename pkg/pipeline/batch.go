package pipeline

import (
	"context"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/spotfinder/pkg/errors"
	"github.com/matzehuels/spotfinder/pkg/placement"
)

// DefaultWorkers bounds concurrent searches in PlaceBatch.
const DefaultWorkers = 4

// BatchFile is the TOML form of a batch request:
//
//	[[object]]
//	name = "cabinet"
//	size = [1.0, 0.5, 2.0]
//	top_k = 5
type BatchFile struct {
	Objects []BatchRequest `toml:"object"`
}

// BatchRequest asks for placements of one object. Nil overrides keep the
// batch-wide config.
type BatchRequest struct {
	Name string     `toml:"name" json:"name"`
	Size [3]float64 `toml:"size" json:"size"`

	TopK          *int     `toml:"top_k" json:"top_k,omitempty"`
	ClearanceXY   *float64 `toml:"clearance_xy" json:"clearance_xy,omitempty"`
	MinSeparation *float64 `toml:"min_separation" json:"min_separation,omitempty"`
	Margin        *float64 `toml:"margin" json:"margin,omitempty"`
}

// Footprint returns the request size as a footprint.
func (b BatchRequest) Footprint() placement.Footprint {
	return placement.FootprintFromArray(b.Size)
}

// apply returns base with the request overrides applied.
func (b BatchRequest) apply(base placement.Config) placement.Config {
	if b.TopK != nil {
		base.TopK = *b.TopK
	}
	if b.ClearanceXY != nil {
		base.ClearanceXY = *b.ClearanceXY
	}
	if b.MinSeparation != nil {
		base.MinSeparation = *b.MinSeparation
	}
	if b.Margin != nil {
		base.Margin = *b.Margin
	}
	return base
}

// ReadBatchFile reads a TOML batch request file.
func ReadBatchFile(path string) ([]BatchRequest, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "batch file %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open batch file %s", path)
	}
	defer f.Close()
	return DecodeBatch(f)
}

// DecodeBatch decodes TOML batch requests from r.
func DecodeBatch(r io.Reader) ([]BatchRequest, error) {
	var bf BatchFile
	md, err := toml.NewDecoder(r).Decode(&bf)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse batch file")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown key %q in batch file", undecoded[0].String())
	}
	if len(bf.Objects) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "batch file has no [[object]] entries")
	}
	return bf.Objects, nil
}

// BatchItem is the outcome of one batch request. Err is set when the
// request itself was invalid; other items are unaffected.
type BatchItem struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Footprint placement.Footprint `json:"footprint"`
	Result    placement.Result    `json:"result"`
	CacheHit  bool                `json:"cache_hit"`
	Err       error               `json:"-"`
}

// PlaceBatch runs every request against the same loaded scene with at most
// workers concurrent searches. Items come back in request order. A
// cancelled context aborts the batch; invalid requests only fail their item.
func (r *Runner) PlaceBatch(ctx context.Context, loaded *LoadedScene, base Options, reqs []BatchRequest, workers int) ([]BatchItem, error) {
	base.SetPlaceDefaults()
	if workers <= 0 {
		workers = DefaultWorkers
	}

	items := make([]BatchItem, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, req := range reqs {
		items[i] = BatchItem{
			ID:        uuid.NewString(),
			Name:      req.Name,
			Footprint: req.Footprint(),
		}
		g.Go(func() error {
			opts := base
			opts.Name = req.Name
			opts.Footprint = req.Footprint()
			opts.Config = req.apply(base.Config)

			res, hit, err := r.PlaceWithCacheInfo(gctx, loaded, opts)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				r.Logger.Warn("batch item failed", "name", req.Name, "err", err)
				items[i].Err = err
				return nil
			}
			items[i].Result = res
			items[i].CacheHit = hit
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}
