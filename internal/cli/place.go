package cli

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spotfinder/pkg/geom"
	"github.com/matzehuels/spotfinder/pkg/pipeline"
	"github.com/matzehuels/spotfinder/pkg/placement"
)

// placeOpts holds the flags of the place command.
type placeOpts struct {
	size   []float64
	name   string
	output string // JSON report path, "-" for stdout
	pick   bool   // choose one candidate interactively
	search searchFlags
}

// placeReport is the JSON form of a place run.
type placeReport struct {
	Name      string              `json:"name,omitempty"`
	Scene     string              `json:"scene"`
	SceneHash string              `json:"scene_hash"`
	Footprint placement.Footprint `json:"footprint"`
	Min       geom.Vec3           `json:"min"`
	Max       geom.Vec3           `json:"max"`
	FloorZ    float64             `json:"floor_z"`
	Result    placement.Result    `json:"result"`
	Stats     pipeline.Stats      `json:"stats"`
	Cached    bool                `json:"cached"`
	Picked    *geom.Vec3          `json:"picked,omitempty"`
}

// placeCommand creates the place command.
func (c *CLI) placeCommand() *cobra.Command {
	var opts placeOpts

	cmd := &cobra.Command{
		Use:   "place [scene.json]",
		Short: "Suggest placements for one object in a scene",
		Long: `Suggest placements for one object in a scene.

The scene is a JSON document listing axis-aligned bounding boxes, read from
a file or an http(s) URL. Floors and walls are recognized by shape and
ignored; every other object is an obstacle.
Candidates are scored by how close they are to the scene walls and how far
they keep from other furniture, then spread out so no two suggestions are
closer than --min-separation.

Results are cached by scene content and options.

Example:
  spotfinder place scene_objects_world.json --size 1.0,0.5,2.0 -k 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlace(cmd, args[0], &opts)
		},
	}

	cmd.Flags().Float64SliceVarP(&opts.size, "size", "s", nil, "object size L,W,H (required)")
	cmd.Flags().StringVar(&opts.name, "name", "", "object name shown in reports")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write a JSON report to this file (- for stdout)")
	cmd.Flags().BoolVar(&opts.pick, "pick", false, "choose a candidate interactively")
	_ = cmd.MarkFlagRequired("size")
	opts.search.register(cmd)

	return cmd
}

// runPlace loads the scene, runs the search and prints the outcome.
func (c *CLI) runPlace(cmd *cobra.Command, input string, opts *placeOpts) error {
	ctx := cmd.Context()
	fp, err := parseSize(opts.size)
	if err != nil {
		return err
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg, opts.search.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	res, err := runner.Execute(ctx, pipeline.Options{
		ScenePath:  input,
		Name:       opts.name,
		Footprint:  fp,
		Config:     opts.search.apply(cmd, cfg.Placement()),
		Thresholds: cfg.Thresholds(),
		Refresh:    opts.search.refresh,
		Logger:     c.Logger,
	})
	if err != nil {
		return err
	}
	prog.done("placement finished", "selected", len(res.Placement.Selected))

	report := placeReport{
		Name:      opts.name,
		Scene:     input,
		SceneHash: res.SceneHash,
		Footprint: fp,
		Min:       res.Scene.Min,
		Max:       res.Scene.Max,
		FloorZ:    res.Scene.FloorZ,
		Result:    res.Placement,
		Stats:     res.Stats,
		Cached:    res.CacheInfo.PlaceHit,
	}

	if opts.output == "-" {
		return writeJSON(cmd.OutOrStdout(), report)
	}

	printPlaceResult(res)

	if opts.pick && len(res.Placement.Selected) > 0 {
		picked, err := pickCandidate(res.Placement.Selected)
		if err != nil {
			return err
		}
		if picked == nil {
			printDetail("No selection made")
		} else {
			report.Picked = picked
			printSuccess("Picked %s", formatVec(*picked))
		}
	}

	if opts.output != "" {
		if err := writeJSONFile(opts.output, report); err != nil {
			return err
		}
		printFile(opts.output)
	}
	return nil
}

// printPlaceResult prints the scene summary, the raw preview and the picks.
func printPlaceResult(res *pipeline.Result) {
	printNewline()
	printSceneSummary(res.Scene, res.Stats.FurnitureCount)
	printStats(res.Placement.GridPoints, res.Placement.TotalValid, res.CacheInfo.PlaceHit)
	printNewline()

	p := res.Placement
	if p.Infeasible {
		printWarning("Object does not fit: the margin leaves no room for it")
		printInfo("0 candidates")
		return
	}
	if len(p.Debug) > 0 {
		fmt.Println(StyleTitle.Render("Best raw candidates"))
		fmt.Println(candidateTable(p.Debug))
		printNewline()
	}
	if len(p.Selected) == 0 {
		printWarning("No collision-free position found")
		printInfo("0 candidates")
		printNextStep("Try a smaller clearance", "--clearance 0")
		return
	}
	printSuccess("%d candidates", len(p.Selected))
	printPicks(p.Selected)
}

// pickCandidate runs the interactive picker and returns nil when the user
// quit without choosing.
func pickCandidate(cands []geom.Vec3) (*geom.Vec3, error) {
	printNewline()
	p := tea.NewProgram(NewCandidateListModel(cands))
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m, ok := final.(CandidateListModel)
	if !ok {
		return nil, nil
	}
	return m.Selected, nil
}

// =============================================================================
// JSON Output
// =============================================================================

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeJSONFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := writeJSON(f, v); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

