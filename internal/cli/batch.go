package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spotfinder/pkg/errors"
	"github.com/matzehuels/spotfinder/pkg/pipeline"
)

// batchOpts holds the flags of the batch command.
type batchOpts struct {
	workers int
	output  string
	search  searchFlags
}

// batchItemReport is the JSON form of one batch item.
type batchItemReport struct {
	pipeline.BatchItem
	Error string `json:"error,omitempty"`
}

// batchCommand creates the batch command.
func (c *CLI) batchCommand() *cobra.Command {
	var opts batchOpts

	cmd := &cobra.Command{
		Use:   "batch [scene.json] [objects.toml]",
		Short: "Suggest placements for several objects in one scene",
		Long: `Suggest placements for several objects in one scene.

The objects file lists one [[object]] table per request:

  [[object]]
  name = "cabinet"
  size = [1.0, 0.5, 2.0]
  top_k = 5

Each request may override top_k, clearance_xy, min_separation and margin.
Requests run concurrently against the same scene; an invalid request only
fails its own row.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBatch(cmd, args[0], args[1], &opts)
		},
	}

	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "concurrent searches (default from config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write a JSON report to this file (- for stdout)")
	opts.search.register(cmd)

	return cmd
}

// runBatch loads the scene once and places every requested object.
func (c *CLI) runBatch(cmd *cobra.Command, sceneFile, requestsFile string, opts *batchOpts) error {
	ctx := cmd.Context()
	reqs, err := pipeline.ReadBatchFile(requestsFile)
	if err != nil {
		return err
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	workers := opts.workers
	if workers <= 0 {
		workers = cfg.Batch.Workers
	}

	runner, err := c.newRunner(ctx, cfg, opts.search.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	base := pipeline.Options{
		ScenePath:  sceneFile,
		Config:     opts.search.apply(cmd, cfg.Placement()),
		Thresholds: cfg.Thresholds(),
		Refresh:    opts.search.refresh,
		Logger:     c.Logger,
	}
	loaded, err := runner.LoadScene(ctx, base)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Placing %d objects...", len(reqs)))
	spinner.Start()
	items, err := runner.PlaceBatch(ctx, loaded, base, reqs, workers)
	if err != nil {
		spinner.StopWithError("Batch failed")
		return fmt.Errorf("batch: %w", err)
	}
	spinner.Stop()
	prog.done("batch finished", "objects", len(items), "workers", workers)

	failed := 0
	reports := make([]batchItemReport, len(items))
	for i, it := range items {
		reports[i] = batchItemReport{BatchItem: it}
		if it.Err != nil {
			failed++
			reports[i].Error = errors.UserMessage(it.Err)
		}
	}

	if opts.output == "-" {
		return writeJSON(cmd.OutOrStdout(), reports)
	}

	printNewline()
	fmt.Println(batchTable(reports))
	if failed > 0 {
		printWarning("%d of %d objects failed", failed, len(items))
	} else {
		printSuccess("Placed %d objects", len(items))
	}

	if opts.output != "" {
		if err := writeJSONFile(opts.output, reports); err != nil {
			return err
		}
		printFile(opts.output)
	}
	return nil
}

// batchTable renders one row per batch item.
func batchTable(reports []batchItemReport) string {
	rows := make([][]string, len(reports))
	for i, r := range reports {
		best := "-"
		status := iconFresh
		switch {
		case r.Error != "":
			status = r.Error
		case r.Result.Infeasible:
			status = "does not fit"
		case r.CacheHit:
			status = iconCached
		}
		if len(r.Result.Selected) > 0 {
			best = formatVec(r.Result.Selected[0])
		}
		rows[i] = []string{
			r.Name,
			formatVec(r.Footprint.Size()),
			strconv.Itoa(r.Result.TotalValid),
			strconv.Itoa(len(r.Result.Selected)),
			best,
			status,
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers("name", "size", "valid", "picks", "best", "status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col == 5 && reports[row].Error != "" {
				return lipgloss.NewStyle().Foreground(colorRed)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
