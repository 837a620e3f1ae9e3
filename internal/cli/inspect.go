package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spotfinder/pkg/geom"
	"github.com/matzehuels/spotfinder/pkg/pipeline"
	"github.com/matzehuels/spotfinder/pkg/scene"
)

// objectReport is the JSON form of one classified object.
type objectReport struct {
	Name     string         `json:"name"`
	Category scene.Category `json:"category"`
	Min      geom.Vec3      `json:"min"`
	Max      geom.Vec3      `json:"max"`
	Size     geom.Vec3      `json:"size"`
	Center   geom.Vec3      `json:"center"`
}

// inspectReport is the JSON form of the inspect command.
type inspectReport struct {
	Scene     string                 `json:"scene"`
	SceneHash string                 `json:"scene_hash"`
	Min       geom.Vec3              `json:"min"`
	Max       geom.Vec3              `json:"max"`
	FloorZ    float64                `json:"floor_z"`
	Census    map[scene.Category]int `json:"census"`
	Objects   []objectReport         `json:"objects"`
}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect [scene.json|url]",
		Short: "Show how scene objects are classified",
		Long: `Show how scene objects are classified.

Every object is labelled floor, wall or furniture from its bounding-box size
using the classifier thresholds of the config file. Only furniture blocks
placements.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context(), cfg, true)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			loaded, err := runner.LoadScene(cmd.Context(), pipeline.Options{ScenePath: args[0], Logger: c.Logger})
			if err != nil {
				return err
			}
			report := buildInspectReport(args[0], loaded, cfg.Thresholds())
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			printInspectReport(report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")

	return cmd
}

func buildInspectReport(source string, loaded *pipeline.LoadedScene, th scene.Thresholds) inspectReport {
	s := loaded.Scene
	r := inspectReport{
		Scene:     source,
		SceneHash: loaded.Hash,
		Min:       s.Min,
		Max:       s.Max,
		FloorZ:    s.FloorZ,
		Census:    th.Census(s),
		Objects:   make([]objectReport, len(s.Objects)),
	}
	for i, o := range s.Objects {
		name := o.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		r.Objects[i] = objectReport{
			Name:     name,
			Category: th.Classify(o),
			Min:      o.Box.Min,
			Max:      o.Box.Max,
			Size:     o.Size,
			Center:   o.Center(),
		}
	}
	return r
}

func printInspectReport(r inspectReport) {
	rows := make([][]string, len(r.Objects))
	for i, o := range r.Objects {
		rows[i] = []string{o.Name, string(o.Category), formatVec(o.Size), formatVec(o.Center)}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers("name", "category", "size", "center").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if r.Objects[row].Category != scene.CategoryFurniture {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})

	printNewline()
	fmt.Println(t.Render())
	printNewline()
	printKeyValue("Scene", r.Scene)
	printKeyValue("Hash", r.SceneHash)
	printKeyValue("Bounds", formatVec(r.Min)+" "+iconArrow+" "+formatVec(r.Max))
	printKeyValue("Floor z", formatFloat(r.FloorZ))
	printKeyValue("Census", fmt.Sprintf("%d floor · %d wall · %d furniture",
		r.Census[scene.CategoryFloor], r.Census[scene.CategoryWall], r.Census[scene.CategoryFurniture]))
}
