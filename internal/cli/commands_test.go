package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/segmentio/encoding/json"

	"github.com/matzehuels/spotfinder/pkg/config"
	"github.com/matzehuels/spotfinder/pkg/errors"
	"github.com/matzehuels/spotfinder/pkg/scene"
)

// roomScene is a 5x5 room with a floor slab, four walls and one table.
const roomScene = `{
  "source": "test-room",
  "objects": [
    {"name": "floor", "bbox_min": [0, 0, 0], "bbox_max": [5, 5, 0.1], "bbox_size": [5, 5, 0.1]},
    {"name": "wall_s", "bbox_min": [0, 0, 0], "bbox_max": [5, 0.1, 2.5], "bbox_size": [5, 0.1, 2.5]},
    {"name": "wall_n", "bbox_min": [0, 4.9, 0], "bbox_max": [5, 5, 2.5], "bbox_size": [5, 0.1, 2.5]},
    {"name": "wall_w", "bbox_min": [0, 0, 0], "bbox_max": [0.1, 5, 2.5], "bbox_size": [0.1, 5, 2.5]},
    {"name": "wall_e", "bbox_min": [4.9, 0, 0], "bbox_max": [5, 5, 2.5], "bbox_size": [0.1, 5, 2.5]},
    {"name": "table", "bbox_min": [2, 2, 0], "bbox_max": [3, 3, 1], "bbox_size": [1, 1, 1]}
  ]
}`

// testEnv writes a scene and a cache-less config file into a temp dir.
func testEnv(t *testing.T) (dir, scenePath, configPath string) {
	t.Helper()
	dir = t.TempDir()
	scenePath = filepath.Join(dir, "scene.json")
	configPath = filepath.Join(dir, "config.toml")
	if err := os.WriteFile(scenePath, []byte(roomScene), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(configPath, []byte("[cache]\nbackend = \"none\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, scenePath, configPath
}

// run executes the root command and returns what it wrote to its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var logs, out bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPlaceCommandJSON(t *testing.T) {
	_, scenePath, configPath := testEnv(t)

	out, err := run(t, "place", scenePath, "--config", configPath, "--size", "1,0.5,2", "-k", "4", "-o", "-")
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	var report placeReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if report.Result.Infeasible {
		t.Fatal("cabinet should fit the room")
	}
	if got := len(report.Result.Selected); got == 0 || got > 4 {
		t.Errorf("selected %d candidates, want 1..4", got)
	}
	if report.Stats.FurnitureCount != 1 {
		t.Errorf("FurnitureCount = %d, want 1", report.Stats.FurnitureCount)
	}
	if report.SceneHash == "" {
		t.Error("SceneHash is empty")
	}
	if report.Cached {
		t.Error("report claims a cache hit with caching disabled")
	}
}

func TestPlaceCommandInfeasible(t *testing.T) {
	_, scenePath, configPath := testEnv(t)

	out, err := run(t, "place", scenePath, "--config", configPath, "--size", "4.5,1,1", "-o", "-")
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	var report placeReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if !report.Result.Infeasible {
		t.Error("Infeasible = false, want true")
	}
	if len(report.Result.Selected) != 0 {
		t.Errorf("selected %d candidates, want 0", len(report.Result.Selected))
	}
}

func TestPlaceCommandBadSize(t *testing.T) {
	_, scenePath, configPath := testEnv(t)

	_, err := run(t, "place", scenePath, "--config", configPath, "--size", "1,2")
	if code := errors.GetCode(err); code != errors.ErrCodeInvalidFootprint {
		t.Errorf("error code = %q (%v), want %q", code, err, errors.ErrCodeInvalidFootprint)
	}
}

func TestPlaceCommandMissingScene(t *testing.T) {
	dir, _, configPath := testEnv(t)

	_, err := run(t, "place", filepath.Join(dir, "missing.json"), "--config", configPath, "--size", "1,1,1")
	if err == nil {
		t.Fatal("expected an error for a missing scene file")
	}
}

func TestPlaceCommandWritesFile(t *testing.T) {
	dir, scenePath, configPath := testEnv(t)
	reportPath := filepath.Join(dir, "report.json")

	if _, err := run(t, "place", scenePath, "--config", configPath, "--size", "1,0.5,2", "-o", reportPath); err != nil {
		t.Fatalf("place: %v", err)
	}
	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var report placeReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Footprint.L != 1 || report.Footprint.W != 0.5 || report.Footprint.H != 2 {
		t.Errorf("Footprint = %+v, want 1 x 0.5 x 2", report.Footprint)
	}
}

func TestBatchCommandJSON(t *testing.T) {
	dir, scenePath, configPath := testEnv(t)
	batchPath := filepath.Join(dir, "objects.toml")
	batch := `
[[object]]
name = "cabinet"
size = [1.0, 0.5, 2.0]
top_k = 3

[[object]]
name = "broken"
size = [1.0, 0.0, 1.0]

[[object]]
name = "lamp"
size = [0.3, 0.3, 1.5]
`
	if err := os.WriteFile(batchPath, []byte(batch), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "batch", scenePath, batchPath, "--config", configPath, "--workers", "2", "-o", "-")
	if err != nil {
		t.Fatalf("batch: %v", err)
	}

	var reports []batchItemReport
	if err := json.Unmarshal([]byte(out), &reports); err != nil {
		t.Fatalf("decode reports: %v\n%s", err, out)
	}
	if len(reports) != 3 {
		t.Fatalf("got %d reports, want 3", len(reports))
	}
	for i, want := range []string{"cabinet", "broken", "lamp"} {
		if reports[i].Name != want {
			t.Errorf("reports[%d].Name = %q, want %q", i, reports[i].Name, want)
		}
	}
	if reports[0].Error != "" || len(reports[0].Result.Selected) == 0 || len(reports[0].Result.Selected) > 3 {
		t.Errorf("cabinet: error %q, %d selected", reports[0].Error, len(reports[0].Result.Selected))
	}
	if reports[1].Error == "" {
		t.Error("broken: expected an error for a zero extent")
	}
	if reports[2].Error != "" {
		t.Errorf("lamp: unexpected error %q", reports[2].Error)
	}
}

func TestInspectCommandJSON(t *testing.T) {
	_, scenePath, configPath := testEnv(t)

	out, err := run(t, "inspect", scenePath, "--config", configPath, "--json")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	var report inspectReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}

	want := map[scene.Category]int{
		scene.CategoryFloor:     1,
		scene.CategoryWall:      4,
		scene.CategoryFurniture: 1,
	}
	for cat, n := range want {
		if report.Census[cat] != n {
			t.Errorf("census[%s] = %d, want %d", cat, report.Census[cat], n)
		}
	}
	if len(report.Objects) != 6 {
		t.Fatalf("got %d objects, want 6", len(report.Objects))
	}
	if report.Objects[5].Name != "table" || report.Objects[5].Category != scene.CategoryFurniture {
		t.Errorf("objects[5] = %+v, want furniture table", report.Objects[5])
	}
}

func TestInspectCommandURL(t *testing.T) {
	_, _, configPath := testEnv(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(roomScene))
	}))
	defer ts.Close()

	url := ts.URL + "/room.json"
	out, err := run(t, "inspect", url, "--config", configPath, "--json")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	var report inspectReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Scene != url {
		t.Errorf("Scene = %q, want %q", report.Scene, url)
	}
	if report.SceneHash == "" {
		t.Error("SceneHash is empty")
	}
	if len(report.Objects) != 6 || report.Census[scene.CategoryWall] != 4 {
		t.Errorf("got %d objects, census %v", len(report.Objects), report.Census)
	}
}

func TestBatchWorkersFromConfig(t *testing.T) {
	dir, scenePath, _ := testEnv(t)
	configPath := filepath.Join(dir, "batch.toml")
	if err := os.WriteFile(configPath, []byte("[cache]\nbackend = \"none\"\n\n[batch]\nworkers = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	objects := filepath.Join(dir, "objects.toml")
	if err := os.WriteFile(objects, []byte("[[object]]\nname = \"crate\"\nsize = [0.5, 0.5, 0.5]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := run(t, "batch", scenePath, objects, "--config", configPath, "-o", "-")
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("batch with zero configured workers: error = %v, want INVALID_CONFIG", err)
	}
}

func TestConfigInitShowPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")

	out, err := run(t, "config", "init", "--config", path)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if strings.TrimSpace(out) != path {
		t.Errorf("config init printed %q, want %q", out, path)
	}

	if _, err := run(t, "config", "init", "--config", path); err == nil {
		t.Error("second config init without --force should fail")
	}
	if _, err := run(t, "config", "init", "--config", path, "--force"); err != nil {
		t.Errorf("config init --force: %v", err)
	}

	out, err = run(t, "config", "show", "--config", path)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	cfg, err := config.Decode(strings.NewReader(out))
	if err != nil {
		t.Fatalf("config show output does not decode: %v\n%s", err, out)
	}
	if cfg.Search.TopK != config.Default().Search.TopK {
		t.Errorf("TopK = %d, want default", cfg.Search.TopK)
	}

	out, err = run(t, "config", "path", "--config", path)
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if strings.TrimSpace(out) != path {
		t.Errorf("config path printed %q, want %q", out, path)
	}
}

func TestCachePathCommand(t *testing.T) {
	dir := t.TempDir()
	cacheRoot := filepath.Join(dir, "cache")
	configPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(configPath, []byte("[cache]\ndir = \""+filepath.ToSlash(cacheRoot)+"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "cache", "path", "--config", configPath)
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if strings.TrimSpace(out) != filepath.ToSlash(cacheRoot) {
		t.Errorf("cache path printed %q, want %q", out, cacheRoot)
	}
}

func TestCacheCommandsRequireFileBackend(t *testing.T) {
	_, _, configPath := testEnv(t)

	if _, err := run(t, "cache", "clear", "--config", configPath); err == nil {
		t.Error("cache clear should fail when the file cache is not in use")
	}
}
