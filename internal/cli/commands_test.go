package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/meshskel/pkg/errors"
	skelio "github.com/matzehuels/meshskel/pkg/io"
)

const record = `{
  "vertices": [[0, 0, 0], [1000, 0, 0], [2000, 0, 0], [9000, 0, 0], [9000, 1000, 0]],
  "edges": [[0, 1], [1, 2], [3, 4]],
  "root": 0
}`

// execute runs the CLI with args against an empty config file and returns
// what the command printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	clearEnv(t)
	cfg := writeFile(t, t.TempDir(), "config.toml", "[cache]\ndir = "+tomlString(filepath.Join(t.TempDir(), "cache"))+"\n")

	var out bytes.Buffer
	old := stdout
	stdout = &out
	defer func() { stdout = old }()

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(append([]string{"--config", cfg}, args...))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.Execute()
	return out.String(), err
}

// tomlString quotes s as a TOML basic string.
func tomlString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func writeRecord(t *testing.T) string {
	t.Helper()
	return writeFile(t, t.TempDir(), "cell.json", record)
}

func TestSkeletonize(t *testing.T) {
	input := writeRecord(t)
	outDir := t.TempDir()

	out, err := execute(t, "skeletonize", input, "--no-cache", "-o", outDir,
		"--format", "swc,json", "--header", "mesh=42")
	if err != nil {
		t.Fatalf("skeletonize: %v", err)
	}
	if !strings.Contains(out, "Skeletonized") {
		t.Errorf("output = %q", out)
	}

	swc, err := os.ReadFile(filepath.Join(outDir, "cell.component-0.swc"))
	if err != nil {
		t.Fatal(err)
	}
	want := "# component 0\n# mesh 42\n0 3 0 0 0 1 -1\n1 3 1 0 0 1 0\n2 3 2 0 0 1 1\n"
	if string(swc) != want {
		t.Errorf("component-0.swc =\n%s\nwant\n%s", swc, want)
	}
	if _, err := os.Stat(filepath.Join(outDir, "cell.component-1.swc")); err != nil {
		t.Errorf("component-1.swc: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "cell.summary.json"))
	if err != nil {
		t.Fatal(err)
	}
	var sum skelio.Summary
	if err := json.Unmarshal(data, &sum); err != nil {
		t.Fatal(err)
	}
	if len(sum.Components) != 2 {
		t.Errorf("summary components = %d, want 2", len(sum.Components))
	}
}

func TestSkeletonizeFlags(t *testing.T) {
	input := writeRecord(t)
	outDir := t.TempDir()

	_, err := execute(t, "skeletonize", input, "--no-cache", "-o", outDir,
		"--scale", "1", "--radius", "5", "--label", "1", "--root", "2")
	if err != nil {
		t.Fatalf("skeletonize: %v", err)
	}
	swc, err := os.ReadFile(filepath.Join(outDir, "cell.component-0.swc"))
	if err != nil {
		t.Fatal(err)
	}
	want := "# component 0\n0 1 0 0 0 5 1\n1 1 1000 0 0 5 2\n2 1 2000 0 0 5 -1\n"
	if string(swc) != want {
		t.Errorf("component-0.swc =\n%s\nwant\n%s", swc, want)
	}
}

func TestSkeletonizeCached(t *testing.T) {
	input := writeRecord(t)
	outDir := t.TempDir()
	cacheDir := t.TempDir()
	clearEnv(t)
	cfg := writeFile(t, t.TempDir(), "config.toml", "[cache]\nbackend = \"bolt\"\ndir = "+tomlString(cacheDir)+"\n")

	run := func() string {
		var out bytes.Buffer
		old := stdout
		stdout = &out
		defer func() { stdout = old }()
		root := New(io.Discard, LogInfo).RootCommand()
		root.SetArgs([]string{"--config", cfg, "skeletonize", input, "-o", outDir})
		if err := root.Execute(); err != nil {
			t.Fatalf("skeletonize: %v", err)
		}
		return out.String()
	}

	if out := run(); !strings.Contains(out, iconFresh) {
		t.Errorf("first run should be fresh: %q", out)
	}
	if out := run(); !strings.Contains(out, iconCached) {
		t.Errorf("second run should be cached: %q", out)
	}
}

func TestSkeletonizeErrors(t *testing.T) {
	_, err := execute(t, "skeletonize", filepath.Join(t.TempDir(), "missing.json"), "--no-cache")
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing input err = %v, want FILE_NOT_FOUND", err)
	}

	input := writeRecord(t)
	if _, err := execute(t, "skeletonize", input, "--no-cache", "--format", "obj"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad format err = %v, want INVALID_FORMAT", err)
	}

	bad := writeFile(t, t.TempDir(), "bad.json", `{"vertices": [[0,0,0]]}`)
	if _, err := execute(t, "skeletonize", bad, "--no-cache"); !errors.Is(err, errors.ErrCodeMissingField) {
		t.Errorf("missing edges err = %v, want MISSING_FIELD", err)
	}
}

func TestInfo(t *testing.T) {
	input := writeRecord(t)

	out, err := execute(t, "info", input)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	for _, s := range []string{"components", "Vertices", "Cable"} {
		if !strings.Contains(out, s) {
			t.Errorf("info output missing %q:\n%s", s, out)
		}
	}

	out, err = execute(t, "info", input, "--json")
	if err != nil {
		t.Fatalf("info --json: %v", err)
	}
	var sum skelio.Summary
	if err := json.Unmarshal([]byte(out), &sum); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if sum.Vertices != 5 || sum.Edges != 3 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestRenderDOT(t *testing.T) {
	input := writeRecord(t)
	path := filepath.Join(t.TempDir(), "c1.dot")

	if _, err := execute(t, "render", input, "-c", "1", "-f", "dot", "-o", path); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "digraph") {
		t.Errorf("render output is not DOT:\n%s", data)
	}

	if _, err := execute(t, "render", input, "-c", "5", "-f", "dot"); !errors.Is(err, errors.ErrCodeComponentNotFound) {
		t.Errorf("component 5 err = %v, want COMPONENT_NOT_FOUND", err)
	}
	if _, err := execute(t, "render", input, "-f", "swc"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("swc err = %v, want INVALID_FORMAT", err)
	}
}

func TestCachePath(t *testing.T) {
	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "cache") {
		t.Errorf("cache path = %q", out)
	}
}

func TestCacheClear(t *testing.T) {
	out, err := execute(t, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(out, "Cleared file cache") {
		t.Errorf("output = %q", out)
	}
}

func TestCompletion(t *testing.T) {
	out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out, appName) {
		t.Error("bash completion should mention the program name")
	}
}

func TestParseFormats(t *testing.T) {
	if got := parseFormats(""); len(got) != 1 || got[0] != "swc" {
		t.Errorf("parseFormats(\"\") = %v", got)
	}
	if got := parseFormats("swc, dot,"); len(got) != 2 || got[1] != "dot" {
		t.Errorf("parseFormats = %v", got)
	}
}

func TestSummaryTable(t *testing.T) {
	sum := skelio.Summary{Components: []skelio.ComponentSummary{{Index: 0, Vertices: 3, CableLength: 12.34}}}
	got := summaryTable(sum)
	for _, s := range []string{"Vertices", "Unreachable", "12.3"} {
		if !strings.Contains(got, s) {
			t.Errorf("table missing %q:\n%s", s, got)
		}
	}
}
