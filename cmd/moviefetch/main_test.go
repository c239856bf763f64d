package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const batchJSON = `[
  {"id": 603, "kind": "movie", "title": "The Matrix", "release_date": "1999-03-31", "vote_average": 8.2, "genres": ["Action"]},
  {"kind": "movie", "title": "No ID"},
  {"id": 1399, "media_type": "tv", "name": "Game of Thrones", "first_air_date": "2011-04-17"}
]`

func writeBatch(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "batch.json")
	if err := os.WriteFile(path, []byte(batchJSON), 0o644); err != nil {
		t.Fatalf("write batch: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestFormatsCommand(t *testing.T) {
	out, _, err := runCLI(t, "formats")
	if err != nil {
		t.Fatalf("formats: %v", err)
	}
	for _, want := range []string{"json", "text/csv", "application/sql", ".xml"} {
		if !strings.Contains(out, want) {
			t.Errorf("formats output missing %q:\n%s", want, out)
		}
	}
}

func TestExportCommand_Stdout(t *testing.T) {
	input := writeBatch(t)

	out, errOut, err := runCLI(t, "export", "--input", input, "--format", "csv", "--stdout")
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "id,kind,title") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(errOut, "1 record(s) skipped") {
		t.Errorf("stderr should report the skipped record:\n%s", errOut)
	}
}

func TestExportCommand_StrictFails(t *testing.T) {
	input := writeBatch(t)

	if _, _, err := runCLI(t, "export", "-i", input, "--stdout", "--strict"); err == nil {
		t.Fatal("expected --strict to fail when a record is skipped")
	}
}

func TestExportCommand_FileAndVerify(t *testing.T) {
	input := writeBatch(t)
	dir := t.TempDir()

	if _, _, err := runCLI(t, "export", "-i", input, "-f", "xml", "-o", dir, "--checksum"); err != nil {
		t.Fatalf("export: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "batch_*.xml"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one exported file, got %v (%v)", matches, err)
	}
	path := matches[0]

	if _, err := os.Stat(path + ".meta"); err != nil {
		t.Fatalf("sidecar missing: %v", err)
	}

	out, _, err := runCLI(t, "verify", path)
	if err != nil {
		t.Fatalf("verify: %v\n%s", err, out)
	}
	if !strings.Contains(out, "VALID") || !strings.Contains(out, "Integrity") {
		t.Errorf("unexpected verify output:\n%s", out)
	}

	if err := os.WriteFile(path, []byte("<catalog></catalog>\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, "verify", path); err == nil {
		t.Error("verify should fail after the file is modified")
	}
}

func TestExportCommand_NoInput(t *testing.T) {
	if _, _, err := runCLI(t, "export", "--stdout"); err != errNoInput {
		t.Errorf("err = %v, want errNoInput", err)
	}
}

func TestNormalizeCommand(t *testing.T) {
	input := writeBatch(t)

	out, _, err := runCLI(t, "normalize", "-i", input)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !strings.Contains(out, `"title": "Game of Thrones"`) || !strings.Contains(out, `"kind": "series"`) {
		t.Errorf("unexpected normalize output:\n%s", out)
	}
}

func TestExportCommand_UnsupportedFormat(t *testing.T) {
	input := writeBatch(t)

	_, _, err := runCLI(t, "export", "-i", input, "-f", "pdf", "--stdout")
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Errorf("err = %v, want unsupported format", err)
	}
}
