package integration

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"moviefetch/internal/encoder"
	"moviefetch/internal/export"
	"moviefetch/internal/normalizer"
	"moviefetch/internal/source"
	"moviefetch/pkg/metadata"
)

func loadFixture(t *testing.T, name string) source.Source {
	t.Helper()
	return source.NewFileSource(name, filepath.Join("..", "fixtures", name))
}

func newExporter(t *testing.T) *export.Exporter {
	t.Helper()

	x, err := export.New(
		export.WithVerify(true),
		export.WithClock(func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }),
	)
	if err != nil {
		t.Fatalf("export.New failed: %v", err)
	}

	return x
}

func TestPipeline_AllFormats(t *testing.T) {
	// 1. Ingestion
	raws, err := loadFixture(t, "batch.json").Records(context.Background())
	if err != nil {
		t.Fatalf("Failed to load fixture: %v", err)
	}

	if len(raws) != 5 {
		t.Fatalf("Expected 5 raw records, got %d", len(raws))
	}

	x := newExporter(t)

	// 2. Normalize, encode, verify for every format
	for _, f := range encoder.Formats {
		t.Run(f.String(), func(t *testing.T) {
			result, err := x.Export(context.Background(), raws, f.String())
			if err != nil {
				t.Fatalf("Export failed: %v", err)
			}

			if result.Entities != 4 {
				t.Errorf("Expected 4 entities, got %d", result.Entities)
			}

			if len(result.Failures) != 1 || result.Failures[0].Index != 3 {
				t.Errorf("Expected the record without an id to fail, got %v", result.Failures)
			}

			want := "batch_20250102_030405." + f.Extension()
			if result.Document.Filename != want {
				t.Errorf("Expected filename %s, got %s", want, result.Document.Filename)
			}

			if result.Validation == nil || !result.Validation.IsValid {
				t.Errorf("Document failed verification: %v", result.Validation)
			}

			meta := metadata.Sign(result.Document.Filename, f.String(), result.RequestID, result.Document.Content, time.Now())
			if ok, err := metadata.Verify(result.Document.Content, meta.Hash); !ok {
				t.Errorf("Digest mismatch: %v", err)
			}
		})
	}
}

func TestPipeline_JSONContent(t *testing.T) {
	raws, err := loadFixture(t, "batch.json").Records(context.Background())
	if err != nil {
		t.Fatalf("Failed to load fixture: %v", err)
	}

	result, err := newExporter(t).Export(context.Background(), raws, "json")
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var rows []map[string]any
	if err := json.Unmarshal(result.Document.Content, &rows); err != nil {
		t.Fatalf("Output is not JSON: %v", err)
	}

	// Movie: genres from objects, cast from credits, numeric runtime
	movie := rows[0]
	if movie["kind"] != "movie" || movie["release_date"] != "1999-03-31" {
		t.Errorf("Unexpected movie row: %v", movie)
	}

	genres, _ := movie["genres"].([]any)
	if len(genres) != 2 || genres[1] != "Science Fiction" {
		t.Errorf("Expected genres in source order, got %v", movie["genres"])
	}

	cast, _ := movie["cast"].([]any)
	if len(cast) != 3 {
		t.Errorf("Expected 3 cast members, got %v", movie["cast"])
	}

	extra, _ := movie["extra"].(map[string]any)
	if extra["runtime"] != float64(136) {
		t.Errorf("Expected runtime 136, got %v", extra["runtime"])
	}

	// Series from "tv", episode with an unusable date and an empty overview
	if rows[1]["kind"] != "series" || rows[1]["title"] != "Game of Thrones" {
		t.Errorf("Unexpected series row: %v", rows[1])
	}

	if rows[2]["release_date"] != "unknown" || rows[2]["overview"] != "" || rows[2]["rating"] != nil {
		t.Errorf("Unexpected episode row: %v", rows[2])
	}

	if rows[3]["kind"] != "person" || rows[3]["overview"] != "Keanu Charles Reeves is a Canadian actor." {
		t.Errorf("Unexpected person row: %v", rows[3])
	}
}

func TestPipeline_TextContent(t *testing.T) {
	raws, err := loadFixture(t, "batch.json").Records(context.Background())
	if err != nil {
		t.Fatalf("Failed to load fixture: %v", err)
	}

	result, err := newExporter(t).Export(context.Background(), raws, "txt")
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	content := string(result.Document.Content)
	for _, want := range []string{
		"MOVIE: The Matrix",
		"Release Date: 1999-03-31",
		"Rating: 8.2/10",
		"  - Keanu Reeves as Neo",
		"EPISODE: Pilot",
		"Release Date: unknown",
		"Rating: N/A",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("TXT output missing %q", want)
		}
	}
}

func TestPipeline_YAMLDuplicateIDs(t *testing.T) {
	raws, err := loadFixture(t, "batch.yaml").Records(context.Background())
	if err != nil {
		t.Fatalf("Failed to load fixture: %v", err)
	}

	result, err := newExporter(t).Export(context.Background(), raws, "sql")
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	if result.Entities != 1 || result.Validation.Stats.TotalRows != 1 {
		t.Errorf("Expected 1 row, got %d entities and %d rows", result.Entities, result.Validation.Stats.TotalRows)
	}

	if len(result.Failures) != 1 || !errors.Is(result.Failures[0], normalizer.ErrDuplicateID) {
		t.Errorf("Expected duplicate id failure, got %v", result.Failures)
	}

	if !strings.Contains(string(result.Document.Content), "Leonardo DiCaprio (Cobb), Joseph Gordon-Levitt") {
		t.Errorf("Unexpected cast literal:\n%s", result.Document.Content)
	}
}
