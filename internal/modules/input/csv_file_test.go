package input

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/olyfilter/olyfilter/internal/compression"
	"github.com/olyfilter/olyfilter/internal/errhandling"
	"github.com/olyfilter/olyfilter/pkg/table"
)

const samplePath = "testdata/olympics_sample.csv"

func TestCSVFile_FetchSample(t *testing.T) {
	m := NewCSVFile(samplePath)
	tbl, err := m.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if tbl.Len() != 10 {
		t.Errorf("Len() = %d, want 10", tbl.Len())
	}
	wantCols := []string{"ID", "Name", "Sex", "Age", "Height", "Weight", "Team", "NOC", "Games", "Year", "Season", "City", "Sport", "Event", "Medal"}
	if got := tbl.Columns(); !reflect.DeepEqual(got, wantCols) {
		t.Errorf("Columns() = %v", got)
	}
	if k, _ := tbl.ColumnKind("Year"); k != table.KindInt {
		t.Errorf("Year kind = %v, want int", k)
	}
	if k, _ := tbl.ColumnKind("Height"); k != table.KindInt {
		t.Errorf("Height kind = %v, want int (NA is missing)", k)
	}
	if got := tbl.Row(9).Get("Event").Text(); got != "Judo Men's Half-Middleweight, Group A" {
		t.Errorf("quoted field = %q", got)
	}
	if !tbl.Row(0).Get("Medal").IsMissing() {
		t.Error("NA medal must be missing")
	}
}

func TestCSVFile_DefaultPath(t *testing.T) {
	if got := NewCSVFile("").Path(); got != DefaultPath {
		t.Errorf("Path() = %q, want %q", got, DefaultPath)
	}
}

func TestCSVFile_NotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.csv")
	_, err := NewCSVFile(path).Fetch(context.Background())

	if !errors.Is(err, errhandling.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err.Error() != "file not found: "+path {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestCSVFile_Compressed(t *testing.T) {
	plain, err := NewCSVFile(samplePath).Fetch(context.Background())
	if err != nil {
		t.Fatalf("plain Fetch() error = %v", err)
	}
	src, err := os.ReadFile(samplePath)
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"sample.csv.gz", "sample.csv.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			w, err := compression.Create(path)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := w.Write(src); err != nil {
				t.Fatal(err)
			}
			if err := w.Close(); err != nil {
				t.Fatal(err)
			}

			got, err := NewCSVFile(path).Fetch(context.Background())
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if !reflect.DeepEqual(got.Records(), plain.Records()) {
				t.Error("compressed table differs from plain table")
			}
		})
	}
}

func TestCSVFile_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty file", ""},
		{"ragged rows", "a,b\n1,2\n3\n"},
		{"bare quote", "a,b\n\"x,1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.csv")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := NewCSVFile(path).Fetch(context.Background())
			if !errors.Is(err, errhandling.ErrInvalidData) {
				t.Errorf("expected ErrInvalidData, got %v", err)
			}
		})
	}
}

func TestCSVFile_HeaderOnlyAndBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "header.csv")
	if err := os.WriteFile(path, []byte("\ufeffSport,Medal\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tbl, err := NewCSVFile(path).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if tbl.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tbl.Len())
	}
	if !tbl.HasColumn("Sport") {
		t.Errorf("BOM not stripped from header: %q", tbl.Columns())
	}
}

func TestCSVFile_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCSVFile(samplePath).Fetch(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCSVFile_Close(t *testing.T) {
	var m io.Closer = NewCSVFile(samplePath)
	if err := m.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
