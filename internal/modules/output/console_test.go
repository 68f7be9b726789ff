package output

import (
	"bytes"
	"context"
	"testing"

	"github.com/olyfilter/olyfilter/pkg/table"
)

func TestConsole_RightAligned(t *testing.T) {
	tbl, err := table.FromRecords(
		[]string{"Sport", "Medal", "Year"},
		[][]string{
			{"Swimming", "Gold", "2008"},
			{"Judo", "NA", "2012"},
		},
	)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	n, err := NewConsole(&buf).Send(context.Background(), tbl)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Send() = %d, want 2", n)
	}

	want := "" +
		"   Sport Medal Year\n" +
		"Swimming  Gold 2008\n" +
		"    Judo   NaN 2012\n"
	if buf.String() != want {
		t.Errorf("output =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestConsole_EmptyTable(t *testing.T) {
	tbl, err := table.FromRecords([]string{"Sport", "Medal"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	n, err := NewConsole(&buf).Send(context.Background(), tbl)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Send() = %d, want 0", n)
	}
	want := "Empty table\nColumns: [Sport, Medal]\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestDisplayWidth(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"Gold", 4},
		{"Zürich", 6},
		{"東京", 4},
	}
	for _, tt := range tests {
		if got := displayWidth(tt.in); got != tt.want {
			t.Errorf("displayWidth(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestConsole_RowsWithoutColumns(t *testing.T) {
	src, err := table.FromRecords([]string{"Name"}, [][]string{{"A Dijiang"}, {"A Lamusi"}})
	if err != nil {
		t.Fatal(err)
	}
	tbl, err := src.Select([]string{})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := NewConsole(&buf).Send(context.Background(), tbl); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	want := "Empty table\nColumns: []\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}
