package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseProfile_ValidFiles(t *testing.T) {
	tests := []struct {
		path       string
		wantFormat string
		wantKeys   []string
	}{
		{"testdata/profile.yaml", FormatYAML, []string{"csv", "filters", "contains", "showColumns", "defaultColumns", "limit", "out"}},
		{"testdata/profile.json", FormatJSON, []string{"csv", "filters", "contains", "where"}},
		{"testdata/profile.conf", FormatYAML, []string{"csv", "limit"}},
	}
	for _, tt := range tests {
		t.Run(filepath.Base(tt.path), func(t *testing.T) {
			result := ParseProfile(tt.path)
			if !result.IsValid() {
				t.Fatalf("expected valid profile, got errors: %v", result.Err())
			}
			if result.Format != tt.wantFormat {
				t.Errorf("Format = %q, want %q", result.Format, tt.wantFormat)
			}
			if result.Path != tt.path {
				t.Errorf("Path = %q", result.Path)
			}
			for _, k := range tt.wantKeys {
				if _, ok := result.Data[k]; !ok {
					t.Errorf("missing key %q in %v", k, result.Data)
				}
			}
		})
	}
}

func TestParseProfile_CommentsOnlyIsEmptyProfile(t *testing.T) {
	result := ParseProfile("testdata/comments-only.yml")
	if !result.IsValid() {
		t.Fatalf("unexpected errors: %v", result.Err())
	}
	if len(result.Data) != 0 {
		t.Errorf("Data = %v, want empty", result.Data)
	}
}

func TestParseProfile_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")
	result := ParseProfile(path)

	if len(result.ParseErrors) != 1 {
		t.Fatalf("ParseErrors = %v, want one", result.ParseErrors)
	}
	if result.ParseErrors[0].Type != ErrorTypeIO {
		t.Errorf("Type = %q, want %q", result.ParseErrors[0].Type, ErrorTypeIO)
	}
	if result.ParseErrors[0].Path != path {
		t.Errorf("Path = %q", result.ParseErrors[0].Path)
	}
}

func TestParseProfile_JSONSyntaxErrorHasLocation(t *testing.T) {
	result := ParseProfile("testdata/invalid-syntax.json")

	if len(result.ParseErrors) == 0 {
		t.Fatal("expected a parse error")
	}
	perr := result.ParseErrors[0]
	if perr.Type != ErrorTypeSyntax {
		t.Errorf("Type = %q", perr.Type)
	}
	if perr.Line != 4 {
		t.Errorf("Line = %d, want 4", perr.Line)
	}
	if !strings.HasPrefix(perr.Error(), "testdata/invalid-syntax.json: line 4") {
		t.Errorf("Error() = %q", perr.Error())
	}
	if len(result.ValidationErrors) != 0 {
		t.Error("validation must be skipped when parsing fails")
	}
}

func TestParseProfile_YAMLSyntaxErrorHasLine(t *testing.T) {
	result := ParseProfile("testdata/invalid-syntax.yaml")

	if len(result.ParseErrors) == 0 {
		t.Fatal("expected a parse error")
	}
	if result.ParseErrors[0].Line != 2 {
		t.Errorf("Line = %d, want 2 (%s)", result.ParseErrors[0].Line, result.ParseErrors[0].Message)
	}
}

func TestParseProfile_NotAMapping(t *testing.T) {
	result := ParseProfile("testdata/not-a-mapping.yaml")
	if len(result.ParseErrors) == 0 || result.ParseErrors[0].Type != ErrorTypeFormat {
		t.Errorf("ParseErrors = %v, want a format error", result.ParseErrors)
	}
}

func TestParseProfileString_DetectsFormat(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantFormat string
		wantValid  bool
	}{
		{"json object", `{"limit": 3}`, FormatJSON, true},
		{"yaml mapping", "limit: 3\n", FormatYAML, true},
		{"blank", "   ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseProfileString(tt.content, "")
			if result.IsValid() != tt.wantValid {
				t.Fatalf("IsValid() = %v, errors: %v", result.IsValid(), result.Err())
			}
			if result.Format != tt.wantFormat {
				t.Errorf("Format = %q, want %q", result.Format, tt.wantFormat)
			}
		})
	}
}

func TestParseProfileString_UnsupportedFormat(t *testing.T) {
	result := ParseProfileString("limit = 3", "toml")
	if len(result.ParseErrors) == 0 || result.ParseErrors[0].Type != ErrorTypeFormat {
		t.Errorf("ParseErrors = %v", result.ParseErrors)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]string{
		"profile.json":      FormatJSON,
		"profile.YAML":      FormatYAML,
		"dir/profile.yml":   FormatYAML,
		"profile.conf":      "",
		"profile":           "",
		"olympics.csv.json": FormatJSON,
	}
	for in, want := range tests {
		if got := DetectFormat(in); got != want {
			t.Errorf("DetectFormat(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOffsetToLineColumn(t *testing.T) {
	content := "ab\ncd\n"
	tests := []struct {
		offset    int64
		line, col int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{3, 2, 1},
		{5, 2, 3},
		{100, 3, 1},
	}
	for _, tt := range tests {
		line, col := offsetToLineColumn(content, tt.offset)
		if line != tt.line || col != tt.col {
			t.Errorf("offsetToLineColumn(%d) = %d,%d, want %d,%d", tt.offset, line, col, tt.line, tt.col)
		}
	}
}

func TestParseProfile_ReadsFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.yaml")
	if err := os.WriteFile(path, []byte("limit: 7\nwhere: Year > 2000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := ParseProfile(path)
	if !result.IsValid() {
		t.Fatalf("errors: %v", result.Err())
	}
	if result.Data["where"] != "Year > 2000" {
		t.Errorf("where = %v", result.Data["where"])
	}
}

func TestResult_Err(t *testing.T) {
	ok := ParseProfileString("limit: 3\n", FormatYAML)
	if err := ok.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}

	bad := ParseProfileString("limit: -1\ncontains: yes-please\n", FormatYAML)
	err := bad.Err()
	if err == nil {
		t.Fatal("Err() = nil, want joined validation errors")
	}
	for _, want := range []string{"/limit", "/contains"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Err() = %q, missing %s", err.Error(), want)
		}
	}
}
