package listing

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "program_list.json")

	records := []Record{
		{Name: "Hangman", Pages: []int{80, 81}, Description: "Word guessing game"},
		{Name: "Star Trek", Pages: []int{157, 158, 159}},
	}

	if err := Save(path, records); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(loaded, records) {
		t.Errorf("Load() = %+v, want %+v", loaded, records)
	}
}

func TestLoad_NormalizesPages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "program_list.json")
	content := `{"programs": [{"name": "Bounce", "pages": [26, 26, 27]}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write list: %v", err)
	}

	records, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if want := []int{26, 27}; !reflect.DeepEqual(records[0].Pages, want) {
		t.Errorf("pages = %v, want %v", records[0].Pages, want)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("Load() error = nil for missing file")
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not_json", "this is not json"},
		{"missing_programs", `{"items": []}`},
		{"pages_not_ints", `{"programs": [{"name": "X", "pages": ["one"]}]}`},
		{"missing_pages", `{"programs": [{"name": "X"}]}`},
		{"page_below_one", `{"programs": [{"name": "X", "pages": [0]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "program_list.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("failed to write list: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load() error = nil, want schema violation")
			}
		})
	}
}

func TestSave_Format(t *testing.T) {
	path := filepath.Join(t.TempDir(), "program_list.json")
	if err := Save(path, []Record{{Name: "Chief", Pages: []int{43}}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read list: %v", err)
	}
	if !strings.Contains(string(data), `"programs"`) {
		t.Error("saved list missing top-level programs key")
	}
}
