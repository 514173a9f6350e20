package listing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// File is the persisted program list format.
type File struct {
	Programs []Record `json:"programs"`
}

// Save writes the program list to path as indented JSON. An empty list is
// written as an empty array so the file always reloads cleanly.
func Save(path string, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(File{Programs: records}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal program list: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write program list: %w", err)
	}
	return nil
}

// Load reads and validates a program list from path. Records are
// normalized (pages deduplicated) on the way in.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program list: %w", err)
	}

	if err := validate(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("invalid program list %s: %w", path, err)
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse program list %s: %w", path, err)
	}

	for i := range file.Programs {
		file.Programs[i].Normalize()
	}
	return file.Programs, nil
}
