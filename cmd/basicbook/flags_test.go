package main

import (
	"testing"

	"github.com/spf13/cobra"
)

func newRangeCmd() (*cobra.Command, *int, *int) {
	var start, end int
	cmd := &cobra.Command{Use: "test", Run: func(*cobra.Command, []string) {}}
	addRangeFlags(cmd, &start, &end)
	return cmd, &start, &end
}

func TestResolveRange_Defaults(t *testing.T) {
	cmd, start, end := newRangeCmd()
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	if err := resolveRange(cmd, start, end); err != nil {
		t.Fatalf("resolveRange() error = %v", err)
	}
	if *start != 1 || *end != 10 {
		t.Errorf("default range = %d-%d, want 1-10", *start, *end)
	}
}

func TestResolveRange_SinglePage(t *testing.T) {
	cmd, start, end := newRangeCmd()
	if err := cmd.ParseFlags([]string{"--page", "42"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}
	if err := resolveRange(cmd, start, end); err != nil {
		t.Fatalf("resolveRange() error = %v", err)
	}
	if *start != 42 || *end != 42 {
		t.Errorf("range = %d-%d, want 42-42", *start, *end)
	}
}

func TestResolveRange_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"start_below_one", []string{"--start", "0", "--end", "5"}},
		{"end_before_start", []string{"--start", "5", "--end", "2"}},
		{"page_below_one", []string{"--page", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, start, end := newRangeCmd()
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("ParseFlags() error = %v", err)
			}
			if err := resolveRange(cmd, start, end); err == nil {
				t.Errorf("resolveRange(%v) error = nil, want range error", tt.args)
			}
		})
	}
}
