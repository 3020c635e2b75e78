package wordlist

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeWordlist(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wordlist.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFQDN(t *testing.T) {
	c := Candidate{Word: "www", Domain: "example.com"}
	if got := c.FQDN(); got != "www.example.com" {
		t.Errorf("FQDN() = %q, want %q", got, "www.example.com")
	}
}

func TestCount(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"plain entries", "www\nmail\napi\n", 3},
		{"blank lines ignored", "www\n\n\nmail\n", 2},
		{"comments ignored", "# common prefixes\nwww\nmail\n", 2},
		{"whitespace trimmed", "  www  \n\t\nmail\n", 2},
		{"empty file", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeWordlist(t, tt.content)
			got, err := Count(path)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Count() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCountMissingFile(t *testing.T) {
	if _, err := Count(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("expected error for missing wordlist")
	}
}

func TestStreamOrderAndValues(t *testing.T) {
	path := writeWordlist(t, "www\n\nmail\n# comment\napi\n")

	var got []Candidate
	err := Stream(context.Background(), path, "example.com", func(c Candidate) {
		got = append(got, c)
	})
	if err != nil {
		t.Fatal(err)
	}

	want := []Candidate{
		{Word: "www", Domain: "example.com"},
		{Word: "mail", Domain: "example.com"},
		{Word: "api", Domain: "example.com"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Stream() produced %v, want %v", got, want)
	}
}

func TestStreamMissingFile(t *testing.T) {
	err := Stream(context.Background(), filepath.Join(t.TempDir(), "nope.txt"), "example.com", func(Candidate) {
		t.Fatal("callback must not run for a missing wordlist")
	})
	if err == nil {
		t.Fatal("expected error for missing wordlist")
	}
}

func TestStreamCancelled(t *testing.T) {
	path := writeWordlist(t, "www\nmail\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Stream(ctx, path, "example.com", func(Candidate) {})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
