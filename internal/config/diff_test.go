package config

import (
	"strings"
	"testing"
)

func TestDiffSerialized(t *testing.T) {
	oldData := []byte("presetname: Nature\nshuffletype: Ordered\n")
	newData := []byte("presetname: Nature\nshuffletype: Sideways\n")

	diff := DiffSerialized(oldData, newData)
	if diff == "" {
		t.Fatalf("expected diff, got empty string")
	}
	if !strings.Contains(diff, "shuffletype: Ordered") {
		t.Fatalf("expected diff to contain original line, got %s", diff)
	}
	if !strings.Contains(diff, "shuffletype: Sideways") {
		t.Fatalf("expected diff to contain updated line, got %s", diff)
	}
}

func TestDiffSerializedIgnoresLineEndings(t *testing.T) {
	if diff := DiffSerialized([]byte("a: 1  \r\nb: 2\r\n"), []byte("a: 1\nb: 2")); diff != "" {
		t.Fatalf("expected no diff, got %s", diff)
	}
}
