package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorRecordsCounters(t *testing.T) {
	c := NewCollector(nil)
	c.RecordAdvance("Nature")
	c.RecordAdvance("Nature")
	c.RecordSkip("Empty", SkipNoImage)
	c.RecordBackendError("set_wallpaper")
	c.SetPresetsLoaded(3)
	c.RecordMalformed()

	if got := testutil.ToFloat64(c.advances.WithLabelValues("Nature")); got != 2 {
		t.Fatalf("advances = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.skipped.WithLabelValues("Empty", SkipNoImage)); got != 1 {
		t.Fatalf("skipped = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.backendErrors.WithLabelValues("set_wallpaper")); got != 1 {
		t.Fatalf("backend errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.presetsLoaded); got != 3 {
		t.Fatalf("presets loaded = %v, want 3", got)
	}
	if got := testutil.ToFloat64(c.malformed); got != 1 {
		t.Fatalf("malformed = %v, want 1", got)
	}
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.RecordAdvance("x")
	c.RecordSkip("x", SkipNoImage)
	c.SetPresetsLoaded(1)
	if err := c.WriteTextfile(filepath.Join(t.TempDir(), "m.prom")); err != nil {
		t.Fatalf("nil collector WriteTextfile: %v", err)
	}
}

func TestWriteTextfile(t *testing.T) {
	c := NewCollector(nil)
	c.RecordAdvance("Nature")
	path := filepath.Join(t.TempDir(), "hyprslide.prom")
	if err := c.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), `hyprslide_advances_total{preset="Nature"} 1`) {
		t.Fatalf("unexpected textfile contents:\n%s", data)
	}
}
