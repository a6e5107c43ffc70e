package preset

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeImages(t testing.TB, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("img"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		paths = append(paths, path)
	}
	return paths
}

func seeded(seed uint64) *Selector {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return &Selector{IntN: rng.IntN}
}

func TestEnumerateFiltersSortsAndRecurses(t *testing.T) {
	dir := t.TempDir()
	writeImages(t, dir, "b.PNG", "a.jpg", "notes.txt", "sub/c.gif", "sub/deeper/d.tiff")

	flat, err := Enumerate(dir, false)
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	want := []string{filepath.Join(dir, "a.jpg"), filepath.Join(dir, "b.PNG")}
	if diff := cmp.Diff(want, flat); diff != "" {
		t.Fatalf("flat enumeration mismatch (-want +got):\n%s", diff)
	}

	deep, err := Enumerate(dir, true)
	if err != nil {
		t.Fatalf("Enumerate recursive: %v", err)
	}
	want = append(want, filepath.Join(dir, "sub", "c.gif"), filepath.Join(dir, "sub", "deeper", "d.tiff"))
	if diff := cmp.Diff(want, deep); diff != "" {
		t.Fatalf("recursive enumeration mismatch (-want +got):\n%s", diff)
	}
}

func TestEnumerateMissingFolder(t *testing.T) {
	if _, err := Enumerate(filepath.Join(t.TempDir(), "missing"), false); err == nil {
		t.Fatalf("expected error for missing folder")
	}
}

func TestNextImageEmptyFolder(t *testing.T) {
	for _, policy := range []Policy{PolicyOrdered, PolicyNonrepeating, PolicyRandom} {
		p := New("empty", "/walls", policy)
		if path, ok := NextImage(p, nil); ok || path != "" {
			t.Fatalf("%s: expected no image, got %q", policy, path)
		}
		if p.CurrentImage != "" || len(p.History) != 0 {
			t.Fatalf("%s: state mutated: %+v", policy, p)
		}
	}
}

func TestNextImageSingleCandidateIsSteadyState(t *testing.T) {
	for _, policy := range []Policy{PolicyOrdered, PolicyNonrepeating, PolicyRandom} {
		p := New("one", "/walls", policy)
		p.CurrentImage = "/walls/old.png"
		p.History = []string{"/walls/old.png"}
		for i := 0; i < 3; i++ {
			path, ok := NextImage(p, []string{"/walls/only.png"})
			if !ok || path != "/walls/only.png" {
				t.Fatalf("%s: got %q, %v", policy, path, ok)
			}
		}
		if p.CurrentImage != "/walls/old.png" {
			t.Fatalf("%s: current image changed to %q", policy, p.CurrentImage)
		}
		if diff := cmp.Diff([]string{"/walls/old.png"}, p.History); diff != "" {
			t.Fatalf("%s: history changed (-want +got):\n%s", policy, diff)
		}
	}
}

func TestOrderedVisitsEveryImageInSortedOrder(t *testing.T) {
	candidates := []string{"/w/a.png", "/w/b.png", "/w/c.png", "/w/d.png"}
	p := New("ordered", "/w", PolicyOrdered)

	var got []string
	for i := 0; i < len(candidates)*2; i++ {
		path, ok := NextImage(p, candidates)
		if !ok {
			t.Fatalf("expected image on call %d", i)
		}
		got = append(got, path)
	}
	want := append(append([]string(nil), candidates...), candidates...)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ordered sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestOrderedIndexesAgainstCandidatesNotHistory(t *testing.T) {
	candidates := []string{"/w/a.png", "/w/b.png", "/w/c.png"}
	p := New("ordered", "/w", PolicyOrdered)
	p.History = []string{"/w/c.png", "/w/a.png", "/w/b.png"}
	p.CurrentImage = "/w/b.png"

	path, _ := NextImage(p, candidates)
	if path != "/w/c.png" {
		t.Fatalf("expected successor of current in sorted list, got %q", path)
	}

	p.CurrentImage = "/w/deleted.png"
	path, _ = NextImage(p, candidates)
	if path != "/w/a.png" {
		t.Fatalf("expected restart at first candidate when current is absent, got %q", path)
	}
}

func TestNonrepeatingExhaustsBeforeRepeating(t *testing.T) {
	candidates := []string{"/w/1.png", "/w/2.png", "/w/3.png", "/w/4.png", "/w/5.png"}
	for seed := uint64(1); seed <= 20; seed++ {
		sel := seeded(seed)
		p := New("shuffle", "/w", PolicyNonrepeating)

		seen := map[string]bool{}
		for i := 0; i < len(candidates); i++ {
			path, _ := sel.NextImage(p, candidates)
			if seen[path] {
				t.Fatalf("seed %d: %q repeated before exhaustion", seed, path)
			}
			seen[path] = true
		}
		if len(p.History) != len(candidates) {
			t.Fatalf("seed %d: expected full history, got %v", seed, p.History)
		}

		last := p.CurrentImage
		path, _ := sel.NextImage(p, candidates)
		if path == last {
			t.Fatalf("seed %d: repeated current image across reset", seed)
		}
		if diff := cmp.Diff([]string{path}, p.History); diff != "" {
			t.Fatalf("seed %d: expected history reset (-want +got):\n%s", seed, diff)
		}
	}
}

func TestNonrepeatingIgnoresStaleHistory(t *testing.T) {
	p := New("shuffle", "/w", PolicyNonrepeating)
	p.History = []string{"/w/a.png", "/w/b.png"}
	p.CurrentImage = "/w/b.png"
	candidates := []string{"/w/a.png", "/w/b.png", "/w/c.png"}

	path, _ := seeded(7).NextImage(p, candidates)
	if path != "/w/c.png" {
		t.Fatalf("expected the only unseen image, got %q", path)
	}
}

func TestRandomNeverRepeatsCurrent(t *testing.T) {
	candidates := []string{"/w/a.png", "/w/b.png"}
	sel := seeded(42)
	p := New("random", "/w", PolicyRandom)
	prev := ""
	for i := 0; i < 200; i++ {
		path, ok := sel.NextImage(p, candidates)
		if !ok {
			t.Fatalf("expected image")
		}
		if path == prev {
			t.Fatalf("call %d repeated %q", i, path)
		}
		prev = path
	}
	if len(p.History) != 200 {
		t.Fatalf("expected history to grow with each pick, got %d", len(p.History))
	}
}

func TestRandomResamplesUntilDifferent(t *testing.T) {
	picks := []int{1, 1, 1, 0}
	sel := &Selector{IntN: func(n int) int {
		v := picks[0]
		picks = picks[1:]
		return v
	}}
	p := New("random", "/w", PolicyRandom)
	p.CurrentImage = "/w/b.png"
	path, _ := sel.NextImage(p, []string{"/w/a.png", "/w/b.png"})
	if path != "/w/a.png" {
		t.Fatalf("expected resample to land on a.png, got %q", path)
	}
	if len(picks) != 0 {
		t.Fatalf("expected all samples consumed, %d left", len(picks))
	}
}
