package preset

import (
	"math/rand/v2"
	"slices"
)

// Selector advances presets. The zero value draws from math/rand/v2.
type Selector struct {
	// IntN returns a value in [0, n). Tests inject a deterministic source.
	IntN func(n int) int
}

var defaultSelector = &Selector{}

// NextImage advances p using the package default random source.
func NextImage(p *Preset, candidates []string) (string, bool) {
	return defaultSelector.NextImage(p, candidates)
}

// NextImage picks the next image for p from candidates, which must already be
// sorted and deduplicated (see Enumerate). It returns false when there is no
// candidate. A single candidate is returned without touching p's state. For
// two or more candidates the result always differs from p.CurrentImage and
// is appended to p.History.
func (s *Selector) NextImage(p *Preset, candidates []string) (string, bool) {
	switch len(candidates) {
	case 0:
		return "", false
	case 1:
		return candidates[0], true
	}

	var next string
	switch p.Policy {
	case PolicyNonrepeating:
		next = s.nonrepeating(p, candidates)
	case PolicyRandom:
		next = s.random(p, candidates)
	default:
		next = ordered(p, candidates)
	}

	p.History = append(p.History, next)
	p.CurrentImage = next
	return next, true
}

func ordered(p *Preset, candidates []string) string {
	pos := slices.Index(candidates, p.CurrentImage)
	return candidates[(pos+1)%len(candidates)]
}

func (s *Selector) nonrepeating(p *Preset, candidates []string) string {
	var remaining []string
	if len(candidates) <= len(p.History) {
		p.History = nil
		remaining = without(candidates, map[string]struct{}{p.CurrentImage: {}})
	} else {
		shown := make(map[string]struct{}, len(p.History)+1)
		for _, h := range p.History {
			shown[h] = struct{}{}
		}
		shown[p.CurrentImage] = struct{}{}
		remaining = without(candidates, shown)
		if len(remaining) == 0 {
			// history holds stale entries for deleted files
			p.History = nil
			remaining = without(candidates, map[string]struct{}{p.CurrentImage: {}})
		}
	}
	return remaining[s.intN(len(remaining))]
}

func (s *Selector) random(p *Preset, candidates []string) string {
	for {
		pick := candidates[s.intN(len(candidates))]
		if pick != p.CurrentImage {
			return pick
		}
	}
}

func (s *Selector) intN(n int) int {
	if s != nil && s.IntN != nil {
		return s.IntN(n)
	}
	return rand.IntN(n)
}

func without(candidates []string, drop map[string]struct{}) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if _, skip := drop[c]; !skip {
			out = append(out, c)
		}
	}
	return out
}
