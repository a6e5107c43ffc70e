// Package preset holds the rotation configuration, the image selection
// policies and the monitor assignment rules.
package preset

import (
	"fmt"
	"slices"
	"strings"
)

// Policy selects how the next image is chosen.
type Policy string

const (
	// PolicyOrdered walks the sorted candidate list round-robin.
	PolicyOrdered Policy = "Ordered"
	// PolicyNonrepeating shuffles without repeats until the folder is exhausted.
	PolicyNonrepeating Policy = "Nonrepeating"
	// PolicyRandom picks uniformly, excluding the current image.
	PolicyRandom Policy = "Random"
)

// ParsePolicy resolves a policy name case-insensitively.
func ParsePolicy(s string) (Policy, error) {
	for _, p := range []Policy{PolicyOrdered, PolicyNonrepeating, PolicyRandom} {
		if strings.EqualFold(string(p), strings.TrimSpace(s)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown shuffle type %q (want Ordered, Nonrepeating or Random)", s)
}

// Valid reports whether p is one of the known policies.
func (p Policy) Valid() bool {
	switch p {
	case PolicyOrdered, PolicyNonrepeating, PolicyRandom:
		return true
	}
	return false
}

// Preset is a named rotation configuration plus its selection state.
type Preset struct {
	Name              string
	Folder            string
	RecurseSubfolders bool
	// MonitorIDs lists the targeted monitors in declared order. Empty means
	// every active monitor.
	MonitorIDs   []string
	Policy       Policy
	History      []string
	CurrentImage string
	Enabled      bool

	// BackgroundColor and Position are applied by the engine when set.
	BackgroundColor string
	Position        string

	// ReadOnly marks presets adapted from a foreign rotation.
	ReadOnly bool
}

// New builds an enabled preset with empty rotation state.
func New(name, folder string, policy Policy, monitorIDs ...string) *Preset {
	return &Preset{
		Name:       name,
		Folder:     folder,
		MonitorIDs: append([]string(nil), monitorIDs...),
		Policy:     policy,
		Enabled:    true,
	}
}

// CatchAll reports whether the preset targets every active monitor.
func (p *Preset) CatchAll() bool {
	return len(p.MonitorIDs) == 0
}

// Claims reports whether the preset's assignment includes monitorID.
func (p *Preset) Claims(monitorID string) bool {
	return p.CatchAll() || slices.Contains(p.MonitorIDs, monitorID)
}

// Overlap returns the monitors both presets claim. A catch-all preset overlaps
// everything; the result then holds "*" or the other preset's explicit ids.
func (p *Preset) Overlap(other *Preset) []string {
	switch {
	case p.CatchAll() && other.CatchAll():
		return []string{"*"}
	case p.CatchAll():
		return append([]string(nil), other.MonitorIDs...)
	case other.CatchAll():
		return append([]string(nil), p.MonitorIDs...)
	}
	var shared []string
	for _, id := range p.MonitorIDs {
		if slices.Contains(other.MonitorIDs, id) && !slices.Contains(shared, id) {
			shared = append(shared, id)
		}
	}
	return shared
}

// Clone returns a deep copy.
func (p *Preset) Clone() *Preset {
	if p == nil {
		return nil
	}
	c := *p
	c.MonitorIDs = slices.Clone(p.MonitorIDs)
	c.History = slices.Clone(p.History)
	return &c
}

// Validate checks the fields needed for the preset to rotate.
func (p *Preset) Validate() error {
	if err := ValidateName(p.Name); err != nil {
		return err
	}
	if strings.TrimSpace(p.Folder) == "" {
		return fmt.Errorf("preset %q: slideshow folder is required", p.Name)
	}
	if !p.Policy.Valid() {
		return fmt.Errorf("preset %q: unknown shuffle type %q", p.Name, p.Policy)
	}
	for _, id := range p.MonitorIDs {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("preset %q: monitor ids cannot be blank", p.Name)
		}
	}
	return nil
}

// ValidateName rejects names that cannot double as a backing file name.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("preset name cannot be empty")
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("preset name %q cannot contain path separators", name)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("preset name %q cannot start with a dot", name)
	}
	return nil
}
