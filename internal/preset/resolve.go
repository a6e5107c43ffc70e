package preset

// Resolve maps a preset's monitor assignment onto the active monitors.
// An empty assignment yields every active monitor in enumeration order;
// otherwise the declared order is kept and inactive ids are dropped.
func Resolve(monitorIDs []string, active []string) []string {
	if len(monitorIDs) == 0 {
		return append([]string(nil), active...)
	}
	activeSet := make(map[string]struct{}, len(active))
	for _, id := range active {
		activeSet[id] = struct{}{}
	}
	out := make([]string, 0, len(monitorIDs))
	seen := make(map[string]struct{}, len(monitorIDs))
	for _, id := range monitorIDs {
		if _, ok := activeSet[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Targets resolves the preset against the active monitors.
func (p *Preset) Targets(active []string) []string {
	return Resolve(p.MonitorIDs, active)
}
