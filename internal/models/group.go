package models

import "fmt"

// DisplayKey is the group label for a window's display reference.
func DisplayKey(display int) string {
	return fmt.Sprintf("Display %d", display)
}

// GroupedView maps display keys to windows. Keys are ordered by first
// appearance in fetch order and windows keep their fetch order inside a group.
type GroupedView struct {
	keys   []string
	groups map[string][]Window
}

// GroupByDisplay partitions the snapshot's windows by Window.Display. A window
// whose display is missing from the snapshot still gets its own group.
func GroupByDisplay(snap *Snapshot) GroupedView {
	view := GroupedView{groups: make(map[string][]Window)}
	if snap == nil {
		return view
	}

	for _, w := range snap.windows {
		key := DisplayKey(w.Display)
		if _, ok := view.groups[key]; !ok {
			view.keys = append(view.keys, key)
		}
		view.groups[key] = append(view.groups[key], cloneWindow(w))
	}
	return view
}

// Keys returns group keys in first-seen order
func (g GroupedView) Keys() []string {
	return append([]string(nil), g.keys...)
}

// Windows returns the windows for a key, nil if the key is unknown
func (g GroupedView) Windows(key string) []Window {
	return cloneWindows(g.groups[key])
}

// Len returns the number of groups
func (g GroupedView) Len() int {
	return len(g.keys)
}

// Total returns the number of windows across all groups
func (g GroupedView) Total() int {
	n := 0
	for _, ws := range g.groups {
		n += len(ws)
	}
	return n
}

// Map returns the grouping as a plain map, for JSON/YAML output
func (g GroupedView) Map() map[string][]Window {
	out := make(map[string][]Window, len(g.groups))
	for k, ws := range g.groups {
		out[k] = cloneWindows(ws)
	}
	return out
}
