package persist

import "github.com/goliatone/go-persist/layering"

// Layer records what one group contributed when the plugin attached. Layers
// are ordered weakest first; a later layer wins on conflicting values.
type Layer struct {
	Group      string
	StorageKey string
	// Priority is the group position; higher values win.
	Priority   int
	Snapshot   map[string]any
	SnapshotID string
	// Found reports whether the group had persisted data.
	Found bool
}

func (l Layer) clone() Layer {
	l.Snapshot = layering.CloneTree(l.Snapshot)
	return l
}

func cloneLayers(layers []Layer) []Layer {
	if len(layers) == 0 {
		return nil
	}
	out := make([]Layer, len(layers))
	for i := range layers {
		out[i] = layers[i].clone()
	}
	return out
}

// mergeLayers folds layer snapshots in priority order into a fresh record.
func mergeLayers(layers []Layer) map[string]any {
	snapshots := make([]map[string]any, 0, len(layers))
	for _, layer := range layers {
		if layer.Found {
			snapshots = append(snapshots, layer.Snapshot)
		}
	}
	return layering.Merge(snapshots...)
}
