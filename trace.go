package persist

import (
	"encoding/json"
	"errors"
)

// InitialLayerName labels the attach time snapshot in traces.
const InitialLayerName = "initial"

// ErrPathNotFound reports a traced path absent from the live state.
var ErrPathNotFound = errors.New("persist: path not found")

// Trace captures provenance information for a given path lookup across the
// layers loaded when the plugin attached.
type Trace struct {
	Path   string       `json:"path"`
	Value  any          `json:"value,omitempty"`
	Layers []Provenance `json:"layers"`
}

// Provenance details how a specific layer contributed to a traced path.
type Provenance struct {
	Group      string `json:"group"`
	StorageKey string `json:"storage_key,omitempty"`
	SnapshotID string `json:"snapshot_id,omitempty"`
	Path       string `json:"path"`
	Value      any    `json:"value,omitempty"`
	Found      bool   `json:"found"`
}

// Source returns the strongest layer that supplied the path.
func (t Trace) Source() (Provenance, bool) {
	for _, layer := range t.Layers {
		if layer.Found {
			return layer, true
		}
	}
	return Provenance{}, false
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated via
// ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
