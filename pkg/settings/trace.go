package settings

import "encoding/json"

// Trace captures which scopes contributed a value for one key.
type Trace struct {
	Namespace string       `json:"namespace"`
	Key       string       `json:"key"`
	Layers    []Provenance `json:"layers"`
}

// Provenance details one scope's contribution to a traced key.
type Provenance struct {
	Scope      Scope  `json:"scope"`
	SnapshotID string `json:"snapshot_id,omitempty"`
	Value      any    `json:"value,omitempty"`
	Found      bool   `json:"found"`
}

// Effective returns the provenance entry that supplies the resolved value.
func (t Trace) Effective() (Provenance, bool) {
	for _, p := range t.Layers {
		if p.Found {
			return p, true
		}
	}
	return Provenance{}, false
}

// ToJSON serialises the trace for logging.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}
