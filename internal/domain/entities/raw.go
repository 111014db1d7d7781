package entities

// RawRecord is one upstream ticker object as decoded from JSON, numbers kept as json.Number.
type RawRecord map[string]any

// ID returns the upstream id when it is a string.
func (r RawRecord) ID() (string, bool) {
	id, ok := r["id"].(string)
	return id, ok
}
